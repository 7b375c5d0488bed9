package story

import (
	"errors"
	"fmt"
)

// Validate checks the graph for authoring mistakes that can be detected
// without a story state: dangling static references, empty conditions,
// malformed instructions and nodes whose Next would be ignored.
// All problems are reported together.
func (g *Graph) Validate() error {
	var errs []error
	for _, id := range g.order {
		node := g.nodes[id]

		if node.HasOptions() && node.Next.IsSet() {
			errs = append(errs, fmt.Errorf("node %q: next is ignored on a node with options", id))
		}
		errs = append(errs, g.checkNext(node.Next, fmt.Sprintf("node %q next", id))...)
		errs = append(errs, validateInstructions(node.OnEnd, fmt.Sprintf("node %q on_end", id))...)

		for i, opt := range node.Options {
			where := fmt.Sprintf("node %q option %d", id, i+1)
			if !opt.Text.IsSet() {
				errs = append(errs, fmt.Errorf("%s: option has no text", where))
			}
			if opt.Condition != nil && opt.Condition.IsEmpty() {
				errs = append(errs, fmt.Errorf("%s: empty condition - no clauses specified", where))
			}
			errs = append(errs, g.checkNext(opt.Next, where+" next")...)
			errs = append(errs, validateInstructions(opt.Effects, where+" effects")...)
		}
	}
	return errors.Join(errs...)
}

func (g *Graph) checkNext(next Content[string], where string) []error {
	target, ok := next.StaticValue()
	if !ok || target == "" {
		return nil
	}
	if !g.Has(target) {
		return []error{fmt.Errorf("%s: unknown node %q", where, target)}
	}
	return nil
}

func validateInstructions(list []Instruction, where string) []error {
	var errs []error
	for i, ins := range list {
		at := fmt.Sprintf("%s[%d]", where, i)
		if !ins.Op.IsValid() {
			errs = append(errs, fmt.Errorf("%s: unknown op %q", at, ins.Op))
			continue
		}
		if ins.When != nil && ins.When.IsEmpty() {
			errs = append(errs, fmt.Errorf("%s: empty when - no clauses specified", at))
		}
		switch ins.Op {
		case OpSetFlag, OpComplete, OpCall:
			if ins.Key == "" {
				errs = append(errs, fmt.Errorf("%s: %s requires a key", at, ins.Op))
			}
		case OpJournal, OpGoal:
			if !ins.Text.IsSet() {
				errs = append(errs, fmt.Errorf("%s: %s requires text", at, ins.Op))
			}
		}
		if len(ins.OnFirst) > 0 {
			if ins.Op != OpComplete {
				errs = append(errs, fmt.Errorf("%s: on_first is only valid for %s", at, OpComplete))
			}
			errs = append(errs, validateInstructions(ins.OnFirst, at+".on_first")...)
		}
	}
	return errs
}
