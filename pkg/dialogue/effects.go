package dialogue

import (
	"fmt"

	"github.com/jwebster45206/nevermore/pkg/story"
)

// EffectFunc is a named effect invoked by a "call" instruction.
type EffectFunc func(ctx EffectContext) error

// EffectContext is the mutation surface handed to named effects. Every write
// goes back through the interpreter so observers see it.
type EffectContext struct {
	in     *Interpreter
	NodeID string
}

// State returns a read-only view of the story state.
func (c EffectContext) State() story.StateView {
	return c.in.state
}

// SetFlag sets a single flag.
func (c EffectContext) SetFlag(name, value string) {
	c.in.mergeFlags(c.NodeID, map[string]string{name: value})
}

// Journal appends an entry and reports whether it was new.
func (c EffectContext) Journal(text string) bool {
	return c.in.appendJournal(c.NodeID, text)
}

// Complete sets a marker and reports whether this was the first time.
func (c EffectContext) Complete(marker string) bool {
	return c.in.markCompleted(c.NodeID, marker)
}

// SetGoal replaces the current objective.
func (c EffectContext) SetGoal(goal string) {
	c.in.setGoal(c.NodeID, goal)
}

// run executes instructions in order. Guards are evaluated just before each
// instruction, so later instructions see the effects of earlier ones.
func (in *Interpreter) run(nodeID, field string, list []story.Instruction) error {
	for i, ins := range list {
		if ins.When != nil && !ins.When.Evaluate(in.state) {
			continue
		}
		at := fmt.Sprintf("%s[%d]", field, i)

		switch ins.Op {
		case story.OpSetFlag:
			in.mergeFlags(nodeID, map[string]string{ins.Key: ins.Value})

		case story.OpJournal:
			text, err := ins.Text.Resolve(in.state)
			if err != nil {
				return &story.AuthoringError{NodeID: nodeID, Field: at, Err: err}
			}
			in.appendJournal(nodeID, text)

		case story.OpComplete:
			if in.markCompleted(nodeID, ins.Key) {
				if err := in.run(nodeID, at+".on_first", ins.OnFirst); err != nil {
					return err
				}
			}

		case story.OpGoal:
			text, err := ins.Text.Resolve(in.state)
			if err != nil {
				return &story.AuthoringError{NodeID: nodeID, Field: at, Err: err}
			}
			in.setGoal(nodeID, text)

		case story.OpCall:
			fn, ok := in.effects[ins.Key]
			if !ok {
				return &story.AuthoringError{NodeID: nodeID, Field: at, Err: fmt.Errorf("unknown effect %q", ins.Key)}
			}
			if err := fn(EffectContext{in: in, NodeID: nodeID}); err != nil {
				return &story.AuthoringError{NodeID: nodeID, Field: at, Err: fmt.Errorf("effect %q: %w", ins.Key, err)}
			}

		default:
			return &story.AuthoringError{NodeID: nodeID, Field: at, Err: fmt.Errorf("unknown op %q", ins.Op)}
		}
	}
	return nil
}

// State writes. These are the only places the interpreter touches
// StoryState, which keeps a single audit point for every change.

func (in *Interpreter) mergeFlags(nodeID string, flags map[string]string) {
	if len(flags) == 0 {
		return
	}
	in.state.MergeFlags(flags)
	in.emit(Event{Kind: EventFlagsSet, NodeID: nodeID, Flags: flags})
}

func (in *Interpreter) appendJournal(nodeID, text string) bool {
	if !in.state.AppendJournal(text) {
		return false
	}
	in.emit(Event{Kind: EventJournal, NodeID: nodeID, Text: text})
	return true
}

func (in *Interpreter) markCompleted(nodeID, marker string) bool {
	if !in.state.MarkCompleted(marker) {
		in.logger.Debug("Completion marker already set", "marker", marker, "node", nodeID)
		return false
	}
	in.emit(Event{Kind: EventCompleted, NodeID: nodeID, Text: marker})
	return true
}

func (in *Interpreter) setGoal(nodeID, goal string) {
	if in.state.GetGoal() == goal {
		return
	}
	in.state.SetGoal(goal)
	in.emit(Event{Kind: EventGoalChanged, NodeID: nodeID, Text: goal})
}
