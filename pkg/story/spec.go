package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// GraphSpec is the file form of a story graph.
// Text fields containing {{ }} actions are compiled as templates.
type GraphSpec struct {
	Name  string              `json:"name" yaml:"name"`
	Start string              `json:"start,omitempty" yaml:"start,omitempty"` // Defaults to the first node id in sorted order
	Nodes map[string]NodeSpec `json:"nodes" yaml:"nodes"`                     // Key = node id
}

// NodeSpec is the file form of a Node.
type NodeSpec struct {
	Speaker string            `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Text    string            `json:"text" yaml:"text"`
	Options []OptionSpec      `json:"options,omitempty" yaml:"options,omitempty"`
	Next    *NextSpec         `json:"next,omitempty" yaml:"next,omitempty"`
	OnEnd   []InstructionSpec `json:"on_end,omitempty" yaml:"on_end,omitempty"`
}

// OptionSpec is the file form of an Option.
type OptionSpec struct {
	Text     string            `json:"text" yaml:"text"`
	When     *Condition        `json:"when,omitempty" yaml:"when,omitempty"`
	SetFlags map[string]string `json:"set_flags,omitempty" yaml:"set_flags,omitempty"`
	Effects  []InstructionSpec `json:"effects,omitempty" yaml:"effects,omitempty"`
	Next     *NextSpec         `json:"next,omitempty" yaml:"next,omitempty"`
}

// NextSpec is either a plain node id or a list of conditional cases.
//
//	"next": "yara_offer"
//	"next": {"cases": [{"when": {"markers": ["met_yara"]}, "to": "statue"}], "default": "idle"}
type NextSpec struct {
	To      string     `json:"-" yaml:"-"`
	Cases   []NextCase `json:"cases,omitempty" yaml:"cases,omitempty"`
	Default string     `json:"default,omitempty" yaml:"default,omitempty"`
}

// NextCase picks To when When holds. Cases are tried in order.
type NextCase struct {
	When Condition `json:"when" yaml:"when"`
	To   string    `json:"to" yaml:"to"`
}

// UnmarshalJSON accepts either a string or an object with cases.
func (n *NextSpec) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*n = NextSpec{To: str}
		return nil
	}

	type Alias NextSpec
	aux := &struct{ *Alias }{Alias: (*Alias)(n)}
	return json.Unmarshal(data, aux)
}

// UnmarshalYAML accepts either a scalar or a mapping with cases.
func (n *NextSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*n = NextSpec{To: value.Value}
		return nil
	}

	type Alias NextSpec
	var aux Alias
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*n = NextSpec(aux)
	return nil
}

// InstructionSpec is the file form of an Instruction.
type InstructionSpec struct {
	Op      string            `json:"op" yaml:"op"`
	Flag    string            `json:"flag,omitempty" yaml:"flag,omitempty"`
	Value   string            `json:"value,omitempty" yaml:"value,omitempty"`
	Marker  string            `json:"marker,omitempty" yaml:"marker,omitempty"`
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Text    string            `json:"text,omitempty" yaml:"text,omitempty"`
	OnFirst []InstructionSpec `json:"on_first,omitempty" yaml:"on_first,omitempty"`
	When    *Condition        `json:"when,omitempty" yaml:"when,omitempty"`
}

// Compile turns a GraphSpec into an immutable Graph.
func Compile(spec GraphSpec) (*Graph, error) {
	ids := make([]string, 0, len(spec.Nodes))
	for id := range spec.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		node, err := compileNode(id, spec.Nodes[id])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nodes = append(nodes, node)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	start := spec.Start
	if start == "" && len(ids) > 0 {
		start = ids[0]
	}
	return newGraph(spec.Name, start, nodes)
}

func compileNode(id string, spec NodeSpec) (Node, error) {
	speaker, err := compileText(spec.Speaker)
	if err != nil {
		return Node{}, fmt.Errorf("node %q speaker: %w", id, err)
	}
	text, err := compileText(spec.Text)
	if err != nil {
		return Node{}, fmt.Errorf("node %q text: %w", id, err)
	}
	onEnd, err := compileInstructions(spec.OnEnd)
	if err != nil {
		return Node{}, fmt.Errorf("node %q on_end: %w", id, err)
	}

	node := Node{
		ID:      id,
		Speaker: speaker,
		Text:    text,
		Next:    compileNext(spec.Next),
		OnEnd:   onEnd,
	}

	for i, optSpec := range spec.Options {
		label, err := compileText(optSpec.Text)
		if err != nil {
			return Node{}, fmt.Errorf("node %q option %d text: %w", id, i+1, err)
		}
		effects, err := compileInstructions(optSpec.Effects)
		if err != nil {
			return Node{}, fmt.Errorf("node %q option %d effects: %w", id, i+1, err)
		}
		node.Options = append(node.Options, Option{
			Text:      label,
			Condition: optSpec.When,
			SetFlags:  optSpec.SetFlags,
			Effects:   effects,
			Next:      compileNext(optSpec.Next),
		})
	}

	return node, nil
}

func compileText(src string) (Content[string], error) {
	if src == "" {
		return Content[string]{}, nil
	}
	return Template(src)
}

func compileNext(spec *NextSpec) Content[string] {
	if spec == nil {
		return Content[string]{}
	}
	if len(spec.Cases) == 0 {
		if spec.To == "" {
			return Content[string]{}
		}
		return Static(spec.To)
	}

	cases := append([]NextCase(nil), spec.Cases...)
	fallback := spec.Default
	return Derived(func(view StateView) (string, error) {
		for _, c := range cases {
			if c.When.Evaluate(view) {
				return c.To, nil
			}
		}
		return fallback, nil
	})
}

func compileInstructions(specs []InstructionSpec) ([]Instruction, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]Instruction, 0, len(specs))
	for i, s := range specs {
		ins, err := compileInstruction(s)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i+1, err)
		}
		out = append(out, ins)
	}
	return out, nil
}

func compileInstruction(s InstructionSpec) (Instruction, error) {
	ins := Instruction{Op: Op(s.Op), When: s.When}
	switch ins.Op {
	case OpSetFlag:
		ins.Key = s.Flag
		ins.Value = s.Value
	case OpComplete:
		ins.Key = s.Marker
		onFirst, err := compileInstructions(s.OnFirst)
		if err != nil {
			return Instruction{}, fmt.Errorf("on_first: %w", err)
		}
		ins.OnFirst = onFirst
	case OpCall:
		ins.Key = s.Name
	case OpJournal, OpGoal:
		text, err := compileText(s.Text)
		if err != nil {
			return Instruction{}, err
		}
		ins.Text = text
	default:
		return Instruction{}, fmt.Errorf("unknown op %q", s.Op)
	}
	if len(s.OnFirst) > 0 && ins.Op != OpComplete {
		return Instruction{}, fmt.Errorf("on_first is only valid for %s", OpComplete)
	}
	return ins, nil
}
