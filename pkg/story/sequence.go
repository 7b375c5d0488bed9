package story

import (
	"fmt"
)

// Line is one already-resolved beat of an inline script.
type Line struct {
	Speaker  string
	Text     string
	Branches []Branch
}

// Branch is a choice inside an inline script. Choosing it splices Next in
// front of the remaining lines.
type Branch struct {
	Label    string
	SetFlags map[string]string
	Effects  []Instruction
	Next     []Line
}

// Sequence is a short one-off script that needs no cross references.
// OnEnd runs once when the script closes.
type Sequence struct {
	Name  string
	Lines []Line
	OnEnd []Instruction
}

// SequenceSpec is the file form of a Sequence. Text may use templates; they
// are evaluated once, when the sequence is rendered for a session.
type SequenceSpec struct {
	Name  string            `json:"name" yaml:"name"`
	Lines []LineSpec        `json:"lines" yaml:"lines"`
	OnEnd []InstructionSpec `json:"on_end,omitempty" yaml:"on_end,omitempty"`
}

// LineSpec is the file form of a Line.
type LineSpec struct {
	Speaker  string       `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Text     string       `json:"text" yaml:"text"`
	Branches []BranchSpec `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// BranchSpec is the file form of a Branch.
type BranchSpec struct {
	Text     string            `json:"text" yaml:"text"`
	When     *Condition        `json:"when,omitempty" yaml:"when,omitempty"`
	SetFlags map[string]string `json:"set_flags,omitempty" yaml:"set_flags,omitempty"`
	Effects  []InstructionSpec `json:"effects,omitempty" yaml:"effects,omitempty"`
	Next     []LineSpec        `json:"next,omitempty" yaml:"next,omitempty"`
}

// Render resolves every line against view and drops branches whose
// condition fails, producing a script the interpreter can play as-is.
func (s SequenceSpec) Render(view StateView) (Sequence, error) {
	onEnd, err := compileInstructions(s.OnEnd)
	if err != nil {
		return Sequence{}, fmt.Errorf("sequence %q on_end: %w", s.Name, err)
	}
	lines, err := renderLines(s.Lines, view, s.Name)
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{Name: s.Name, Lines: lines, OnEnd: onEnd}, nil
}

func renderLines(specs []LineSpec, view StateView, where string) ([]Line, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	lines := make([]Line, 0, len(specs))
	for i, ls := range specs {
		at := fmt.Sprintf("%s line %d", where, i+1)
		speaker, err := renderText(ls.Speaker, view)
		if err != nil {
			return nil, &AuthoringError{NodeID: where, Field: fmt.Sprintf("line %d speaker", i+1), Err: err}
		}
		text, err := renderText(ls.Text, view)
		if err != nil {
			return nil, &AuthoringError{NodeID: where, Field: fmt.Sprintf("line %d text", i+1), Err: err}
		}

		line := Line{Speaker: speaker, Text: text}
		for j, bs := range ls.Branches {
			if !bs.When.Holds(view) {
				continue
			}
			label, err := renderText(bs.Text, view)
			if err != nil {
				return nil, &AuthoringError{NodeID: where, Field: fmt.Sprintf("line %d branch %d text", i+1, j+1), Err: err}
			}
			effects, err := compileInstructions(bs.Effects)
			if err != nil {
				return nil, fmt.Errorf("%s branch %d effects: %w", at, j+1, err)
			}
			next, err := renderLines(bs.Next, view, fmt.Sprintf("%s branch %d", at, j+1))
			if err != nil {
				return nil, err
			}
			line.Branches = append(line.Branches, Branch{
				Label:    label,
				SetFlags: cloneFlags(bs.SetFlags),
				Effects:  effects,
				Next:     next,
			})
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func renderText(src string, view StateView) (string, error) {
	c, err := compileText(src)
	if err != nil {
		return "", err
	}
	return c.Resolve(view)
}
