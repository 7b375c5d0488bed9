package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Validate(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []Node
		expected []string
	}{
		{
			name: "valid",
			nodes: []Node{
				{ID: "a", Text: Text("A"), Next: Text("b")},
				{ID: "b", Text: Text("B"), Options: []Option{{Text: Text("ok"), Next: Text("a")}}},
			},
		},
		{
			name:     "dangling next",
			nodes:    []Node{{ID: "a", Text: Text("A"), Next: Text("nowhere")}},
			expected: []string{`node "a" next: unknown node "nowhere"`},
		},
		{
			name: "next ignored on options node",
			nodes: []Node{
				{ID: "a", Next: Text("a"), Options: []Option{{Text: Text("x")}}},
			},
			expected: []string{"next is ignored"},
		},
		{
			name:     "option without text",
			nodes:    []Node{{ID: "a", Options: []Option{{}}}},
			expected: []string{"option has no text"},
		},
		{
			name:     "empty condition",
			nodes:    []Node{{ID: "a", Options: []Option{{Text: Text("x"), Condition: &Condition{}}}}},
			expected: []string{"empty condition"},
		},
		{
			name: "bad instructions",
			nodes: []Node{{ID: "a", OnEnd: []Instruction{
				{Op: "explode"},
				{Op: OpSetFlag},
				{Op: OpJournal},
				Goal("x").If(Condition{}),
				{Op: OpGoal, Text: Text("y"), OnFirst: []Instruction{Journal("z")}},
				Complete("met_yara", Call("")),
			}}},
			expected: []string{
				`on_end[0]: unknown op "explode"`,
				"on_end[1]: set_flag requires a key",
				"on_end[2]: journal requires text",
				"on_end[3]: empty when",
				"on_end[4]: on_first is only valid",
				"on_end[5].on_first[0]: call requires a key",
			},
		},
		{
			name: "derived next is not checked",
			nodes: []Node{{ID: "a", Next: Derived(func(StateView) (string, error) {
				return "anywhere", nil
			})}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(tt.nodes...)
			require.NoError(t, err)

			err = g.Validate()
			if len(tt.expected) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.expected {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
