package story

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courtyardJSON = `{
  "name": "courtyard",
  "start": "quentin_greeting",
  "nodes": {
    "quentin_greeting": {
      "speaker": "Quentin",
      "text": "Race you, {{first .Player.Name}}?",
      "options": [
        {"text": "You're on.", "set_flags": {"quentin_bond": "speed"}, "next": "quentin_offer"},
        {"text": "I'd rather listen.", "set_flags": {"quentin_bond": "listen"},
         "effects": [{"op": "journal", "text": "Quentin talked about the woods."}],
         "next": "quentin_offer"}
      ]
    },
    "quentin_offer": {
      "speaker": "Quentin",
      "text": "Pack's always got room.",
      "next": {
        "cases": [{"when": {"flags": {"quentin_bond": "speed"}}, "to": "quentin_race"}],
        "default": ""
      },
      "on_end": [
        {"op": "complete", "marker": "met_quentin", "on_first": [
          {"op": "journal", "text": "Quentin offered you a place in the pack."},
          {"op": "goal", "text": "Approach the rook statue.", "when": {"markers": ["met_yara", "met_quentin"]}}
        ]}
      ]
    },
    "quentin_race": {
      "speaker": "Narrator",
      "text": "You sprint across the quad.",
      "on_end": [{"op": "call", "name": "finish_race"}, {"op": "set_flag", "flag": "raced", "value": "true"}]
    }
  }
}`

const courtyardYAML = `
name: courtyard
start: quentin_greeting
nodes:
  quentin_greeting:
    speaker: Quentin
    text: "Race you, {{first .Player.Name}}?"
    options:
      - text: You're on.
        set_flags: {quentin_bond: speed}
        next: quentin_offer
      - text: I'd rather listen.
        set_flags: {quentin_bond: listen}
        effects:
          - {op: journal, text: Quentin talked about the woods.}
        next: quentin_offer
  quentin_offer:
    speaker: Quentin
    text: Pack's always got room.
    next:
      cases:
        - when: {flags: {quentin_bond: speed}}
          to: quentin_race
      default: ""
    on_end:
      - op: complete
        marker: met_quentin
        on_first:
          - {op: journal, text: Quentin offered you a place in the pack.}
          - op: goal
            text: Approach the rook statue.
            when: {markers: [met_yara, met_quentin]}
  quentin_race:
    speaker: Narrator
    text: You sprint across the quad.
    on_end:
      - {op: call, name: finish_race}
      - {op: set_flag, flag: raced, value: "true"}
`

func TestDecodeGraph(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "json", data: courtyardJSON, format: FormatJSON},
		{name: "yaml", data: courtyardYAML, format: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGraph([]byte(tt.data), tt.format)
			require.NoError(t, err)
			require.NoError(t, g.Validate())

			assert.Equal(t, "courtyard", g.Name())
			assert.Equal(t, "quentin_greeting", g.Start())
			assert.Equal(t, []string{"quentin_greeting", "quentin_offer", "quentin_race"}, g.IDs())

			view := &fakeView{player: Player{Name: "Morgan Addams"}}
			r, err := g.Resolve("quentin_greeting", view)
			require.NoError(t, err)
			assert.Equal(t, "Race you, Morgan?", r.Text)
			require.Len(t, r.Options, 2)
			assert.Equal(t, map[string]string{"quentin_bond": "listen"}, r.Options[1].SetFlags)
			require.Len(t, r.Options[1].Effects, 1)
			assert.Equal(t, OpJournal, r.Options[1].Effects[0].Op)

			offer, ok := g.Node("quentin_offer")
			require.True(t, ok)
			assert.True(t, offer.Next.IsDerived())

			view.flags = map[string]string{"quentin_bond": "speed"}
			next, err := offer.Next.Resolve(view)
			require.NoError(t, err)
			assert.Equal(t, "quentin_race", next)

			view.flags["quentin_bond"] = "listen"
			next, err = offer.Next.Resolve(view)
			require.NoError(t, err)
			assert.Empty(t, next)

			require.Len(t, offer.OnEnd, 1)
			complete := offer.OnEnd[0]
			assert.Equal(t, OpComplete, complete.Op)
			assert.Equal(t, "met_quentin", complete.Key)
			require.Len(t, complete.OnFirst, 2)
			require.NotNil(t, complete.OnFirst[1].When)
			assert.Equal(t, []string{"met_yara", "met_quentin"}, complete.OnFirst[1].When.Markers)

			race, _ := g.Node("quentin_race")
			require.Len(t, race.OnEnd, 2)
			assert.Equal(t, Call("finish_race").Key, race.OnEnd[0].Key)
			assert.Equal(t, "raced", race.OnEnd[1].Key)
			assert.Equal(t, "true", race.OnEnd[1].Value)
		})
	}
}

func TestDecodeGraph_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		errText string
	}{
		{
			name:    "json unknown field",
			data:    `{"nodes": {"a": {"text": "A", "nxt": "b"}}}`,
			format:  FormatJSON,
			errText: "unknown field",
		},
		{
			name:    "yaml unknown field",
			data:    "nodes:\n  a:\n    text: A\n    nxt: b\n",
			format:  FormatYAML,
			errText: "not found",
		},
		{
			name:    "unknown op",
			data:    `{"nodes": {"a": {"text": "A", "on_end": [{"op": "explode"}]}}}`,
			format:  FormatJSON,
			errText: `unknown op "explode"`,
		},
		{
			name:    "bad template",
			data:    `{"nodes": {"a": {"text": "{{.Player.Name"}}}`,
			format:  FormatJSON,
			errText: `node "a" text`,
		},
		{
			name:    "on_first outside complete",
			data:    `{"nodes": {"a": {"text": "A", "on_end": [{"op": "journal", "text": "x", "on_first": [{"op": "goal", "text": "y"}]}]}}}`,
			format:  FormatJSON,
			errText: "on_first is only valid",
		},
		{
			name:    "unknown start",
			data:    `{"start": "b", "nodes": {"a": {"text": "A"}}}`,
			format:  FormatJSON,
			errText: `start node "b"`,
		},
		{
			name:    "unsupported format",
			data:    `{}`,
			format:  Format("toml"),
			errText: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGraph([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestCompile_DefaultStartIsFirstSortedID(t *testing.T) {
	g, err := Compile(GraphSpec{Nodes: map[string]NodeSpec{
		"zeta":  {Text: "Z"},
		"alpha": {Text: "A", Next: &NextSpec{To: "zeta"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "alpha", g.Start())
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{path: "stories/nevermore.json", expected: FormatJSON},
		{path: "orientation.YAML", expected: FormatYAML},
		{path: "orientation.yml", expected: FormatYAML},
		{path: "story.txt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courtyard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(courtyardYAML), 0o600))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	_, err = LoadGraph(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to open"))
}
