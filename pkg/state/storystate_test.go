package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nevermore/pkg/story"
)

func TestStoryState_New(t *testing.T) {
	s := New(story.Player{Name: "Morgan"})
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", s.ID.String())
	assert.False(t, s.StartedAt.IsZero())
	assert.Equal(t, "Morgan", s.GetPlayer().Name)
	assert.Empty(t, s.GetFlags())
	assert.Empty(t, s.JournalEntries())
	assert.Empty(t, s.CompletedMarkers())
	assert.Empty(t, s.GetGoal())
}

func TestStoryState_MergeFlags(t *testing.T) {
	s := New(story.Player{})

	s.MergeFlags(map[string]string{"mood": "bold", "persona": "shadow"})
	s.MergeFlags(map[string]string{"mood": "wry"})
	s.MergeFlags(nil)

	mood, ok := s.GetFlag("mood")
	require.True(t, ok)
	assert.Equal(t, "wry", mood)

	_, ok = s.GetFlag("unset")
	assert.False(t, ok)

	flags := s.GetFlags()
	assert.Equal(t, map[string]string{"mood": "wry", "persona": "shadow"}, flags)

	// GetFlags is a copy.
	flags["mood"] = "hacked"
	mood, _ = s.GetFlag("mood")
	assert.Equal(t, "wry", mood)
}

func TestStoryState_AppendJournal(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		added    []bool
		expected []string
	}{
		{
			name:     "distinct entries keep order",
			entries:  []string{"Met Yara.", "Met Quentin."},
			added:    []bool{true, true},
			expected: []string{"Met Yara.", "Met Quentin."},
		},
		{
			name:     "duplicate suppressed",
			entries:  []string{"Met Yara.", "Met Yara."},
			added:    []bool{true, false},
			expected: []string{"Met Yara."},
		},
		{
			name:     "near duplicates are distinct",
			entries:  []string{"Met Yara.", "met yara."},
			added:    []bool{true, true},
			expected: []string{"Met Yara.", "met yara."},
		},
		{
			name:     "empty ignored",
			entries:  []string{""},
			added:    []bool{false},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(story.Player{})
			for i, e := range tt.entries {
				assert.Equal(t, tt.added[i], s.AppendJournal(e), "entry %d", i)
			}
			if tt.expected == nil {
				assert.Empty(t, s.JournalEntries())
			} else {
				assert.Equal(t, tt.expected, s.JournalEntries())
			}
			for _, e := range tt.expected {
				assert.True(t, s.HasJournalEntry(e))
			}
		})
	}
}

func TestStoryState_RecentJournal(t *testing.T) {
	s := New(story.Player{})
	for _, e := range []string{"one", "two", "three"} {
		s.AppendJournal(e)
	}

	assert.Equal(t, []string{"two", "three"}, s.RecentJournal(2))
	assert.Equal(t, []string{"one", "two", "three"}, s.RecentJournal(10))
	assert.Nil(t, s.RecentJournal(0))

	// Copies, not views.
	recent := s.RecentJournal(1)
	recent[0] = "changed"
	assert.Equal(t, []string{"three"}, s.RecentJournal(1))
}

func TestStoryState_MarkCompleted(t *testing.T) {
	s := New(story.Player{})

	assert.False(t, s.IsCompleted("met_yara"))
	assert.True(t, s.MarkCompleted("met_yara"))
	for range 3 {
		assert.False(t, s.MarkCompleted("met_yara"))
	}
	assert.True(t, s.IsCompleted("met_yara"))

	assert.True(t, s.MarkCompleted("met_quentin"))
	assert.Equal(t, []string{"met_quentin", "met_yara"}, s.CompletedMarkers())
}

func TestStoryState_Snapshot(t *testing.T) {
	s := New(story.Player{Name: "Morgan", Heritage: "Siren"})
	s.MergeFlags(map[string]string{"persona": "rebel"})
	s.AppendJournal("Headmistress Mircalla gave you a hex bracelet.")
	s.MarkCompleted("met_yara")
	s.SetGoal("Find Yara and Quentin")

	snap := s.Snapshot()
	assert.Equal(t, s.ID, snap.ID)
	assert.Equal(t, "Siren", snap.Player.Heritage)
	assert.Equal(t, map[string]string{"persona": "rebel"}, snap.Flags)
	assert.Equal(t, []string{"Headmistress Mircalla gave you a hex bracelet."}, snap.Journal)
	assert.Equal(t, []string{"met_yara"}, snap.Completed)
	assert.Equal(t, "Find Yara and Quentin", snap.Goal)

	snap.Flags["persona"] = "shadow"
	v, _ := s.GetFlag("persona")
	assert.Equal(t, "rebel", v)
}

func TestNewPlayer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "morgan", expected: "Morgan"},
		{name: "empty falls back", input: "   ", expected: DefaultPlayerName},
		{name: "truncated", input: "abcdefghijklmnopqrstuvwxyz", expected: "Abcdefghijklmnopqr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(tt.input, "Werewolf", "Braids", "Uniform")
			assert.Equal(t, tt.expected, p.Name)
			assert.LessOrEqual(t, len([]rune(p.Name)), MaxPlayerNameLen)
			assert.Equal(t, "Werewolf", p.Heritage)
			assert.Equal(t, "Braids", p.Hair)
			assert.Equal(t, "Uniform", p.Outfit)
		})
	}
}
