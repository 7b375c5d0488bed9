package state

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/nevermore/pkg/story"
)

// StoryState is the mutable record of narrative progress for one play
// session. It lives from the end of character setup until the process exits
// and is never persisted.
//
// Only the dialogue interpreter writes to it; everything else reads through
// story.StateView.
type StoryState struct {
	ID        uuid.UUID
	StartedAt time.Time

	player    story.Player
	flags     map[string]string
	journal   []string
	inJournal map[string]struct{}
	completed map[string]struct{}
	goal      string
}

// Ensure StoryState implements story.StateView
var _ story.StateView = (*StoryState)(nil)

// New creates an empty story state for player.
func New(player story.Player) *StoryState {
	return &StoryState{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		player:    player,
		flags:     make(map[string]string),
		inJournal: make(map[string]struct{}),
		completed: make(map[string]struct{}),
	}
}

// MergeFlags applies every entry of set; the last write wins.
func (s *StoryState) MergeFlags(set map[string]string) {
	for k, v := range set {
		s.flags[k] = v
	}
}

// AppendJournal records text unless the exact same text is already in the
// journal. It returns true when the entry was added.
func (s *StoryState) AppendJournal(text string) bool {
	if text == "" {
		return false
	}
	if _, seen := s.inJournal[text]; seen {
		return false
	}
	s.inJournal[text] = struct{}{}
	s.journal = append(s.journal, text)
	return true
}

// MarkCompleted sets a completion marker and reports whether this call was
// the first to do so. Callers run one-time follow-ups only on true.
func (s *StoryState) MarkCompleted(marker string) bool {
	if _, done := s.completed[marker]; done {
		return false
	}
	s.completed[marker] = struct{}{}
	return true
}

// SetGoal replaces the current objective line.
func (s *StoryState) SetGoal(goal string) {
	s.goal = goal
}

// Read-only accessors

func (s *StoryState) GetFlag(name string) (string, bool) {
	v, ok := s.flags[name]
	return v, ok
}

// GetFlags returns a copy of all flags.
func (s *StoryState) GetFlags() map[string]string {
	return maps.Clone(s.flags)
}

func (s *StoryState) IsCompleted(marker string) bool {
	_, ok := s.completed[marker]
	return ok
}

func (s *StoryState) HasJournalEntry(text string) bool {
	_, ok := s.inJournal[text]
	return ok
}

// JournalEntries returns a copy of the journal in the order entries were made.
func (s *StoryState) JournalEntries() []string {
	return slices.Clone(s.journal)
}

// RecentJournal returns up to n of the latest entries, oldest first.
func (s *StoryState) RecentJournal(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(s.journal) {
		n = len(s.journal)
	}
	return slices.Clone(s.journal[len(s.journal)-n:])
}

// CompletedMarkers returns the set markers in sorted order.
func (s *StoryState) CompletedMarkers() []string {
	out := make([]string, 0, len(s.completed))
	for m := range s.completed {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (s *StoryState) GetGoal() string {
	return s.goal
}

func (s *StoryState) GetPlayer() story.Player {
	return s.player
}

// Snapshot is a point-in-time copy of the state for inspection and debugging.
type Snapshot struct {
	ID        uuid.UUID         `json:"id"`
	Player    story.Player      `json:"player"`
	Flags     map[string]string `json:"flags,omitempty"`
	Journal   []string          `json:"journal,omitempty"`
	Completed []string          `json:"completed,omitempty"`
	Goal      string            `json:"goal,omitempty"`
}

// Snapshot copies the current state.
func (s *StoryState) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Player:    s.player,
		Flags:     s.GetFlags(),
		Journal:   s.JournalEntries(),
		Completed: s.CompletedMarkers(),
		Goal:      s.goal,
	}
}
