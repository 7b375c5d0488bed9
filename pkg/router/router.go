package router

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/jwebster45206/nevermore/pkg/story"
)

// Vec is a position in world units.
type Vec struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dist is the Euclidean distance between two points.
func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Interactable is something in the world the player can trigger a dialogue
// from.
type Interactable struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	NodeID   string           `json:"node_id" yaml:"node_id"`                       // Node handed to the interpreter
	Position Vec              `json:"position" yaml:"position"`
	Radius   float64          `json:"radius" yaml:"radius"`                         // Interaction range
	Marker   string           `json:"marker,omitempty" yaml:"marker,omitempty"`     // Completion marker that retires this interactable
	Requires *story.Condition `json:"requires,omitempty" yaml:"requires,omitempty"` // Must hold before it can be triggered
	Priority int              `json:"priority,omitempty" yaml:"priority,omitempty"` // Higher wins when several are in range
	Prompt   string           `json:"prompt,omitempty" yaml:"prompt,omitempty"`     // Defaults to "Press E to speak with <Name>"
}

// InRange reports whether pos is within the interactable's radius.
func (it Interactable) InRange(pos Vec) bool {
	return it.Position.Dist(pos) <= it.Radius
}

// PromptText is the hint shown while the player stands in range.
func (it Interactable) PromptText() string {
	if it.Prompt != "" {
		return it.Prompt
	}
	return fmt.Sprintf("Press E to speak with %s", it.Name)
}

// Starter is the part of the dialogue interpreter the router drives.
type Starter interface {
	Start(nodeID string) error
	IsActive() bool
}

// Router turns world proximity plus an interact signal into exactly one
// dialogue start.
type Router struct {
	starter Starter
	view    story.StateView
	logger  *slog.Logger
	items   []Interactable
	enabled bool
}

// New creates a disabled router. Call SetEnabled once the world is
// explorable.
func New(starter Starter, view story.StateView, logger *slog.Logger, items ...Interactable) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" || it.NodeID == "" {
			return nil, fmt.Errorf("interactable %q needs an id and a node id", it.Name)
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("duplicate interactable %q", it.ID)
		}
		if it.Radius <= 0 {
			return nil, fmt.Errorf("interactable %q has no radius", it.ID)
		}
		seen[it.ID] = true
	}
	return &Router{
		starter: starter,
		view:    view,
		logger:  logger,
		items:   slices.Clone(items),
	}, nil
}

// SetEnabled turns interaction on or off.
func (r *Router) SetEnabled(on bool) {
	r.enabled = on
}

// Enabled reports whether interaction is on.
func (r *Router) Enabled() bool { return r.enabled }

// Interactables returns a copy of the registered interactables.
func (r *Router) Interactables() []Interactable {
	return slices.Clone(r.items)
}

// Available reports whether it could be triggered right now, ignoring
// distance.
func (r *Router) Available(it Interactable) bool {
	if it.Marker != "" && r.view.IsCompleted(it.Marker) {
		return false
	}
	return it.Requires.Holds(r.view)
}

// Candidate picks what an interact signal at pos would trigger: the
// highest-priority available interactable in range, nearest first on ties.
func (r *Router) Candidate(pos Vec) (Interactable, bool) {
	if !r.enabled || r.starter.IsActive() {
		return Interactable{}, false
	}

	var best *Interactable
	for i := range r.items {
		it := &r.items[i]
		if !it.InRange(pos) || !r.Available(*it) {
			continue
		}
		if best == nil || better(*it, *best, pos) {
			best = it
		}
	}
	if best == nil {
		return Interactable{}, false
	}
	return *best, true
}

func better(a, b Interactable, pos Vec) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if c := cmp.Compare(a.Position.Dist(pos), b.Position.Dist(pos)); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// Prompt returns the hint for pos, or "" when nothing can be triggered.
func (r *Router) Prompt(pos Vec) string {
	it, ok := r.Candidate(pos)
	if !ok {
		return ""
	}
	return it.PromptText()
}

// Interact handles one interact signal at pos. It starts at most one
// dialogue and reports whether it did.
func (r *Router) Interact(pos Vec) (bool, error) {
	it, ok := r.Candidate(pos)
	if !ok {
		return false, nil
	}
	r.logger.Debug("Interaction triggered", "interactable", it.ID, "node", it.NodeID)
	if err := r.starter.Start(it.NodeID); err != nil {
		return false, fmt.Errorf("failed to start %s: %w", it.ID, err)
	}
	return true, nil
}
