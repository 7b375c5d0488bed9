// Package campus holds the authored Nevermore story: the branching campus
// graph, the orientation script and the world layout of its interactables.
package campus

import (
	_ "embed"
	"fmt"

	"github.com/jwebster45206/nevermore/pkg/dialogue"
	"github.com/jwebster45206/nevermore/pkg/router"
	"github.com/jwebster45206/nevermore/pkg/story"
)

//go:embed nevermore.json
var graphJSON []byte

//go:embed orientation.yaml
var orientationYAML []byte

const (
	StartNode       = "intro_gate"
	OrientationName = "orientation"

	// EnterExplorationEffect is the named effect both openings end with.
	EnterExplorationEffect = "enter_exploration"

	MarkerOrientation = "orientation_complete"
	MarkerMetYara     = "met_yara"
	MarkerMetQuentin  = "met_quentin"
	MarkerConcluded   = "story_concluded"

	ExplorationGoal    = "Find Yara and Quentin"
	ExplorationJournal = "Headmistress Mircalla gave you a hex bracelet."

	WorldWidth  = 1280.0
	PlayerStart = 40.0
)

// Graph parses and validates the embedded campus graph.
func Graph() (*story.Graph, error) {
	g, err := story.ParseGraph(graphJSON, story.FormatJSON)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("campus graph is invalid: %w", err)
	}
	return g, nil
}

// Orientation returns the embedded first-visit script.
func Orientation() (story.SequenceSpec, error) {
	return story.ParseSequenceSpec(orientationYAML, story.FormatYAML)
}

// Interactables lays out the campus courtyard. The statue outranks the
// NPCs and only wakes once both chaperones have been met.
func Interactables() []router.Interactable {
	return []router.Interactable{
		{
			ID:       "yara",
			Name:     "Yara",
			NodeID:   "yara_greeting",
			Position: router.Vec{X: 260},
			Radius:   40,
			Marker:   MarkerMetYara,
		},
		{
			ID:       "quentin",
			Name:     "Quentin",
			NodeID:   "quentin_greeting",
			Position: router.Vec{X: 620},
			Radius:   40,
			Marker:   MarkerMetQuentin,
		},
		{
			ID:       "rook_statue",
			Name:     "Rook Statue",
			NodeID:   "statue_vision",
			Position: router.Vec{X: 1040},
			Radius:   50,
			Marker:   MarkerConcluded,
			Requires: &story.Condition{Markers: []string{MarkerMetYara, MarkerMetQuentin}},
			Priority: 1,
			Prompt:   "Press E to touch the rook statue",
		},
		{
			ID:       "raven_shrine",
			Name:     "Raven Shrine",
			NodeID:   "raven_shrine",
			Position: router.Vec{X: 1180},
			Radius:   40,
			Prompt:   "Press E to inspect the raven shrine",
		},
	}
}

// EnterExploration is the effect that ends both openings: it sets the first
// objective, notes the bracelet and calls ready so the world opens up.
// Every intro node carries it so closing the opening early still opens the
// world. The goal and journal are only written the first time.
func EnterExploration(ready func()) dialogue.EffectFunc {
	return func(ctx dialogue.EffectContext) error {
		if ctx.Complete(MarkerOrientation) {
			ctx.SetGoal(ExplorationGoal)
			ctx.Journal(ExplorationJournal)
		}
		if ready != nil {
			ready()
		}
		return nil
	}
}
