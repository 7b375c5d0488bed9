package state

import (
	"github.com/jwebster45206/nevermore/pkg/story"
	"github.com/jwebster45206/nevermore/pkg/textfilter"
)

const (
	DefaultPlayerName = "New Raven"
	MaxPlayerNameLen  = 18
)

// NewPlayer builds the player profile from character setup input.
// The name is cleaned up and falls back to DefaultPlayerName when it is
// empty or unusable.
func NewPlayer(name, heritage, hair, outfit string) story.Player {
	return story.Player{
		Name:     textfilter.CleanName(name, DefaultPlayerName, MaxPlayerNameLen),
		Heritage: heritage,
		Hair:     hair,
		Outfit:   outfit,
	}
}
