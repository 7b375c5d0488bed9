package story

// Player is the character the player built before exploration began.
type Player struct {
	Name     string `json:"name"`
	Heritage string `json:"heritage,omitempty"`
	Hair     string `json:"hair,omitempty"`
	Outfit   string `json:"outfit,omitempty"`
}

// StateView provides the read-only slice of story state needed to resolve
// content and evaluate conditions.
// This avoids an import cycle with the state package
type StateView interface {
	GetFlag(name string) (string, bool)
	GetFlags() map[string]string
	IsCompleted(marker string) bool
	HasJournalEntry(text string) bool
	GetGoal() string
	GetPlayer() Player
}
