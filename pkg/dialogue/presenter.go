package dialogue

// OptionView is one choice as the presentation layer should draw it.
type OptionView struct {
	Label string `json:"label"`
	Index int    `json:"index"` // 0-based; pass back to Choose
}

// Hotkey is the 1-based number key for the option.
func (o OptionView) Hotkey() int {
	return o.Index + 1
}

// Frame is everything needed to draw the current beat.
type Frame struct {
	NodeID  string       `json:"node_id,omitempty"`
	Speaker string       `json:"speaker"`
	Body    string       `json:"body"`
	Options []OptionView `json:"options,omitempty"`
	Broken  bool         `json:"broken,omitempty"`
}

// HasOptions reports whether the frame waits for a choice.
func (f Frame) HasOptions() bool {
	return len(f.Options) > 0
}

// Presenter is the presentation collaborator. It only lays out what it is
// given and reports input back through the interpreter.
type Presenter interface {
	// Present shows the speaker, body and options of the current beat.
	Present(Frame)
	// OptionsCleared removes any previously displayed option widgets.
	OptionsCleared()
	// Closed hides all dialogue UI.
	Closed()
	// Faulted reports that story content failed and the dialogue cannot go on.
	Faulted(error)
}

// NopPresenter ignores every call.
type NopPresenter struct{}

func (NopPresenter) Present(Frame)   {}
func (NopPresenter) OptionsCleared() {}
func (NopPresenter) Closed()         {}
func (NopPresenter) Faulted(error)   {}
