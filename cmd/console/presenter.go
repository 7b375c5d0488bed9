package main

import "github.com/jwebster45206/nevermore/pkg/dialogue"

// dialoguePane holds what the interpreter last asked to show. The
// interpreter only calls it from inside Update, so View always sees a
// settled frame.
type dialoguePane struct {
	frame dialogue.Frame
	open  bool
	fault error
}

// Ensure dialoguePane implements dialogue.Presenter
var _ dialogue.Presenter = (*dialoguePane)(nil)

func (p *dialoguePane) Present(f dialogue.Frame) {
	p.frame = f
	p.open = true
	p.fault = nil
}

func (p *dialoguePane) OptionsCleared() {
	p.frame.Options = nil
}

func (p *dialoguePane) Closed() {
	p.frame = dialogue.Frame{}
	p.open = false
}

func (p *dialoguePane) Faulted(err error) {
	p.fault = err
	p.open = false
}
