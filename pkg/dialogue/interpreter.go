package dialogue

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/nevermore/pkg/state"
	"github.com/jwebster45206/nevermore/pkg/story"
)

var (
	// ErrBusy is returned by Start while a dialogue is already presenting.
	ErrBusy = errors.New("dialogue already active")
	// ErrNoGraph is returned by Start on an interpreter built without a graph.
	ErrNoGraph = errors.New("no story graph loaded")
)

// Phase is the interpreter's position in its state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePresenting
	PhaseFaulted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePresenting:
		return "presenting"
	case PhaseFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Interpreter walks a story graph, or an inline sequence, one beat at a time.
// It is the only component that writes to the StoryState it is given.
//
// All methods must be called from a single goroutine; input is processed in
// the order it arrives.
type Interpreter struct {
	graph     *story.Graph
	state     *state.StoryState
	presenter Presenter
	logger    *slog.Logger
	effects   map[string]EffectFunc
	observers []Observer

	phase Phase
	fault error
	busy  bool // a transition is running; blocks re-entry from effects

	frame Frame

	// Graph mode
	node story.ResolvedNode

	// Sequence mode
	seq     *story.Sequence
	line    story.Line
	pending []story.Line
}

// New creates an idle interpreter. graph may be nil when only inline
// sequences will be played.
func New(graph *story.Graph, st *state.StoryState, presenter Presenter, logger *slog.Logger) *Interpreter {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		graph:     graph,
		state:     st,
		presenter: presenter,
		logger:    logger,
		effects:   make(map[string]EffectFunc),
	}
}

// WithEffect registers a named effect for "call" instructions.
func (in *Interpreter) WithEffect(name string, fn EffectFunc) *Interpreter {
	in.effects[name] = fn
	return in
}

// WithObserver adds an observer that is notified of every event.
func (in *Interpreter) WithObserver(o Observer) *Interpreter {
	if o != nil {
		in.observers = append(in.observers, o)
	}
	return in
}

// Graph returns the graph the interpreter walks.
func (in *Interpreter) Graph() *story.Graph { return in.graph }

// State returns a read-only view of the story state.
func (in *Interpreter) State() story.StateView { return in.state }

// Phase returns the current phase.
func (in *Interpreter) Phase() Phase { return in.phase }

// IsActive is true between Start and the Close that ends the dialogue.
func (in *Interpreter) IsActive() bool { return in.phase == PhasePresenting }

// Fault returns the authoring error that stopped the interpreter, if any.
func (in *Interpreter) Fault() error { return in.fault }

// Current returns the frame being presented.
func (in *Interpreter) Current() (Frame, bool) {
	if in.phase != PhasePresenting {
		return Frame{}, false
	}
	return in.frame, true
}

// Start begins presenting the graph at nodeID, or at the graph's start node
// when nodeID is empty. A missing node presents the broken-link line.
func (in *Interpreter) Start(nodeID string) error {
	if err := in.canStart(); err != nil {
		return err
	}
	if in.graph == nil {
		return ErrNoGraph
	}
	if nodeID == "" {
		nodeID = in.graph.Start()
	}

	in.busy = true
	defer func() { in.busy = false }()

	in.seq = nil
	in.phase = PhasePresenting
	in.logger.Info("Dialogue started", "node", nodeID)
	in.emit(Event{Kind: EventStarted, NodeID: nodeID})
	return in.enterNode(nodeID)
}

// StartSequence begins playing an inline script. An empty script closes
// immediately, running its OnEnd.
func (in *Interpreter) StartSequence(seq story.Sequence) error {
	if err := in.canStart(); err != nil {
		return err
	}

	in.busy = true
	defer func() { in.busy = false }()

	in.seq = &seq
	in.pending = append([]story.Line(nil), seq.Lines...)
	in.phase = PhasePresenting
	in.logger.Info("Sequence started", "sequence", seq.Name, "lines", len(seq.Lines))
	in.emit(Event{Kind: EventStarted, NodeID: seq.Name})
	return in.nextLine()
}

func (in *Interpreter) canStart() error {
	switch {
	case in.phase == PhaseFaulted:
		return in.fault
	case in.phase == PhasePresenting || in.busy:
		return ErrBusy
	}
	return nil
}

// Choose selects the option at index in the current frame. Input while
// idle, on a frame without options, or with an out-of-range index is
// ignored.
func (in *Interpreter) Choose(index int) error {
	if in.phase != PhasePresenting || in.busy {
		return nil
	}
	if index < 0 || index >= len(in.frame.Options) {
		in.logger.Debug("Ignoring choice", "index", index, "options", len(in.frame.Options))
		return nil
	}

	in.busy = true
	defer func() { in.busy = false }()

	if in.seq != nil {
		return in.chooseBranch(index)
	}
	return in.chooseOption(index)
}

// Advance moves past a frame without options. Input while idle or on a
// frame that waits for a choice is ignored.
func (in *Interpreter) Advance() error {
	if in.phase != PhasePresenting || in.busy || in.frame.HasOptions() {
		return nil
	}

	in.busy = true
	defer func() { in.busy = false }()

	if in.seq != nil {
		return in.nextLine()
	}

	next, err := in.node.Next.Resolve(in.state)
	if err != nil {
		return in.fail(&story.AuthoringError{NodeID: in.node.ID, Field: "next", Err: err})
	}
	if next == "" {
		return in.close()
	}
	return in.enterNode(next)
}

// Close ends the dialogue, running the active node's OnEnd. Closing an
// idle or faulted interpreter does nothing.
func (in *Interpreter) Close() error {
	if in.phase != PhasePresenting {
		return nil
	}
	if in.busy {
		return ErrBusy
	}

	in.busy = true
	defer func() { in.busy = false }()
	return in.close()
}

func (in *Interpreter) chooseOption(index int) error {
	opt := in.node.Options[index]
	nodeID := in.node.ID
	in.logger.Debug("Option chosen", "node", nodeID, "index", index, "label", opt.Label)
	in.emit(Event{Kind: EventChose, NodeID: nodeID, Option: index, Label: opt.Label})

	in.mergeFlags(nodeID, opt.SetFlags)
	if err := in.run(nodeID, fmt.Sprintf("options[%d].effects", opt.Source), opt.Effects); err != nil {
		return in.fail(err)
	}

	next, err := opt.Next.Resolve(in.state)
	if err != nil {
		return in.fail(&story.AuthoringError{NodeID: nodeID, Field: fmt.Sprintf("options[%d].next", opt.Source), Err: err})
	}
	if next == "" {
		return in.close()
	}
	return in.enterNode(next)
}

func (in *Interpreter) chooseBranch(index int) error {
	br := in.line.Branches[index]
	name := in.seq.Name
	in.logger.Debug("Branch chosen", "sequence", name, "index", index, "label", br.Label)
	in.emit(Event{Kind: EventChose, NodeID: name, Option: index, Label: br.Label})

	in.mergeFlags(name, br.SetFlags)
	if err := in.run(name, fmt.Sprintf("branches[%d].effects", index), br.Effects); err != nil {
		return in.fail(err)
	}

	if len(br.Next) > 0 {
		in.pending = append(append([]story.Line(nil), br.Next...), in.pending...)
	}
	return in.nextLine()
}

// enterNode resolves id and presents it.
func (in *Interpreter) enterNode(id string) error {
	node, err := in.graph.Resolve(id, in.state)
	if err != nil {
		return in.fail(err)
	}
	if node.Broken {
		in.logger.Warn("Missing story node", "node", id)
		in.emit(Event{Kind: EventBrokenLink, NodeID: id})
	}
	in.node = node

	opts := make([]OptionView, len(node.Options))
	for i, o := range node.Options {
		opts[i] = OptionView{Label: o.Label, Index: o.Index}
	}
	in.present(Frame{
		NodeID:  node.ID,
		Speaker: node.Speaker,
		Body:    node.Text,
		Options: opts,
		Broken:  node.Broken,
	})
	return nil
}

// nextLine pops the next queued line, or closes when none remain.
func (in *Interpreter) nextLine() error {
	if len(in.pending) == 0 {
		return in.close()
	}
	in.line = in.pending[0]
	in.pending = in.pending[1:]

	opts := make([]OptionView, len(in.line.Branches))
	for i, b := range in.line.Branches {
		opts[i] = OptionView{Label: b.Label, Index: i}
	}
	in.present(Frame{
		NodeID:  in.seq.Name,
		Speaker: in.line.Speaker,
		Body:    in.line.Text,
		Options: opts,
	})
	return nil
}

func (in *Interpreter) present(f Frame) {
	if len(f.Options) == 0 {
		f.Options = nil
	}
	in.frame = f
	in.presenter.OptionsCleared()
	in.presenter.Present(f)
	in.emit(Event{Kind: EventPresented, NodeID: f.NodeID, Text: f.Speaker})
}

// close lands on Idle, hides the UI, then runs the terminal OnEnd. OnEnd
// runs before control returns to the caller.
func (in *Interpreter) close() error {
	id, onEnd := in.node.ID, in.node.OnEnd
	if in.seq != nil {
		id, onEnd = in.seq.Name, in.seq.OnEnd
	}

	in.reset()
	in.presenter.OptionsCleared()
	in.presenter.Closed()

	err := in.run(id, "on_end", onEnd)
	in.logger.Info("Dialogue closed", "node", id)
	in.emit(Event{Kind: EventClosed, NodeID: id})
	if err != nil {
		return in.fail(err)
	}
	return nil
}

func (in *Interpreter) reset() {
	in.phase = PhaseIdle
	in.frame = Frame{}
	in.node = story.ResolvedNode{}
	in.seq = nil
	in.line = story.Line{}
	in.pending = nil
}

// fail stops the interpreter on an authoring error. The error is returned
// so callers can propagate it directly.
func (in *Interpreter) fail(err error) error {
	var ae *story.AuthoringError
	if !errors.As(err, &ae) {
		err = &story.AuthoringError{NodeID: in.frame.NodeID, Err: err}
	}

	in.reset()
	in.phase = PhaseFaulted
	in.fault = err

	in.logger.Error("Story authoring error", "error", err)
	in.presenter.OptionsCleared()
	in.presenter.Faulted(err)
	in.emit(Event{Kind: EventFaulted, NodeID: nodeOf(err), Err: err})
	return err
}

func nodeOf(err error) string {
	var ae *story.AuthoringError
	if errors.As(err, &ae) {
		return ae.NodeID
	}
	return ""
}

func (in *Interpreter) emit(ev Event) {
	for _, o := range in.observers {
		o.Observe(ev)
	}
}
