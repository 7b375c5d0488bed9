package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/nevermore/internal/config"
	"github.com/jwebster45206/nevermore/internal/logger"
	"github.com/jwebster45206/nevermore/pkg/campus"
	"github.com/jwebster45206/nevermore/pkg/dialogue"
	"github.com/jwebster45206/nevermore/pkg/router"
	"github.com/jwebster45206/nevermore/pkg/state"
	"github.com/jwebster45206/nevermore/pkg/story"
)

// ErrAlreadyBegun is returned by a second call to Begin.
var ErrAlreadyBegun = errors.New("session already begun")

// Content is the authored material a session plays.
type Content struct {
	Graph         *story.Graph
	Orientation   story.SequenceSpec
	Interactables []router.Interactable
	WorldWidth    float64
	SpawnX        float64
}

// LoadContent reads the story files named in cfg, falling back to the
// embedded campus content for anything not configured.
func LoadContent(cfg *config.Config) (Content, error) {
	var (
		c   = Content{Interactables: campus.Interactables(), WorldWidth: campus.WorldWidth, SpawnX: campus.PlayerStart}
		err error
	)

	if cfg.StoryFile != "" {
		c.Graph, err = story.LoadGraph(cfg.StoryFile)
		if err == nil {
			err = c.Graph.Validate()
		}
	} else {
		c.Graph, err = campus.Graph()
	}
	if err != nil {
		return Content{}, fmt.Errorf("failed to load story graph: %w", err)
	}

	if cfg.OrientationFile != "" {
		c.Orientation, err = story.LoadSequenceSpec(cfg.OrientationFile)
	} else {
		c.Orientation, err = campus.Orientation()
	}
	if err != nil {
		return Content{}, fmt.Errorf("failed to load orientation: %w", err)
	}
	return c, nil
}

// Session is one player's run from character setup to exit. It owns the
// story state and is the only place the interpreter, router and state are
// wired together.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	state   *state.StoryState
	interp  *dialogue.Interpreter
	router  *router.Router
	content Content
	opening string
	logger  *slog.Logger

	pos    router.Vec
	begun  bool
	closed bool
}

// New wires a session for player. Observers receive every dialogue event.
func New(player story.Player, content Content, opening string, presenter dialogue.Presenter, log *slog.Logger, observers ...dialogue.Observer) (*Session, error) {
	if content.Graph == nil {
		return nil, errors.New("session needs a story graph")
	}
	if log == nil {
		log = slog.Default()
	}

	st := state.New(player)
	log = logger.WithSession(log, st.ID.String())

	interp := dialogue.New(content.Graph, st, presenter, log)
	for _, o := range observers {
		interp.WithObserver(o)
	}

	r, err := router.New(interp, st, log, content.Interactables...)
	if err != nil {
		return nil, fmt.Errorf("failed to build trigger router: %w", err)
	}
	interp.WithEffect(campus.EnterExplorationEffect, campus.EnterExploration(func() {
		r.SetEnabled(true)
		log.Info("Exploration started")
	}))

	return &Session{
		ID:        st.ID,
		StartedAt: st.StartedAt,
		state:     st,
		interp:    interp,
		router:    r,
		content:   content,
		opening:   opening,
		logger:    log,
		pos:       router.Vec{X: content.SpawnX},
	}, nil
}

// WithEffect registers an extra named effect on the interpreter.
func (s *Session) WithEffect(name string, fn dialogue.EffectFunc) *Session {
	s.interp.WithEffect(name, fn)
	return s
}

// WithObserver adds a dialogue observer. Observers that need the session
// ID, such as the event broadcaster, are attached this way after New.
func (s *Session) WithObserver(o dialogue.Observer) *Session {
	s.interp.WithObserver(o)
	return s
}

// Begin starts the configured opening.
func (s *Session) Begin() error {
	if s.begun {
		return ErrAlreadyBegun
	}

	var err error
	if s.opening == config.OpeningOrientation {
		var seq story.Sequence
		seq, err = s.content.Orientation.Render(s.state)
		if err != nil {
			return fmt.Errorf("failed to render orientation: %w", err)
		}
		err = s.interp.StartSequence(seq)
	} else {
		err = s.interp.Start(s.content.Graph.Start())
	}
	if err != nil {
		return err
	}

	s.begun = true
	s.logger.Info("Session started", "player", s.state.GetPlayer().Name, "opening", s.opening)
	return nil
}

// Move shifts the player horizontally, clamped to the world. Movement is
// frozen while a dialogue is open.
func (s *Session) Move(dx float64) {
	if s.interp.IsActive() {
		return
	}
	s.pos.X = min(max(s.pos.X+dx, 0), s.content.WorldWidth)
}

// Position is the player's current world position.
func (s *Session) Position() router.Vec { return s.pos }

// Interact handles the interact key at the player's position.
func (s *Session) Interact() (bool, error) {
	return s.router.Interact(s.pos)
}

// Prompt is the interaction hint for the current position.
func (s *Session) Prompt() string {
	return s.router.Prompt(s.pos)
}

// Exploring reports whether the opening has finished.
func (s *Session) Exploring() bool { return s.router.Enabled() }

// Interactables lists the world's interactables with their availability.
func (s *Session) Interactables() []router.Interactable {
	return s.router.Interactables()
}

// Available reports whether an interactable can currently be triggered.
func (s *Session) Available(it router.Interactable) bool {
	return s.router.Available(it)
}

func (s *Session) WorldWidth() float64 { return s.content.WorldWidth }

// Dialogue input

func (s *Session) Choose(i int) error              { return s.interp.Choose(i) }
func (s *Session) Advance() error                  { return s.interp.Advance() }
func (s *Session) CloseDialogue() error            { return s.interp.Close() }
func (s *Session) InDialogue() bool                { return s.interp.IsActive() }
func (s *Session) Current() (dialogue.Frame, bool) { return s.interp.Current() }
func (s *Session) Fault() error                    { return s.interp.Fault() }

// Read-only state

func (s *Session) View() story.StateView        { return s.state }
func (s *Session) Player() story.Player         { return s.state.GetPlayer() }
func (s *Session) Goal() string                 { return s.state.GetGoal() }
func (s *Session) Journal() []string            { return s.state.JournalEntries() }
func (s *Session) RecentJournal(n int) []string { return s.state.RecentJournal(n) }
func (s *Session) Snapshot() state.Snapshot     { return s.state.Snapshot() }

// Concluded reports whether an ending has been reached.
func (s *Session) Concluded() bool {
	return s.state.IsCompleted(campus.MarkerConcluded)
}

// End tears the session down, closing any open dialogue so its OnEnd runs.
// It is safe to call more than once.
func (s *Session) End() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.interp.Close()
	snap := s.state.Snapshot()
	s.logger.Info("Session ended",
		"duration", time.Since(s.StartedAt).Round(time.Second),
		"journal_entries", len(snap.Journal),
		"completed", snap.Completed,
		"goal", snap.Goal,
	)
	return err
}
