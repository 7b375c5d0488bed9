package dialogue

// EventKind names something that happened inside the interpreter.
type EventKind string

const (
	EventStarted     EventKind = "dialogue.started"
	EventPresented   EventKind = "dialogue.presented"
	EventChose       EventKind = "dialogue.chose"
	EventClosed      EventKind = "dialogue.closed"
	EventBrokenLink  EventKind = "dialogue.broken_link"
	EventFaulted     EventKind = "dialogue.faulted"
	EventFlagsSet    EventKind = "story.flags_set"
	EventJournal     EventKind = "story.journal"
	EventCompleted   EventKind = "story.completed"
	EventGoalChanged EventKind = "story.goal_changed"
)

// Event is delivered to observers after the change it describes.
type Event struct {
	Kind   EventKind
	NodeID string
	Text   string            // Speaker line, journal entry, marker or goal
	Option int               // Chosen option index for EventChose
	Label  string            // Chosen option label for EventChose
	Flags  map[string]string // Flags merged for EventFlagsSet
	Err    error             // EventFaulted only
}

// Observer receives interpreter events. Observers are called synchronously
// and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }
