package dialogue

import (
	"sync"
)

// MockPresenter records every render call for tests.
type MockPresenter struct {
	mu      sync.Mutex
	frames  []Frame
	calls   []string
	cleared int
	closed  int
	faults  []error
}

// Ensure MockPresenter implements Presenter interface
var _ Presenter = (*MockPresenter)(nil)

// NewMockPresenter creates an empty recorder.
func NewMockPresenter() *MockPresenter {
	return &MockPresenter{}
}

func (m *MockPresenter) Present(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
	m.calls = append(m.calls, "present")
}

func (m *MockPresenter) OptionsCleared() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.calls = append(m.calls, "cleared")
}

func (m *MockPresenter) Closed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	m.calls = append(m.calls, "closed")
}

func (m *MockPresenter) Faulted(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = append(m.faults, err)
	m.calls = append(m.calls, "faulted")
}

// Frames returns every presented frame in order.
func (m *MockPresenter) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.frames...)
}

// Last returns the most recent frame.
func (m *MockPresenter) Last() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return Frame{}, false
	}
	return m.frames[len(m.frames)-1], true
}

// Calls returns the sequence of presenter methods invoked.
func (m *MockPresenter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ClosedCount is the number of Closed calls.
func (m *MockPresenter) ClosedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ClearedCount is the number of OptionsCleared calls.
func (m *MockPresenter) ClearedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// Faults returns every error passed to Faulted.
func (m *MockPresenter) Faults() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.faults...)
}

// Recorder collects observed events.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns just the kinds of the recorded events.
func (r *Recorder) Kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
