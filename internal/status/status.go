package status

import (
	"fmt"
	"sync"
	"time"
)

// State identifies a phase of the server lifecycle.
type State int

const (
	StateInitializing State = iota
	StateAwaitingPermission
	StatePermissionDenied
	StateListenerError
	StateRunning
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAwaitingPermission:
		return "awaiting_permission"
	case StatePermissionDenied:
		return "permission_denied"
	case StateListenerError:
		return "listener_error"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateListenerError || s == StateFailed
}

// Status is a snapshot of the server lifecycle state.
// Port is set only for StateRunning; Message only for error states.
type Status struct {
	State   State  `json:"state"`
	Port    int    `json:"port,omitempty"`
	Message string `json:"message,omitempty"`
}

// Event is one entry of the bounded event log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// MaxEvents bounds the event log; the oldest entry is evicted first.
const MaxEvents = 1000

// Tracker holds the lifecycle status and the bounded event log. It is
// written from the acceptance goroutine and from per-connection goroutines
// and read by the monitoring surface, so all access is mutex-serialized.
type Tracker struct {
	mu     sync.RWMutex
	status Status
	events []Event
}

// NewTracker creates a tracker in StateInitializing.
func NewTracker() *Tracker {
	return &Tracker{
		status: Status{State: StateInitializing},
		events: make([]Event, 0, 64),
	}
}

// SetState transitions to a state without payload. Transitions out of a
// terminal state are ignored.
func (t *Tracker) SetState(s State) {
	t.set(Status{State: s})
}

// SetRunning transitions to StateRunning on the given port.
func (t *Tracker) SetRunning(port int) {
	t.set(Status{State: StateRunning, Port: port})
}

// SetError transitions to an error-carrying state with a message.
func (t *Tracker) SetError(s State, message string) {
	t.set(Status{State: s, Message: message})
}

func (t *Tracker) set(next Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.State.Terminal() {
		return
	}
	t.status = next
}

// Snapshot returns the current lifecycle status.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Eventf appends a timestamped entry to the event log, evicting the oldest
// entry once MaxEvents is reached.
func (t *Tracker) Eventf(format string, args ...any) {
	ev := Event{Timestamp: time.Now(), Message: fmt.Sprintf(format, args...)}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.events) >= MaxEvents {
		// Shift in place instead of reslicing so the backing array
		// does not pin evicted entries forever.
		copy(t.events, t.events[1:])
		t.events = t.events[:MaxEvents-1]
	}
	t.events = append(t.events, ev)
}

// Events returns a copy of the event log in arrival order.
func (t *Tracker) Events() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
