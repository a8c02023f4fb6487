package link

import (
	"sync"

	"github.com/robokit/armlink/internal/arm"
)

// Status is the lifecycle state visible to collaborators.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// EventKind tags one entry of the client's outbound event stream.
type EventKind string

const (
	EventStateUpdate   EventKind = "stateUpdate"
	EventError         EventKind = "error"
	EventConnected     EventKind = "connected"
	EventDisconnected  EventKind = "disconnected"
	EventStatusChanged EventKind = "connectionStatusChanged"
)

// Event is one tagged notification. State is set for stateUpdate, Status
// for connectionStatusChanged, Err for error (and for status changes into
// the error state).
type Event struct {
	Kind   EventKind
	State  *arm.State
	Status Status
	Err    string
}

// emitter fans events out to subscriber channels. Publishing never blocks:
// a full subscriber buffer drops its oldest event in favor of the newest.
type emitter struct {
	mu   sync.Mutex
	subs map[<-chan Event]chan Event
}

func newEmitter() *emitter {
	return &emitter{subs: make(map[<-chan Event]chan Event)}
}

func (e *emitter) subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[ch] = ch
	return ch
}

func (e *emitter) unsubscribe(ch <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sub, ok := e.subs[ch]; ok {
		delete(e.subs, ch)
		close(sub)
	}
}

func (e *emitter) publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (e *emitter) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, ch := range e.subs {
		delete(e.subs, key)
		close(ch)
	}
}
