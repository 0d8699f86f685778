package calendar

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StoredEvent is an event kept by MemoryGateway.
type StoredEvent struct {
	ID         string
	CalendarID string
	Event      Event
}

// MemoryGateway keeps events in process. Used for local development
// (USE_FAKE_CALENDAR=true) and tests.
type MemoryGateway struct {
	mu     sync.Mutex
	events []StoredEvent
	err    error
}

// NewMemoryGateway returns an empty in-memory calendar.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

// FailWith makes subsequent inserts return err. Pass nil to recover.
func (m *MemoryGateway) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CreateEvent records ev unless a failure was injected.
func (m *MemoryGateway) CreateEvent(_ context.Context, calendarID string, ev Event) (*Created, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	id := uuid.NewString()
	m.events = append(m.events, StoredEvent{ID: id, CalendarID: calendarID, Event: ev})
	return &Created{ID: id}, nil
}

// Events returns a copy of everything inserted so far.
func (m *MemoryGateway) Events() []StoredEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StoredEvent, len(m.events))
	copy(out, m.events)
	return out
}
