package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sevenbarberclub/booking/internal/booking"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Used when USE_MEMORY_SESSIONS=true
// and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]struct{}
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. ttl <= 0 uses two hours.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]struct{}),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context) (*booking.Session, error) {
	sess := booking.NewSession(NewID())
	if err := m.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*booking.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	// Stored as JSON so callers never share a *Session.
	var sess booking.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, fmt.Errorf("sessions: unmarshal: %w", err)
	}
	return &sess, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *booking.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	sess.UpdatedAt = now.UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("sessions: marshal: %w", err)
	}
	m.entries[sess.ID] = memoryEntry{data: data, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[id]; held {
		return nil, ErrBusy
	}
	m.locks[id] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}
