// Package sessions keeps the per-client booking form state between requests.
// State is ephemeral: every write refreshes a TTL and nothing survives it.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"

	"github.com/sevenbarberclub/booking/internal/booking"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("sessions: not found")
	// ErrBusy is returned when another request holds the session lock.
	ErrBusy = errors.New("sessions: submission already in progress")
)

// Store persists booking sessions.
type Store interface {
	Create(ctx context.Context) (*booking.Session, error)
	Get(ctx context.Context, id string) (*booking.Session, error)
	Save(ctx context.Context, s *booking.Session) error
	// Lock serializes flow steps on one session. It fails fast with ErrBusy
	// instead of waiting.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// NewID returns a random 32-character session identifier.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
