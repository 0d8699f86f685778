// Package calendar is the gateway to the external calendar that stores
// confirmed appointments. The booking flow only ever inserts events.
package calendar

import (
	"context"
	"time"
)

// Event is the appointment written to the calendar.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	// Timezone is an IANA zone name, e.g. "America/Guayaquil".
	Timezone string
}

// Created identifies an inserted event.
type Created struct {
	ID       string
	HTMLLink string
}

// Gateway inserts events into a calendar. Calls are not idempotent: inserting
// the same event twice produces two entries.
type Gateway interface {
	CreateEvent(ctx context.Context, calendarID string, ev Event) (*Created, error)
}
