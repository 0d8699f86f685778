package booking

import (
	"errors"
	"strings"
)

// MsgFillRequired is shown whenever required fields are missing.
const MsgFillRequired = "Por favor completa todos los campos obligatorios marcados con * antes de continuar."

// ErrPaymentNotPending is returned when a payment acknowledgment arrives
// while no payment gate is open.
var ErrPaymentNotPending = errors.New("booking: no payment pending")

// ValidationError reports a form that cannot be submitted. The session is
// left untouched so the client can correct it.
type ValidationError struct {
	// Missing lists required fields left blank.
	Missing []string
	// Invalid maps fields to the reason their value was rejected.
	Invalid map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for field, reason := range e.Invalid {
		parts = append(parts, field+": "+reason)
	}
	return "booking: fill all required fields (" + strings.Join(parts, "; ") + ")"
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Invalid: map[string]string{field: reason}}
}

// GatewayError wraps a failed calendar insert. Its message is the gateway's,
// unchanged, so it can be shown to the client as-is.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return "calendar gateway failed"
	}
	return e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }
