package booking

import "time"

// Stage is where a session sits in the booking flow between requests.
type Stage string

const (
	StageIdle             Stage = "idle"
	StagePaymentPending   Stage = "payment_pending"
	StagePaymentConfirmed Stage = "payment_confirmed"
	StagePaymentWaived    Stage = "payment_waived"
)

// Payment is the pair of flags the form shows: whether the QR is displayed
// and whether payment counts as confirmed.
type Payment struct {
	QRShown   bool `json:"qr_shown"`
	Confirmed bool `json:"confirmed"`
}

// Payment derives the flags from the stage.
func (s Stage) Payment() Payment {
	switch s {
	case StagePaymentPending:
		return Payment{QRShown: true}
	case StagePaymentConfirmed:
		return Payment{QRShown: true, Confirmed: true}
	case StagePaymentWaived:
		return Payment{Confirmed: true}
	default:
		return Payment{}
	}
}

// Quote is the price shown at the payment gate. An acknowledgment only
// covers the service and barber it was given for.
type Quote struct {
	ServiceID  string `json:"service_id"`
	BarberID   string `json:"barber_id"`
	PriceCents int    `json:"price_cents"`
}

// Session is the per-client state of the booking form. It is owned by one
// client session and passed explicitly through the flow.
type Session struct {
	ID               string        `json:"id"`
	Form             Request       `json:"form"`
	Stage            Stage         `json:"stage"`
	Quote            *Quote        `json:"quote,omitempty"`
	LastConfirmation *Confirmation `json:"last_confirmation,omitempty"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewSession returns an idle session.
func NewSession(id string) *Session {
	return &Session{ID: id, Stage: StageIdle}
}

// Payment returns the session's payment flags.
func (s *Session) Payment() Payment {
	return s.Stage.Payment()
}

// Reset clears the form and payment state. The last confirmation is kept.
func (s *Session) Reset() {
	s.Form = Request{}
	s.Stage = StageIdle
	s.Quote = nil
}

// Confirmation describes a booking that reached the calendar.
type Confirmation struct {
	EventID       string    `json:"event_id"`
	EventLink     string    `json:"event_link,omitempty"`
	ClientName    string    `json:"client_name"`
	WhatsApp      string    `json:"whatsapp"`
	Email         string    `json:"email,omitempty"`
	Service       string    `json:"service"`
	Barber        string    `json:"barber"`
	Note          string    `json:"note,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	PriceCents    int       `json:"price_cents"`
	Price         string    `json:"price"`
	PaymentStatus string    `json:"payment_status"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Timezone      string    `json:"timezone"`
	WhatsAppURL   string    `json:"whatsapp_url"`
	CreatedAt     time.Time `json:"created_at"`
}
