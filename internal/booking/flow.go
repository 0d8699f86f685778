// Package booking runs the appointment flow: validate the form, gate on a
// manual payment acknowledgment unless the barber is an apprentice, insert one
// calendar event, and hand back the client feedback.
//
// The payment acknowledgment is self-reported by the client. Nothing checks
// that money actually moved.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	// Zone data for images without /usr/share/zoneinfo.
	_ "time/tzdata"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sevenbarberclub/booking/internal/calendar"
	"github.com/sevenbarberclub/booking/internal/catalog"
	"github.com/sevenbarberclub/booking/internal/notify"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

var bookingTracer = otel.Tracer("sevenbarber.internal.booking")

// EventDuration is the fixed length of every appointment.
const EventDuration = time.Hour

// Payment status strings written into the event description.
const (
	PaymentStatusPaid   = "PAID"
	PaymentStatusWaived = "not applicable — apprentice"
)

// Status is the result of a flow step that did not fail.
type Status string

const (
	StatusPaymentPending Status = "payment_pending"
	StatusCreated        Status = "created"
)

// Outcome is what the client sees after a flow step.
type Outcome struct {
	Status  Status
	Message string
	// Quote is set while payment is pending.
	Quote *Quote
	// Price is the formatted quote or confirmed price.
	Price        string
	Confirmation *Confirmation
	// Warnings carry non-fatal problems after the event was created.
	Warnings []string
}

// ClientNotifier sends the client a confirmation after the event is created.
type ClientNotifier interface {
	SendConfirmation(ctx context.Context, d notify.BookingDetails) error
}

// Recorder receives flow metrics. metrics.BookingMetrics implements it.
type Recorder interface {
	ObserveSubmission(result string)
	ObservePaymentGate(event string)
	ObserveCalendarInsert(result string, seconds float64)
}

// Config holds the fixed settings of the flow.
type Config struct {
	CalendarID string
	// Timezone is the IANA zone of the shop, e.g. "America/Guayaquil".
	Timezone string
	ShopName string
}

// Option customizes a Flow.
type Option func(*Flow)

// WithRenderer replaces the built-in texts.
func WithRenderer(r *notify.Renderer) Option {
	return func(f *Flow) {
		if r != nil {
			f.renderer = r
		}
	}
}

// WithLinker sets how the WhatsApp link is built.
func WithLinker(l notify.WhatsAppLinker) Option {
	return func(f *Flow) { f.linker = l }
}

// WithNotifier enables client confirmations.
func WithNotifier(n ClientNotifier) Option {
	return func(f *Flow) { f.notifier = n }
}

// WithRecorder enables metrics.
func WithRecorder(r Recorder) Option {
	return func(f *Flow) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// Flow drives a Session through the booking states. It holds no per-session
// data and is safe for concurrent use across sessions.
type Flow struct {
	cfg      Config
	loc      *time.Location
	catalog  *catalog.Catalog
	gateway  calendar.Gateway
	renderer *notify.Renderer
	linker   notify.WhatsAppLinker
	notifier ClientNotifier
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

// NewFlow constructs a booking flow.
func NewFlow(cfg Config, cat *catalog.Catalog, gateway calendar.Gateway, logger *logging.Logger, opts ...Option) (*Flow, error) {
	if cat == nil {
		return nil, errors.New("booking: catalog required")
	}
	if gateway == nil {
		return nil, errors.New("booking: calendar gateway required")
	}
	if cfg.Timezone == "" {
		return nil, errors.New("booking: timezone required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking: load timezone: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	f := &Flow{
		cfg:      cfg,
		loc:      loc,
		catalog:  cat,
		gateway:  gateway,
		renderer: notify.DefaultRenderer(),
		linker:   notify.WhatsAppLinker{BaseURL: notify.DefaultWhatsAppBaseURL, CountryCode: "593"},
		recorder: noopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Catalog exposes the table the flow validates against.
func (f *Flow) Catalog() *catalog.Catalog { return f.catalog }

// Timezone returns the configured zone name.
func (f *Flow) Timezone() string { return f.cfg.Timezone }

// resolved is a form whose values were found in the catalog.
type resolved struct {
	service    catalog.Service
	barber     catalog.Barber
	start      time.Time
	priceCents int
}

// Submit handles the submit action on s.
//
// An incomplete form yields *ValidationError and leaves s unchanged. An
// apprentice booking goes straight to the calendar. Any other booking opens
// the payment gate and returns StatusPaymentPending until ConfirmPayment is
// called; once confirmed, Submit creates the event. A calendar failure yields
// *GatewayError and leaves s unchanged so the client can resubmit.
func (f *Flow) Submit(ctx context.Context, s *Session) (*Outcome, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(attribute.String("booking.session_id", s.ID))

	r, err := f.resolve(s.Form)
	if err != nil {
		f.recorder.ObserveSubmission("invalid")
		f.logger.Warn("booking form rejected", "session_id", s.ID, "error", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("booking.barber", r.barber.ID),
		attribute.String("booking.service", r.service.ID),
	)

	if r.barber.IsApprentice() {
		s.Stage = StagePaymentWaived
		s.Quote = nil
		return f.createEvent(ctx, s, r, PaymentStatusWaived)
	}

	if s.Stage == StagePaymentConfirmed && quoteMatches(s.Quote, r) {
		return f.createEvent(ctx, s, r, PaymentStatusPaid)
	}

	return f.openGate(s, r), nil
}

// ConfirmPayment records the client's "I paid" acknowledgment and proceeds
// to event creation. It fails with ErrPaymentNotPending unless the gate is open.
func (f *Flow) ConfirmPayment(ctx context.Context, s *Session) (*Outcome, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm_payment")
	defer span.End()
	span.SetAttributes(attribute.String("booking.session_id", s.ID))

	if s.Stage != StagePaymentPending {
		return nil, ErrPaymentNotPending
	}
	// An incomplete form keeps the gate open.
	if _, err := f.resolve(s.Form); err != nil {
		f.recorder.ObserveSubmission("invalid")
		f.logger.Warn("payment acknowledgment on invalid form", "session_id", s.ID, "error", err)
		return nil, err
	}
	s.Stage = StagePaymentConfirmed
	f.recorder.ObservePaymentGate("acknowledged")
	f.logger.Info("payment acknowledged by client", "session_id", s.ID, "verified", false)

	return f.Submit(ctx, s)
}

// UpdateForm replaces the form on s. A waived or confirmed payment only holds
// for the barber and service it was given for; switching either drops s back
// to idle. An open gate stays open and is re-quoted on the next Submit.
func (f *Flow) UpdateForm(s *Session, req Request) {
	if (s.Stage == StagePaymentWaived || s.Stage == StagePaymentConfirmed) && !f.sameChoice(s.Form, req) {
		s.Stage = StageIdle
		s.Quote = nil
	}
	s.Form = req
}

func (f *Flow) sameChoice(a, b Request) bool {
	sa, errA := f.catalog.Service(a.Service)
	sb, errB := f.catalog.Service(b.Service)
	if errA != nil || errB != nil || sa.ID != sb.ID {
		return false
	}
	ba, errA := f.catalog.Barber(a.Barber)
	bb, errB := f.catalog.Barber(b.Barber)
	return errA == nil && errB == nil && ba.ID == bb.ID
}

// QuoteFor prices a form without changing any state.
func (f *Flow) QuoteFor(req Request) (*Quote, error) {
	r, err := f.resolve(req)
	if err != nil {
		return nil, err
	}
	return &Quote{ServiceID: r.service.ID, BarberID: r.barber.ID, PriceCents: r.priceCents}, nil
}

func (f *Flow) openGate(s *Session, r resolved) *Outcome {
	s.Stage = StagePaymentPending
	s.Quote = &Quote{ServiceID: r.service.ID, BarberID: r.barber.ID, PriceCents: r.priceCents}
	f.recorder.ObservePaymentGate("shown")
	f.recorder.ObserveSubmission("payment_pending")
	f.logger.Info("payment gate shown",
		"session_id", s.ID,
		"barber", r.barber.ID,
		"service", r.service.ID,
		"price_cents", r.priceCents,
	)

	price := catalog.FormatUSD(r.priceCents)
	return &Outcome{
		Status:  StatusPaymentPending,
		Message: fmt.Sprintf("Total a pagar: %s. Escanea el código QR y confirma cuando hayas pagado.", price),
		Quote:   s.Quote,
		Price:   price,
	}
}

func (f *Flow) createEvent(ctx context.Context, s *Session, r resolved, paymentStatus string) (*Outcome, error) {
	req := s.Form
	price := catalog.FormatUSD(r.priceCents)
	details := notify.BookingDetails{
		ShopName:      f.cfg.ShopName,
		ClientName:    strings.TrimSpace(req.ClientName),
		WhatsApp:      strings.TrimSpace(req.WhatsApp),
		Email:         strings.TrimSpace(req.Email),
		Service:       r.service.Name,
		Price:         price,
		Barber:        r.barber.Name,
		Note:          strings.TrimSpace(req.Note),
		PaymentStatus: paymentStatus,
		Date:          strings.TrimSpace(req.Date),
		Time:          strings.TrimSpace(req.Time),
	}

	title, err := f.renderer.Render(notify.TemplateEventTitle, details)
	if err != nil {
		return nil, err
	}
	description, err := f.renderer.Render(notify.TemplateEventDescription, details)
	if err != nil {
		return nil, err
	}

	ev := calendar.Event{
		Title:       title,
		Description: description,
		Start:       r.start,
		End:         r.start.Add(EventDuration),
		Timezone:    f.cfg.Timezone,
	}

	started := time.Now()
	created, err := f.gateway.CreateEvent(ctx, f.cfg.CalendarID, ev)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		f.recorder.ObserveCalendarInsert("error", elapsed)
		f.recorder.ObserveSubmission("gateway_error")
		f.logger.Error("booking event creation failed", "session_id", s.ID, "error", err)
		return nil, &GatewayError{Err: err}
	}
	f.recorder.ObserveCalendarInsert("ok", elapsed)

	notice, err := f.renderer.Render(notify.TemplateBarberNotice, details)
	if err != nil {
		// The event exists; fall back to the title so the link is still usable.
		notice = title
	}

	conf := &Confirmation{
		EventID:       created.ID,
		EventLink:     created.HTMLLink,
		ClientName:    details.ClientName,
		WhatsApp:      details.WhatsApp,
		Email:         details.Email,
		Service:       details.Service,
		Barber:        details.Barber,
		Note:          details.Note,
		Date:          details.Date,
		Time:          details.Time,
		PriceCents:    r.priceCents,
		Price:         price,
		PaymentStatus: paymentStatus,
		Start:         ev.Start,
		End:           ev.End,
		Timezone:      ev.Timezone,
		WhatsAppURL:   f.linker.Link(details.WhatsApp, notice),
		CreatedAt:     f.now().UTC(),
	}

	out := &Outcome{
		Status:       StatusCreated,
		Message:      fmt.Sprintf("Reserva confirmada correctamente para %s el %s a las %s con %s.", conf.ClientName, conf.Date, conf.Time, conf.Barber),
		Price:        price,
		Confirmation: conf,
	}

	if f.notifier != nil {
		if err := f.notifier.SendConfirmation(ctx, details); err != nil {
			f.logger.Error("booking confirmation email failed", "session_id", s.ID, "error", err)
			out.Warnings = append(out.Warnings, "No se pudo enviar el correo de confirmación: "+err.Error())
		}
	}

	s.LastConfirmation = conf
	s.Reset()

	f.recorder.ObserveSubmission("created")
	f.logger.Info("booking created",
		"session_id", s.ID,
		"event_id", conf.EventID,
		"barber", r.barber.ID,
		"service", r.service.ID,
		"start", conf.Start.Format(time.RFC3339),
		"payment_status", paymentStatus,
	)
	return out, nil
}

// resolve validates presence, then maps the form onto the catalog and computes
// the start time in the shop's zone.
func (f *Flow) resolve(req Request) (resolved, error) {
	if err := Validate(req); err != nil {
		return resolved{}, err
	}

	service, err := f.catalog.Service(req.Service)
	if err != nil {
		return resolved{}, invalidField(FieldService, "unknown service")
	}
	barber, err := f.catalog.Barber(req.Barber)
	if err != nil {
		return resolved{}, invalidField(FieldBarber, "unknown barber")
	}
	tod, err := f.catalog.Slot(req.Time)
	if err != nil {
		return resolved{}, invalidField(FieldTime, "not an available slot")
	}
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(req.Date), f.loc)
	if err != nil {
		return resolved{}, invalidField(FieldDate, "expected YYYY-MM-DD")
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, f.loc)
	return resolved{
		service:    service,
		barber:     barber,
		start:      start,
		priceCents: f.catalog.PriceCents(service, barber),
	}, nil
}

func quoteMatches(q *Quote, r resolved) bool {
	return q != nil &&
		q.ServiceID == r.service.ID &&
		q.BarberID == r.barber.ID &&
		q.PriceCents == r.priceCents
}

type noopRecorder struct{}

func (noopRecorder) ObserveSubmission(string)              {}
func (noopRecorder) ObservePaymentGate(string)             {}
func (noopRecorder) ObserveCalendarInsert(string, float64) {}
