package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sevenbarberclub/booking/internal/booking"
	"github.com/sevenbarberclub/booking/internal/catalog"
	"github.com/sevenbarberclub/booking/internal/payments"
	"github.com/sevenbarberclub/booking/internal/sessions"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

const maxFormBytes = 16 << 10

// ReceiptRenderer turns a confirmation into a PDF.
type ReceiptRenderer interface {
	Render(conf *booking.Confirmation) ([]byte, error)
}

// BookingHandler exposes the booking form over HTTP. Every session-scoped
// write runs under the session lock so one client cannot double-submit.
type BookingHandler struct {
	flow          *booking.Flow
	store         sessions.Store
	qr            *payments.QRCode
	receipts      ReceiptRenderer
	publicBaseURL string
	logger        *logging.Logger
}

type BookingHandlerConfig struct {
	Flow     *booking.Flow
	Store    sessions.Store
	QR       *payments.QRCode
	Receipts ReceiptRenderer
	// PublicBaseURL prefixes links returned to the client. Empty keeps them relative.
	PublicBaseURL string
	Logger        *logging.Logger
}

func NewBookingHandler(cfg BookingHandlerConfig) *BookingHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &BookingHandler{
		flow:          cfg.Flow,
		store:         cfg.Store,
		qr:            cfg.QR,
		receipts:      cfg.Receipts,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        cfg.Logger.With("component", "booking_http"),
	}
}

// HealthCheck reports liveness.
func (h *BookingHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogService struct {
	catalog.Service
	Price string `json:"price"`
}

type catalogBarber struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Label            string `json:"label"`
	Apprentice       bool   `json:"apprentice"`
	RequiresPayment  bool   `json:"requires_payment"`
	FixedPriceCents  *int   `json:"fixed_price_cents,omitempty"`
	FixedPriceString string `json:"fixed_price,omitempty"`
}

type catalogResponse struct {
	Services []catalogService `json:"services"`
	Barbers  []catalogBarber  `json:"barbers"`
	Slots    []string         `json:"slots"`
	Timezone string           `json:"timezone"`
}

// Catalog lists what the form can offer.
func (h *BookingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat := h.flow.Catalog()
	resp := catalogResponse{
		Services: make([]catalogService, 0, len(cat.Services)),
		Barbers:  make([]catalogBarber, 0, len(cat.Barbers)),
		Slots:    cat.Slots,
		Timezone: h.flow.Timezone(),
	}
	for _, s := range cat.Services {
		price := catalog.FormatUSD(s.PriceCents)
		if s.PriceFrom {
			price = "desde " + price
		}
		resp.Services = append(resp.Services, catalogService{Service: s, Price: price})
	}
	for _, b := range cat.Barbers {
		cb := catalogBarber{
			ID:              b.ID,
			Name:            b.Name,
			Label:           b.DisplayLabel(),
			Apprentice:      b.IsApprentice(),
			RequiresPayment: !b.IsApprentice(),
			FixedPriceCents: b.PriceCents,
		}
		if b.PriceCents != nil {
			cb.FixedPriceString = catalog.FormatUSD(*b.PriceCents)
		}
		resp.Barbers = append(resp.Barbers, cb)
	}
	writeJSON(w, http.StatusOK, resp)
}

type sessionView struct {
	ID               string                `json:"session_id"`
	Form             booking.Request       `json:"form"`
	Stage            booking.Stage         `json:"stage"`
	QRShown          bool                  `json:"qr_shown"`
	Confirmed        bool                  `json:"confirmed"`
	Quote            *booking.Quote        `json:"quote,omitempty"`
	Price            string                `json:"price,omitempty"`
	QRURL            string                `json:"qr_url,omitempty"`
	LastConfirmation *booking.Confirmation `json:"last_confirmation,omitempty"`
	ReceiptURL       string                `json:"receipt_url,omitempty"`
	// Estimate previews the price of a complete form before it is submitted.
	Estimate string `json:"estimate,omitempty"`
}

func (h *BookingHandler) view(s *booking.Session) sessionView {
	p := s.Payment()
	v := sessionView{
		ID:               s.ID,
		Form:             s.Form,
		Stage:            s.Stage,
		QRShown:          p.QRShown,
		Confirmed:        p.Confirmed,
		Quote:            s.Quote,
		LastConfirmation: s.LastConfirmation,
	}
	if s.Quote != nil {
		v.Price = catalog.FormatUSD(s.Quote.PriceCents)
	}
	if s.Stage == booking.StagePaymentPending && len(h.qr.PNG()) > 0 {
		v.QRURL = h.sessionURL(s.ID, "/payment/qr.png")
	}
	if s.LastConfirmation != nil {
		v.ReceiptURL = h.sessionURL(s.ID, "/receipt.pdf")
	}
	return v
}

func (h *BookingHandler) sessionURL(id, suffix string) string {
	return h.publicBaseURL + "/api/sessions/" + id + suffix
}

// CreateSession starts an empty booking form.
func (h *BookingHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Create(r.Context())
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not start booking"})
		return
	}
	writeJSON(w, http.StatusCreated, h.view(s))
}

// GetSession returns the current form and payment flags.
func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

// UpdateForm replaces the form fields. Payment state is left alone; a changed
// service or barber re-opens the gate on the next submit.
func (h *BookingHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	unlock, ok := h.lockSession(w, r)
	if !ok {
		return
	}
	defer unlock()

	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var req booking.Request
	if err := decodeForm(r, &req); err != nil || req == (booking.Request{}) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
		return
	}
	h.flow.UpdateForm(s, req)
	if !h.save(w, r, s) {
		return
	}
	view := h.view(s)
	if q, err := h.flow.QuoteFor(req); err == nil {
		view.Estimate = catalog.FormatUSD(q.PriceCents)
	}
	writeJSON(w, http.StatusOK, view)
}

type flowResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Price   string `json:"price,omitempty"`
	// PaymentVerified is always false: the acknowledgment is self-reported.
	PaymentVerified bool                  `json:"payment_verified"`
	Confirmation    *booking.Confirmation `json:"confirmation,omitempty"`
	WhatsAppURL     string                `json:"whatsapp_url,omitempty"`
	Warnings        []string              `json:"warnings,omitempty"`
	Session         sessionView           `json:"session"`
}

type flowErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Missing []string          `json:"missing,omitempty"`
	Invalid map[string]string `json:"invalid,omitempty"`
	Session *sessionView      `json:"session,omitempty"`
}

// Submit runs the submit action. A JSON body, when present, replaces the
// form before submitting.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	unlock, ok := h.lockSession(w, r)
	if !ok {
		return
	}
	defer unlock()

	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	var req booking.Request
	if err := decodeForm(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
		return
	}
	if req != (booking.Request{}) {
		h.flow.UpdateForm(s, req)
	}

	out, err := h.flow.Submit(r.Context(), s)
	h.respond(w, r, s, out, err)
}

// ConfirmPayment records the client's "I paid" and creates the event.
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	unlock, ok := h.lockSession(w, r)
	if !ok {
		return
	}
	defer unlock()

	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	out, err := h.flow.ConfirmPayment(r.Context(), s)
	h.respond(w, r, s, out, err)
}

// respond persists s and maps the flow result to a status code. The session
// is saved on failures too: the entered form survives a warning or error.
func (h *BookingHandler) respond(w http.ResponseWriter, r *http.Request, s *booking.Session, out *booking.Outcome, err error) {
	if errors.Is(err, booking.ErrPaymentNotPending) {
		view := h.view(s)
		writeJSON(w, http.StatusConflict, flowErrorResponse{
			Status:  "error",
			Message: "No hay un pago pendiente para esta reserva.",
			Session: &view,
		})
		return
	}

	if !h.save(w, r, s) {
		return
	}
	view := h.view(s)

	var verr *booking.ValidationError
	var gerr *booking.GatewayError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, flowErrorResponse{
			Status:  "warning",
			Message: booking.MsgFillRequired,
			Missing: verr.Missing,
			Invalid: verr.Invalid,
			Session: &view,
		})
		return
	case errors.As(err, &gerr):
		writeJSON(w, http.StatusBadGateway, flowErrorResponse{
			Status:  "error",
			Message: gerr.Error(),
			Session: &view,
		})
		return
	case err != nil:
		h.logger.Error("booking flow failed", "session_id", s.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, flowErrorResponse{
			Status:  "error",
			Message: err.Error(),
			Session: &view,
		})
		return
	}

	resp := flowResponse{
		Status:   string(out.Status),
		Message:  out.Message,
		Price:    out.Price,
		Warnings: out.Warnings,
		Session:  view,
	}
	status := http.StatusOK
	if out.Status == booking.StatusPaymentPending {
		status = http.StatusAccepted
	}
	if out.Confirmation != nil {
		resp.Confirmation = out.Confirmation
		resp.WhatsAppURL = out.Confirmation.WhatsAppURL
	}
	writeJSON(w, status, resp)
}

// PaymentQR serves the payment code while the gate is open.
func (h *BookingHandler) PaymentQR(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	png := h.qr.PNG()
	if s.Stage != booking.StagePaymentPending || len(png) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no payment pending"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Receipt serves the PDF for the session's last confirmed booking.
func (h *BookingHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	s, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if s.LastConfirmation == nil || h.receipts == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no confirmed booking"})
		return
	}
	pdf, err := h.receipts.Render(s.LastConfirmation)
	if err != nil {
		h.logger.Error("failed to render receipt", "session_id", s.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not render receipt"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "reserva-"+s.LastConfirmation.EventID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *BookingHandler) lockSession(w http.ResponseWriter, r *http.Request) (func(), bool) {
	id := chi.URLParam(r, "sessionID")
	unlock, err := h.store.Lock(r.Context(), id)
	if err != nil {
		if errors.Is(err, sessions.ErrBusy) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Ya se está procesando esta reserva."})
			return nil, false
		}
		h.logger.Error("failed to lock session", "session_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return nil, false
	}
	return unlock, true
}

func (h *BookingHandler) loadSession(w http.ResponseWriter, r *http.Request) (*booking.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return nil, false
		}
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return nil, false
	}
	return s, true
}

func (h *BookingHandler) save(w http.ResponseWriter, r *http.Request, s *booking.Session) bool {
	if err := h.store.Save(r.Context(), s); err != nil {
		h.logger.Error("failed to save session", "session_id", s.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return false
	}
	return true
}

// decodeForm reads an optional JSON body. An empty body leaves dst untouched.
func decodeForm(r *http.Request, dst *booking.Request) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
