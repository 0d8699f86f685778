package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevenbarberclub/booking/internal/http/handlers"
	httpmiddleware "github.com/sevenbarberclub/booking/internal/http/middleware"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Booking            *handlers.BookingHandler
	Index              http.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Applied to the /api routes only. RateLimitRPS <= 0 disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Booking.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.Index != nil {
		r.Handle("/", cfg.Index)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
		api.Get("/catalog", cfg.Booking.Catalog)
		api.Post("/sessions", cfg.Booking.CreateSession)
		api.Route("/sessions/{sessionID}", func(s chi.Router) {
			s.Get("/", cfg.Booking.GetSession)
			s.Put("/form", cfg.Booking.UpdateForm)
			s.Post("/submit", cfg.Booking.Submit)
			s.Post("/payment/confirm", cfg.Booking.ConfirmPayment)
			s.Get("/payment/qr.png", cfg.Booking.PaymentQR)
			s.Get("/receipt.pdf", cfg.Booking.Receipt)
		})
	})

	return r
}
