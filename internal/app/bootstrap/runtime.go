// Package bootstrap turns configuration into the service's runtime
// dependencies.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/sevenbarberclub/booking/internal/booking"
	"github.com/sevenbarberclub/booking/internal/calendar"
	appconfig "github.com/sevenbarberclub/booking/internal/config"
	"github.com/sevenbarberclub/booking/internal/notify"
	"github.com/sevenbarberclub/booking/internal/payments"
	"github.com/sevenbarberclub/booking/internal/sessions"
	"github.com/sevenbarberclub/booking/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks Redis unless memory sessions are requested. An
// unreachable Redis falls back to memory outside production.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (sessions.Store, *redis.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.UseMemorySessions {
		logger.Info("using in-memory session store")
		return sessions.NewMemoryStore(cfg.SessionTTL), nil, nil
	}
	client := BuildRedisClient(ctx, cfg, logger, true)
	if client == nil {
		if cfg.Env == "production" {
			return nil, nil, fmt.Errorf("bootstrap: redis unavailable at %q", cfg.RedisAddr)
		}
		logger.Warn("redis unavailable; falling back to in-memory sessions", "addr", cfg.RedisAddr)
		return sessions.NewMemoryStore(cfg.SessionTTL), nil, nil
	}
	return sessions.NewRedisStore(client, cfg.SessionTTL, logger), client, nil
}

// BuildCalendarGateway returns the Google Calendar client, or an in-memory
// calendar when USE_FAKE_CALENDAR is set.
func BuildCalendarGateway(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (calendar.Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.UseFakeCalendar {
		logger.Warn("USE_FAKE_CALENDAR enabled; bookings are not sent to Google Calendar")
		return calendar.NewMemoryGateway(), nil
	}
	if strings.TrimSpace(cfg.CalendarID) == "" {
		return nil, fmt.Errorf("bootstrap: CALENDAR_ID is required")
	}
	gw, err := calendar.NewGoogleGateway(ctx, cfg.GoogleCredentialsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: google calendar: %w", err)
	}
	return gw, nil
}

// BuildNotifier returns the confirmation mailer. Without SendGrid settings the
// mailer only logs what it would have sent.
func BuildNotifier(cfg *appconfig.Config, renderer *notify.Renderer, logger *logging.Logger) booking.ClientNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if cfg != nil && cfg.SendGridFromEmail != "" {
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sg != nil {
			sender = sg
		}
	}
	if _, stub := sender.(*notify.StubEmailSender); stub {
		logger.Info("sendgrid not configured; confirmation emails are logged only")
	}
	return notify.NewConfirmationMailer(sender, renderer)
}

// BuildPaymentQR loads the payment code. Without an image or payload the
// gate still opens but no code is served.
func BuildPaymentQR(cfg *appconfig.Config, logger *logging.Logger) (*payments.QRCode, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PaymentQRImage == "" && cfg.PaymentQRPayload == "" {
		// Paid barbers cannot be booked without something to scan.
		if strings.EqualFold(cfg.Env, "production") {
			return nil, fmt.Errorf("bootstrap: PAYMENT_QR_IMAGE or PAYMENT_QR_PAYLOAD is required in production")
		}
		logger.Warn("no payment QR configured; set PAYMENT_QR_IMAGE or PAYMENT_QR_PAYLOAD")
		return nil, nil
	}
	return payments.LoadQR(payments.QRConfig{
		ImagePath: cfg.PaymentQRImage,
		Payload:   cfg.PaymentQRPayload,
	})
}
