package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sevenbarberclub/booking/pkg/logging"
)

var calendarTracer = otel.Tracer("sevenbarber.internal.calendar")

// GoogleGateway inserts events through the Google Calendar v3 API.
type GoogleGateway struct {
	service *gcal.Service
	logger  *logging.Logger
}

// NewGoogleGateway authenticates with a service-account credentials file.
func NewGoogleGateway(ctx context.Context, credentialsFile string, logger *logging.Logger, opts ...option.ClientOption) (*GoogleGateway, error) {
	if credentialsFile == "" && len(opts) == 0 {
		return nil, errors.New("calendar: credentials file required")
	}
	clientOpts := make([]option.ClientOption, 0, len(opts)+2)
	if credentialsFile != "" {
		clientOpts = append(clientOpts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(gcal.CalendarEventsScope),
		)
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: create google service: %w", err)
	}
	return NewGoogleGatewayWithService(svc, logger), nil
}

// NewGoogleGatewayWithService wraps an already configured service.
func NewGoogleGatewayWithService(svc *gcal.Service, logger *logging.Logger) *GoogleGateway {
	if svc == nil {
		panic("calendar: google service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GoogleGateway{service: svc, logger: logger}
}

// CreateEvent inserts ev into calendarID.
func (g *GoogleGateway) CreateEvent(ctx context.Context, calendarID string, ev Event) (*Created, error) {
	ctx, span := calendarTracer.Start(ctx, "calendar.insert")
	defer span.End()
	span.SetAttributes(attribute.String("calendar.id", calendarID))

	out, err := g.service.Events.Insert(calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		g.logger.Error("calendar insert failed", "calendar_id", calendarID, "error", err)
		return nil, err
	}

	g.logger.Info("calendar event created", "calendar_id", calendarID, "event_id", out.Id)
	return &Created{ID: out.Id, HTMLLink: out.HtmlLink}, nil
}

func toGoogleEvent(ev Event) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.Timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.Timezone,
		},
	}
}
