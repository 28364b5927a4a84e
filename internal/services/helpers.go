package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventreg/internal/domain"
	"eventreg/internal/metrics"
)

var tracer = otel.Tracer("eventreg/internal/services")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// loadEvent returns the event or ErrNotFound.
func loadEvent(ctx context.Context, repo domain.EventRepository, eventID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "event not found")
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// loadOrganizedEvent returns the event if actorID organizes it.
func loadOrganizedEvent(ctx context.Context, repo domain.EventRepository, eventID, actorID string) (*domain.Event, error) {
	event, err := loadEvent(ctx, repo, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != actorID {
		return nil, domain.NewError(domain.KindForbidden, "only the event organizer may do this")
	}
	return event, nil
}

func loadRegistration(ctx context.Context, get func(context.Context, string) (*domain.Registration, error), id string) (*domain.Registration, error) {
	reg, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "registration not found")
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// notify hands n to the notifier. Delivery failures are logged and dropped.
func notify(ctx context.Context, notifier domain.Notifier, logger *slog.Logger, n domain.Notification) {
	if notifier == nil {
		return
	}
	if n.Email == "" {
		logger.DebugContext(ctx, "notification skipped, no contact email",
			"type", n.Type, "registration_id", n.RegistrationID)
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		metrics.RecordNotification(string(n.Type), "error")
		logger.WarnContext(ctx, "notification dispatch failed",
			"type", n.Type, "registration_id", n.RegistrationID, "error", err)
		return
	}
	metrics.RecordNotification(string(n.Type), "queued")
}

func notificationFor(t domain.NotificationType, event *domain.Event, reg *domain.Registration) domain.Notification {
	n := domain.Notification{
		Type:           t,
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		ParticipantID:  reg.ParticipantID,
		Email:          reg.ContactEmail,
		TicketID:       reg.TicketID,
		Notes:          reg.Payment.Notes,
	}
	if event != nil {
		n.EventName = event.Name
	}
	return n
}
