package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"eventreg/internal/domain"
	"eventreg/internal/metrics"
)

type attendanceService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	auditRepo        domain.AuditRepository
	signer           domain.TicketSigner
	tx               domain.TxManager
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewAttendanceService creates the AttendanceService.
func NewAttendanceService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	auditRepo domain.AuditRepository,
	signer domain.TicketSigner,
	tx domain.TxManager,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		auditRepo:        auditRepo,
		signer:           signer,
		tx:               tx,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

// resolveTicketID returns the ticket id named by the scan input, decoding a
// signed QR payload when one is given.
func (s *attendanceService) resolveTicketID(in domain.ScanInput) (string, error) {
	if in.QRPayload != "" {
		claims, err := s.signer.Parse(in.QRPayload)
		if err != nil {
			return "", domain.NewError(domain.KindTicketNotFound, "qr payload is not a valid ticket")
		}
		if in.TicketID != "" && in.TicketID != claims.TicketID {
			return "", domain.Validation("ticket id does not match qr payload")
		}
		return claims.TicketID, nil
	}
	ticketID := strings.TrimSpace(in.TicketID)
	if ticketID == "" {
		return "", domain.Validation("ticket id or qr payload is required")
	}
	return ticketID, nil
}

func (s *attendanceService) MarkAttendance(ctx context.Context, in domain.ScanInput) (res *domain.AttendanceResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "attendance.Mark", attribute.String("actor.id", in.ActorID))
	defer func() { endSpan(span, err) }()

	ticketID, err := s.resolveTicketID(in)
	if err != nil {
		return nil, err
	}
	method := in.Method
	if method == "" {
		method = domain.ScanQR
	}
	if method != domain.ScanQR && method != domain.ScanManual {
		return nil, domain.Validation(fmt.Sprintf("unknown scan method %q", method))
	}

	reg, err := s.registrationRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get registration by ticket: %w", err)
	}
	return s.apply(ctx, reg.ID, in.ActorID, true, method, in.Reason)
}

func (s *attendanceService) ManualAttendance(ctx context.Context, registrationID, actorID string, markAttended bool, reason string) (res *domain.AttendanceResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "attendance.Manual",
		attribute.String("registration.id", registrationID),
		attribute.Bool("attended", markAttended))
	defer func() { endSpan(span, err) }()

	reason = strings.TrimSpace(reason)
	if !markAttended && reason == "" {
		return nil, domain.ErrReasonRequired
	}
	return s.apply(ctx, registrationID, actorID, markAttended, domain.ScanManual, reason)
}

// apply writes the attendance flag and, only when it changed, the audit entry.
// Both happen in one transaction.
func (s *attendanceService) apply(ctx context.Context, registrationID, actorID string, attended bool, method domain.ScanMethod, reason string) (*domain.AttendanceResult, error) {
	res := &domain.AttendanceResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reg, err := loadRegistration(ctx, s.registrationRepo.GetByIDForUpdate, registrationID)
		if err != nil {
			return err
		}
		if _, err := loadOrganizedEvent(ctx, s.eventRepo, reg.EventID, actorID); err != nil {
			return err
		}
		if reg.Status != domain.RegistrationConfirmed {
			return domain.ErrNotConfirmed
		}

		now := s.now().UTC()
		update := domain.AttendanceUpdate{Attended: attended}
		if attended {
			update.AttendedAt = &now
			update.Method = method
			update.ScannedBy = actorID
		}
		changed, err := s.registrationRepo.SetAttendance(ctx, reg.ID, update)
		if err != nil {
			return fmt.Errorf("set attendance: %w", err)
		}
		res.Registration = reg
		if !changed {
			return nil
		}

		action := domain.AuditMarkPresent
		if !attended {
			action = domain.AuditUnmark
		}
		entry := &domain.AuditEntry{
			ID:             uuid.NewString(),
			EventID:        reg.EventID,
			RegistrationID: reg.ID,
			ActorID:        actorID,
			Action:         action,
			Method:         method,
			Reason:         reason,
			CreatedAt:      now,
		}
		if err := s.auditRepo.Append(ctx, entry); err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}

		reg.Attended = update.Attended
		reg.AttendedAt = update.AttendedAt
		reg.ScanMethod = update.Method
		reg.ScannedBy = update.ScannedBy
		reg.UpdatedAt = now
		res.Entry = entry
		res.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Changed {
		metrics.RecordAttendance(string(res.Entry.Action), string(method))
		s.logger.InfoContext(ctx, "attendance updated",
			"registration_id", registrationID, "action", res.Entry.Action,
			"method", method, "actor_id", actorID)
	}
	return res, nil
}

func (s *attendanceService) AuditLog(ctx context.Context, eventID, actorID string, page domain.PaginationParams) ([]*domain.AuditEntry, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOrganizedEvent(ctx, s.eventRepo, eventID, actorID); err != nil {
		return nil, 0, err
	}
	entries, total, err := s.auditRepo.ListByEvent(ctx, eventID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	if entries == nil {
		entries = []*domain.AuditEntry{}
	}
	return entries, total, nil
}
