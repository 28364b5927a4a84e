package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventreg/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	ledger           domain.InventoryLedger
	tx               domain.TxManager
	notifier         domain.Notifier
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewRegistrationService creates the RegistrationService.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	ledger domain.InventoryLedger,
	tx domain.TxManager,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		ledger:           ledger,
		tx:               tx,
		notifier:         notifier,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *registrationService) Get(ctx context.Context, registrationID, actorID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := loadRegistration(ctx, s.registrationRepo.GetByID, registrationID)
	if err != nil {
		return nil, err
	}
	// Participants see their own rows; organizers see every row of their event.
	if reg.ParticipantID != actorID {
		if _, err := loadOrganizedEvent(ctx, s.eventRepo, reg.EventID, actorID); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (s *registrationService) ListMine(ctx context.Context, eventID, participantID string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadEvent(ctx, s.eventRepo, eventID); err != nil {
		return nil, err
	}
	regs, err := s.registrationRepo.ListByEventAndParticipant(ctx, eventID, participantID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID, actorID string, filter domain.RegistrationFilter, page domain.PaginationParams) ([]*domain.Registration, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOrganizedEvent(ctx, s.eventRepo, eventID, actorID); err != nil {
		return nil, 0, err
	}
	regs, total, err := s.registrationRepo.ListByEvent(ctx, eventID, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, total, nil
}

// Cancel moves an active registration to Cancelled and hands its reservation
// back to the ledger, which decides whether units return to stock.
// Cancelling an already cancelled row returns it unchanged.
func (s *registrationService) Cancel(ctx context.Context, registrationID, participantID, reason string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		reg      *domain.Registration
		already  bool
		returned bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = loadRegistration(ctx, s.registrationRepo.GetByIDForUpdate, registrationID)
		if err != nil {
			return err
		}
		if reg.ParticipantID != participantID {
			return domain.NewError(domain.KindForbidden, "only the registrant may cancel this registration")
		}
		if reg.Status == domain.RegistrationCancelled {
			already = true
			return nil
		}
		if !reg.Status.IsActive() {
			return domain.NewError(domain.KindInvalidTransition, "a %s registration cannot be cancelled", reg.Status)
		}

		release := domain.ReleaseCancelled
		if reg.Status == domain.RegistrationPending {
			release = domain.ReleaseCancelledPending
		}
		reg.Status = domain.RegistrationCancelled
		reg.CancelReason = strings.TrimSpace(reason)
		reg.UpdatedAt = s.now().UTC()
		if err := s.registrationRepo.UpdateState(ctx, reg); err != nil {
			return err
		}
		returned, err = s.ledger.Release(ctx, reg.ReservationID, release)
		return err
	})
	if err != nil {
		return nil, err
	}
	if already {
		return reg, nil
	}

	s.logger.InfoContext(ctx, "registration cancelled",
		"registration_id", reg.ID, "event_id", reg.EventID, "inventory_returned", returned)
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		s.logger.DebugContext(ctx, "event lookup for cancellation notice failed",
			"event_id", reg.EventID, "error", err)
	}
	notify(ctx, s.notifier, s.logger, notificationFor(domain.NotifyRegistrationCancelled, event, reg))
	return reg, nil
}
