package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"eventreg/internal/domain"
	"eventreg/internal/metrics"
)

type paymentService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	ledger           domain.InventoryLedger
	tickets          domain.TicketService
	tx               domain.TxManager
	notifier         domain.Notifier
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewPaymentService creates the PaymentService driving organizer approval.
func NewPaymentService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	ledger domain.InventoryLedger,
	tickets domain.TicketService,
	tx domain.TxManager,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.PaymentService {
	return &paymentService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		ledger:           ledger,
		tickets:          tickets,
		tx:               tx,
		notifier:         notifier,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *paymentService) AttachProof(ctx context.Context, registrationID, participantID, proofRef string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	proofRef = strings.TrimSpace(proofRef)
	if proofRef == "" {
		return nil, domain.Validation("proof reference is required")
	}

	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = loadRegistration(ctx, s.registrationRepo.GetByIDForUpdate, registrationID)
		if err != nil {
			return err
		}
		if reg.ParticipantID != participantID {
			return domain.NewError(domain.KindForbidden, "only the registrant may attach payment proof")
		}
		if reg.Status != domain.RegistrationPending || reg.Payment.Status != domain.PaymentPending {
			return domain.NewError(domain.KindInvalidTransition, "payment proof can only be attached to a pending registration")
		}
		reg.Payment.ProofRef = proofRef
		reg.UpdatedAt = s.now().UTC()
		return s.registrationRepo.UpdateState(ctx, reg)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "payment proof attached", "registration_id", reg.ID)
	return reg, nil
}

// decide loads the registration under lock and checks the organizer. The
// returned bool is true when the registration already holds the target
// payment status, in which case nothing else should happen.
func (s *paymentService) decide(ctx context.Context, registrationID, actorID string, target domain.PaymentStatus) (*domain.Registration, *domain.Event, bool, error) {
	reg, err := loadRegistration(ctx, s.registrationRepo.GetByIDForUpdate, registrationID)
	if err != nil {
		return nil, nil, false, err
	}
	event, err := loadOrganizedEvent(ctx, s.eventRepo, reg.EventID, actorID)
	if err != nil {
		return nil, nil, false, err
	}
	if reg.Payment.Status == target {
		return reg, event, true, nil
	}
	if reg.Status != domain.RegistrationPending || reg.Payment.Status != domain.PaymentPending {
		return nil, nil, false, domain.NewError(domain.KindInvalidTransition,
			"registration is %s with payment %s", reg.Status, reg.Payment.Status)
	}
	return reg, event, false, nil
}

func (s *paymentService) Approve(ctx context.Context, registrationID, actorID, notes string) (reg *domain.Registration, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "payment.Approve", attribute.String("registration.id", registrationID))
	defer func() { endSpan(span, err) }()

	var (
		event     *domain.Event
		finalized bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, event, finalized, err = s.decide(ctx, registrationID, actorID, domain.PaymentApproved)
		if err != nil || finalized {
			return err
		}
		if reg.Payment.ProofRef == "" {
			return domain.ErrProofMissing
		}

		now := s.now().UTC()
		reg.Status = domain.RegistrationConfirmed
		reg.Payment.Status = domain.PaymentApproved
		reg.Payment.Notes = notes
		reg.Payment.ActorID = actorID
		reg.Payment.DecidedAt = &now
		reg.UpdatedAt = now
		if err := s.registrationRepo.UpdateState(ctx, reg); err != nil {
			return err
		}
		if err := s.ledger.Commit(ctx, reg.ReservationID); err != nil {
			return err
		}
		_, err = s.tickets.IssueTicket(ctx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	if finalized {
		return reg, nil
	}

	metrics.RecordPaymentDecision("approved")
	s.logger.InfoContext(ctx, "payment approved",
		"registration_id", reg.ID, "actor_id", actorID, "ticket_id", reg.TicketID)
	notify(ctx, s.notifier, s.logger, notificationFor(domain.NotifyRegistrationConfirmed, event, reg))
	return reg, nil
}

func (s *paymentService) Reject(ctx context.Context, registrationID, actorID, notes string) (reg *domain.Registration, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	ctx, span := startSpan(ctx, "payment.Reject", attribute.String("registration.id", registrationID))
	defer func() { endSpan(span, err) }()

	var (
		event     *domain.Event
		finalized bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, event, finalized, err = s.decide(ctx, registrationID, actorID, domain.PaymentRejected)
		if err != nil || finalized {
			return err
		}

		now := s.now().UTC()
		reg.Status = domain.RegistrationRejected
		reg.Payment.Status = domain.PaymentRejected
		reg.Payment.Notes = notes
		reg.Payment.ActorID = actorID
		reg.Payment.DecidedAt = &now
		reg.UpdatedAt = now
		if err := s.registrationRepo.UpdateState(ctx, reg); err != nil {
			return err
		}
		_, err = s.ledger.Release(ctx, reg.ReservationID, domain.ReleaseRejected)
		return err
	})
	if err != nil {
		return nil, err
	}
	if finalized {
		return reg, nil
	}

	metrics.RecordPaymentDecision("rejected")
	s.logger.InfoContext(ctx, "payment rejected", "registration_id", reg.ID, "actor_id", actorID)
	notify(ctx, s.notifier, s.logger, notificationFor(domain.NotifyPaymentRejected, event, reg))
	return reg, nil
}
