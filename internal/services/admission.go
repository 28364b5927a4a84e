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

type admissionService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	ledger           domain.InventoryLedger
	forms            domain.FormService
	tickets          domain.TicketService
	tx               domain.TxManager
	notifier         domain.Notifier
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewAdmissionService creates the AdmissionService.
func NewAdmissionService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	ledger domain.InventoryLedger,
	forms domain.FormService,
	tickets domain.TicketService,
	tx domain.TxManager,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AdmissionService {
	return &admissionService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		ledger:           ledger,
		forms:            forms,
		tickets:          tickets,
		tx:               tx,
		notifier:         notifier,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *admissionService) Register(ctx context.Context, in domain.RegisterInput) (reg *domain.Registration, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ctx, span := startSpan(ctx, "admission.Register",
		attribute.String("event.id", in.EventID),
		attribute.String("participant.id", in.ParticipantID))
	defer func() {
		outcome := "error"
		if err == nil {
			outcome = string(reg.Status)
		} else if kind := domain.KindOf(err); kind != domain.KindInternal {
			outcome = string(kind)
		}
		metrics.RecordAdmission(outcome)
		endSpan(span, err)
	}()

	if strings.TrimSpace(in.ParticipantID) == "" {
		return nil, domain.Validation("participant id is required")
	}

	event, err := loadEvent(ctx, s.eventRepo, in.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPreconditions(ctx, event, in); err != nil {
		return nil, err
	}

	qty := 1
	var variant *domain.VariantSelection
	if event.Kind == domain.EventKindStock {
		if in.Variant == nil {
			return nil, domain.Validation("variant selection is required for this event")
		}
		v := *in.Variant
		if v.Quantity == 0 {
			v.Quantity = 1
		}
		if v.Quantity < 0 {
			return nil, domain.Validation("quantity must be at least 1")
		}
		if _, ok := event.FindVariant(v.Size, v.Color); !ok {
			return nil, domain.Validation(fmt.Sprintf("unknown variant %s/%s", v.Size, v.Color))
		}
		variant, qty = &v, v.Quantity
	}

	now := s.now().UTC()
	reg = &domain.Registration{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		ParticipantID: in.ParticipantID,
		Status:        domain.RegistrationConfirmed,
		Answers:       in.Answers,
		Variant:       variant,
		TeamName:      strings.TrimSpace(in.TeamName),
		TeamMembers:   in.TeamMembers,
		ContactEmail:  strings.TrimSpace(in.ContactEmail),
		Payment:       domain.PaymentApproval{Status: domain.PaymentNotRequired},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if event.RequiresPayment {
		reg.Status = domain.RegistrationPending
		reg.Payment.Status = domain.PaymentPending
	}

	// Reservation, persistence, the form lock and (for free events) the
	// ticket commit or roll back together, so a failed attempt never keeps
	// a decremented counter.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Answers are checked against the schema under a shared lock, so a
		// concurrent edit cannot land between validation and the form lock.
		current, err := s.eventRepo.GetByIDForShare(ctx, event.ID)
		if err != nil {
			return fmt.Errorf("reload event: %w", err)
		}
		if err := s.forms.ValidateAnswers(current.FormSchema, in.Answers); err != nil {
			return err
		}

		token, err := s.ledger.TryReserve(ctx, event, variant, qty)
		if err != nil {
			return err
		}
		reg.ReservationID = token.ID

		if err := s.registrationRepo.Create(ctx, reg); err != nil {
			if errors.Is(err, domain.ErrDuplicateActive) {
				return domain.ErrDuplicateActive
			}
			return fmt.Errorf("create registration: %w", err)
		}
		if err := s.forms.LockOnFirstRegistration(ctx, event.ID); err != nil {
			return err
		}
		if reg.Status != domain.RegistrationConfirmed {
			return nil
		}
		if err := s.ledger.Commit(ctx, token.ID); err != nil {
			return err
		}
		if _, err := s.tickets.IssueTicket(ctx, reg); err != nil {
			return fmt.Errorf("issue ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		if reg.ReservationID != "" {
			s.logger.WarnContext(ctx, "admission rolled back, reservation released",
				"event_id", event.ID, "participant_id", in.ParticipantID,
				"reservation_id", reg.ReservationID, "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "registration admitted",
		"registration_id", reg.ID, "event_id", event.ID,
		"participant_id", reg.ParticipantID, "status", reg.Status)

	notice := domain.NotifyRegistrationReceived
	if reg.Status == domain.RegistrationConfirmed {
		notice = domain.NotifyRegistrationConfirmed
	}
	notify(ctx, s.notifier, s.logger, notificationFor(notice, event, reg))
	return reg, nil
}

// checkPreconditions runs the fail-fast checks that precede any reservation.
func (s *admissionService) checkPreconditions(ctx context.Context, event *domain.Event, in domain.RegisterInput) error {
	if !event.AcceptsRegistrations() || !event.RegistrationOpen {
		return domain.ErrRegistrationClosed
	}
	if event.DeadlinePassed(s.now()) {
		return domain.ErrDeadlinePassed
	}
	if !event.Eligibility.Allows(in.Attributes) {
		return domain.ErrNotEligible
	}

	active, err := s.registrationRepo.GetActive(ctx, event.ID, in.ParticipantID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get active registration: %w", err)
	}
	if active != nil {
		return domain.ErrDuplicateActive
	}

	if event.Eligibility.RequiresTeam() {
		if strings.TrimSpace(in.TeamName) == "" {
			return domain.Validation("team name is required for this event")
		}
		size := len(in.TeamMembers)
		rule := event.Eligibility
		if (rule.MinTeamSize > 0 && size < rule.MinTeamSize) || (rule.MaxTeamSize > 0 && size > rule.MaxTeamSize) {
			return domain.NewError(domain.KindNotEligible,
				"team must have between %d and %d members", rule.MinTeamSize, rule.MaxTeamSize)
		}
	}
	return nil
}
