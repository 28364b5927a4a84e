package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventreg/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	inventoryRepo  domain.InventoryRepository
	ledger         domain.InventoryLedger
	tx             domain.TxManager
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates the organizer-facing EventService.
func NewEventService(
	eventRepo domain.EventRepository,
	inventoryRepo domain.InventoryRepository,
	ledger domain.InventoryLedger,
	tx domain.TxManager,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		inventoryRepo:  inventoryRepo,
		ledger:         ledger,
		tx:             tx,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func validateEventInput(in domain.CreateEventInput) []string {
	var errs []string
	if strings.TrimSpace(in.OrganizerID) == "" {
		errs = append(errs, "organizer is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, "name is required")
	}
	switch in.Kind {
	case domain.EventKindSeats:
		if in.CapacityLimit != nil && *in.CapacityLimit < 1 {
			errs = append(errs, "capacity_limit must be at least 1")
		}
		if len(in.Variants) > 0 {
			errs = append(errs, "variants are only allowed on stock events")
		}
	case domain.EventKindStock:
		if len(in.Variants) == 0 {
			errs = append(errs, "stock events need at least one variant")
		}
		seen := make(map[string]struct{}, len(in.Variants))
		for _, v := range in.Variants {
			if strings.TrimSpace(v.Size) == "" || strings.TrimSpace(v.Color) == "" {
				errs = append(errs, "variant size and color are required")
			}
			if v.Stock < 0 {
				errs = append(errs, fmt.Sprintf("variant %s has negative stock", v.Key()))
			}
			if _, dup := seen[v.Key()]; dup {
				errs = append(errs, fmt.Sprintf("duplicate variant %s", v.Key()))
			}
			seen[v.Key()] = struct{}{}
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown event kind %q", in.Kind))
	}

	rule := in.Eligibility
	switch rule.Type {
	case "", domain.EligibilityOpen, domain.EligibilityTeam:
	case domain.EligibilityAttribute:
		if rule.Attribute == "" || len(rule.AllowedValues) == 0 {
			errs = append(errs, "attribute eligibility needs an attribute and allowed values")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown eligibility type %q", rule.Type))
	}
	if rule.MinTeamSize < 0 || rule.MaxTeamSize < 0 || (rule.MaxTeamSize > 0 && rule.MinTeamSize > rule.MaxTeamSize) {
		errs = append(errs, "invalid team size bounds")
	}
	return append(errs, in.FormSchema.Validate()...)
}

func (s *eventService) CreateEvent(ctx context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if errs := validateEventInput(in); len(errs) > 0 {
		return nil, domain.Validation(errs...)
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:                   uuid.NewString(),
		OrganizerID:          in.OrganizerID,
		Name:                 strings.TrimSpace(in.Name),
		Kind:                 in.Kind,
		Status:               domain.EventStatusDraft,
		CapacityLimit:        in.CapacityLimit,
		Variants:             in.Variants,
		StartsAt:             in.StartsAt,
		RegistrationDeadline: in.RegistrationDeadline,
		RegistrationOpen:     true,
		RequiresPayment:      in.RequiresPayment,
		Eligibility:          in.Eligibility,
		FormSchema:           in.FormSchema,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if event.Eligibility.Type == "" {
		event.Eligibility.Type = domain.EligibilityOpen
	}
	if event.FormSchema == nil {
		event.FormSchema = domain.FormSchema{}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := s.inventoryRepo.Seed(ctx, event.InitialCounters()); err != nil {
			return fmt.Errorf("seed inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "organizer_id", event.OrganizerID, "kind", event.Kind)
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventWithInventory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := loadEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	counters, err := s.ledger.Snapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if counters == nil {
		counters = []domain.InventoryCounter{}
	}
	return &domain.EventWithInventory{Event: event, Inventory: counters}, nil
}

func (s *eventService) TransitionEvent(ctx context.Context, eventID, actorID string, next domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := loadOrganizedEvent(ctx, s.eventRepo, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if event.Status == next {
		return event, nil
	}
	if !event.CanTransitionTo(next) {
		return nil, domain.NewError(domain.KindInvalidTransition, "event cannot move from %s to %s", event.Status, next)
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, next); err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	s.logger.InfoContext(ctx, "event status changed", "event_id", eventID, "from", event.Status, "to", next)
	event.Status = next
	return event, nil
}

func (s *eventService) SetRegistrationOpen(ctx context.Context, eventID, actorID string, open bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := loadOrganizedEvent(ctx, s.eventRepo, eventID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.SetRegistrationOpen(ctx, eventID, open); err != nil {
		return nil, fmt.Errorf("set registration open: %w", err)
	}
	event.RegistrationOpen = open
	s.logger.InfoContext(ctx, "registration window changed", "event_id", eventID, "open", open)
	return event, nil
}
