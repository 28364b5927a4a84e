package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventreg/internal/domain"
	"eventreg/internal/metrics"
)

// LedgerOptions tunes the inventory ledger.
type LedgerOptions struct {
	// ReleaseOnCancelAfterStart returns a cancelled registration's units even
	// when the event has already started.
	ReleaseOnCancelAfterStart bool
}

type inventoryLedger struct {
	inventoryRepo domain.InventoryRepository
	eventRepo     domain.EventRepository
	tx            domain.TxManager
	opts          LedgerOptions
	logger        *slog.Logger
	now           func() time.Time
}

// NewInventoryLedger creates an InventoryLedger on top of the given stores.
func NewInventoryLedger(
	inventoryRepo domain.InventoryRepository,
	eventRepo domain.EventRepository,
	tx domain.TxManager,
	opts LedgerOptions,
	logger *slog.Logger,
) domain.InventoryLedger {
	return &inventoryLedger{
		inventoryRepo: inventoryRepo,
		eventRepo:     eventRepo,
		tx:            tx,
		opts:          opts,
		logger:        logger,
		now:           time.Now,
	}
}

// reservationKeys returns the counters a reservation decrements and the
// error kind reported when one of them is exhausted.
func reservationKeys(event *domain.Event, variant *domain.VariantSelection) ([]string, domain.ErrorKind, error) {
	if event.Kind != domain.EventKindStock {
		return []string{domain.SeatsKey}, domain.KindCapacityReached, nil
	}
	if variant == nil {
		return nil, "", domain.Validation("variant selection is required for this event")
	}
	v, ok := event.FindVariant(variant.Size, variant.Color)
	if !ok {
		return nil, "", domain.Validation(fmt.Sprintf("unknown variant %s/%s", variant.Size, variant.Color))
	}
	return []string{v.Key(), domain.AggregateKey}, domain.KindOutOfStock, nil
}

func (l *inventoryLedger) TryReserve(ctx context.Context, event *domain.Event, variant *domain.VariantSelection, qty int) (*domain.ReservationToken, error) {
	if qty < 1 {
		return nil, domain.Validation("quantity must be at least 1")
	}
	if !event.AcceptsRegistrations() || !event.RegistrationOpen {
		return nil, domain.ErrRegistrationClosed
	}
	if event.DeadlinePassed(l.now()) {
		return nil, domain.ErrDeadlinePassed
	}
	keys, exhausted, err := reservationKeys(event, variant)
	if err != nil {
		return nil, err
	}

	token := &domain.ReservationToken{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		Keys:      keys,
		Quantity:  qty,
		State:     domain.ReservationHeld,
		CreatedAt: l.now().UTC(),
	}
	// All keys are decremented in one transaction so a failure on the
	// aggregate rolls back the variant decrement.
	err = l.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, key := range keys {
			ok, err := l.inventoryRepo.Decrement(ctx, event.ID, key, qty)
			if err != nil {
				return fmt.Errorf("decrement %s: %w", key, err)
			}
			if !ok {
				if exhausted == domain.KindCapacityReached {
					return domain.ErrCapacityReached
				}
				return domain.ErrOutOfStock
			}
		}
		if err := l.inventoryRepo.CreateReservation(ctx, token); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (l *inventoryLedger) Release(ctx context.Context, reservationID string, reason domain.ReleaseReason) (bool, error) {
	if reservationID == "" {
		return false, nil
	}
	var returned bool
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		token, err := l.inventoryRepo.GetReservation(ctx, reservationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewError(domain.KindNotFound, "reservation not found")
			}
			return fmt.Errorf("get reservation: %w", err)
		}
		if token.State == domain.ReservationReleased {
			return nil
		}
		if reason == domain.ReleaseCancelled && !l.opts.ReleaseOnCancelAfterStart {
			event, err := loadEvent(ctx, l.eventRepo, token.EventID)
			if err != nil {
				return err
			}
			if event.HasStarted(l.now()) {
				l.logger.InfoContext(ctx, "cancellation after event start keeps inventory",
					"reservation_id", reservationID, "event_id", token.EventID)
				return nil
			}
		}

		token, consumed, err := l.inventoryRepo.ConsumeReservation(ctx, reservationID, l.now().UTC())
		if err != nil {
			return fmt.Errorf("consume reservation: %w", err)
		}
		if !consumed {
			return nil
		}
		for _, key := range token.Keys {
			if err := l.inventoryRepo.Increment(ctx, token.EventID, key, token.Quantity); err != nil {
				return fmt.Errorf("increment %s: %w", key, err)
			}
		}
		returned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	metrics.RecordInventoryRelease(string(reason), returned)
	return returned, nil
}

func (l *inventoryLedger) Commit(ctx context.Context, reservationID string) error {
	if err := l.inventoryRepo.CommitReservation(ctx, reservationID); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

func (l *inventoryLedger) Snapshot(ctx context.Context, eventID string) ([]domain.InventoryCounter, error) {
	counters, err := l.inventoryRepo.ListCounters(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	return counters, nil
}
