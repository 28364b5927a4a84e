package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func TestLedger_ReserveAndReleaseOnce(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(2))
	ctx := context.Background()

	token, err := h.ledger.TryReserve(ctx, event, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SeatsKey}, token.Keys)
	assert.Equal(t, 0, h.remaining(t, event.ID, domain.SeatsKey))

	_, err = h.ledger.TryReserve(ctx, event, nil, 1)
	assert.ErrorIs(t, err, domain.ErrCapacityReached)

	returned, err := h.ledger.Release(ctx, token.ID, domain.ReleaseAborted)
	require.NoError(t, err)
	assert.True(t, returned)
	returned, err = h.ledger.Release(ctx, token.ID, domain.ReleaseAborted)
	require.NoError(t, err)
	assert.False(t, returned)
	assert.Equal(t, 2, h.remaining(t, event.ID, domain.SeatsKey))
}

func TestLedger_PartialDecrementRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	event := &domain.Event{
		ID:               "ev-odd",
		Kind:             domain.EventKindStock,
		Status:           domain.EventStatusPublished,
		RegistrationOpen: true,
		Variants:         []domain.Variant{{Size: "M", Color: "Red", Stock: 2}},
	}
	require.NoError(t, h.inventory.Seed(ctx, []domain.InventoryCounter{
		{EventID: event.ID, Key: "m/red", Remaining: intPtr(2), Total: intPtr(2)},
		{EventID: event.ID, Key: domain.AggregateKey, Remaining: intPtr(1), Total: intPtr(1)},
	}))

	_, err := h.ledger.TryReserve(ctx, event, &domain.VariantSelection{Size: "M", Color: "Red"}, 2)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, 2, h.remaining(t, event.ID, "m/red"))
	assert.Equal(t, 1, h.remaining(t, event.ID, domain.AggregateKey))
}

func TestLedger_TryReserveChecksWindow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Minute)

	closed := &domain.Event{ID: "e1", Kind: domain.EventKindSeats, Status: domain.EventStatusClosed, RegistrationOpen: true}
	_, err := h.ledger.TryReserve(ctx, closed, nil, 1)
	assert.ErrorIs(t, err, domain.ErrRegistrationClosed)

	late := &domain.Event{ID: "e2", Kind: domain.EventKindSeats, Status: domain.EventStatusPublished, RegistrationOpen: true, RegistrationDeadline: &past}
	_, err = h.ledger.TryReserve(ctx, late, nil, 1)
	assert.ErrorIs(t, err, domain.ErrDeadlinePassed)

	_, err = h.ledger.TryReserve(ctx, late, nil, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLedger_ReleaseUnknownReservation(t *testing.T) {
	h := newHarness(t)
	_, err := h.ledger.Release(context.Background(), "missing", domain.ReleaseRejected)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	returned, err := h.ledger.Release(context.Background(), "", domain.ReleaseRejected)
	require.NoError(t, err)
	assert.False(t, returned)
}
