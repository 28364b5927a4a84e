package domain

import (
	"context"
	"time"
)

// InventoryCounter is the remaining capacity or stock of one (event, key)
// bucket. A nil Remaining means the bucket is unlimited.
// swagger:model InventoryCounter
type InventoryCounter struct {
	EventID   string `json:"event_id"`
	Key       string `json:"key"`
	Remaining *int   `json:"remaining"`
	Total     *int   `json:"total"`
}

// ReservationState tracks the one-shot consumption of a reservation token.
type ReservationState string

const (
	ReservationHeld      ReservationState = "held"
	ReservationCommitted ReservationState = "committed"
	ReservationReleased  ReservationState = "released"
)

// ReservationToken proves that an inventory decrement happened. Keys lists
// every counter that was decremented by Quantity.
type ReservationToken struct {
	ID         string           `json:"id"`
	EventID    string           `json:"event_id"`
	Keys       []string         `json:"keys"`
	Quantity   int              `json:"quantity"`
	State      ReservationState `json:"state"`
	CreatedAt  time.Time        `json:"created_at"`
	ReleasedAt *time.Time       `json:"released_at,omitempty"`
}

// ReleaseReason says why a reservation is being returned. The cancellation
// policy only applies to ReleaseCancelled, the cancellation of a confirmed
// registration; an unpaid pending registration always gives its unit back.
type ReleaseReason string

const (
	ReleaseAborted          ReleaseReason = "aborted"
	ReleaseRejected         ReleaseReason = "rejected"
	ReleaseCancelled        ReleaseReason = "cancelled"
	ReleaseCancelledPending ReleaseReason = "cancelled_pending"
)

// InventoryRepository stores counters and reservation tokens. Decrement must
// be a single conditional update: it succeeds only when remaining >= qty.
type InventoryRepository interface {
	Seed(ctx context.Context, counters []InventoryCounter) error
	Decrement(ctx context.Context, eventID, key string, qty int) (bool, error)
	Increment(ctx context.Context, eventID, key string, qty int) error
	ListCounters(ctx context.Context, eventID string) ([]InventoryCounter, error)
	CreateReservation(ctx context.Context, token *ReservationToken) error
	GetReservation(ctx context.Context, id string) (*ReservationToken, error)
	// CommitReservation moves a held token to committed.
	CommitReservation(ctx context.Context, id string) error
	// ConsumeReservation marks a token released and returns it. The boolean is
	// false when the token had already been released.
	ConsumeReservation(ctx context.Context, id string, at time.Time) (*ReservationToken, bool, error)
}

// InventoryLedger reserves and returns units of capacity or stock.
type InventoryLedger interface {
	TryReserve(ctx context.Context, event *Event, variant *VariantSelection, qty int) (*ReservationToken, error)
	// Release returns the reservation's units. It reports whether units were
	// actually returned: false for an already released token or when the
	// cancellation policy keeps the unit.
	Release(ctx context.Context, reservationID string, reason ReleaseReason) (bool, error)
	Commit(ctx context.Context, reservationID string) error
	Snapshot(ctx context.Context, eventID string) ([]InventoryCounter, error)
}
