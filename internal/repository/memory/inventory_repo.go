package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"eventreg/internal/domain"
)

type inventoryRepository struct {
	store *Store
}

// NewInventoryRepository returns an InventoryRepository backed by store.
func NewInventoryRepository(store *Store) domain.InventoryRepository {
	return &inventoryRepository{store: store}
}

func (r *inventoryRepository) Seed(ctx context.Context, counters []domain.InventoryCounter) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	for _, c := range counters {
		k := counterKey{eventID: c.EventID, key: c.Key}
		if _, exists := st.counters[k]; !exists {
			st.counterOrder[c.EventID] = append(slices.Clone(st.counterOrder[c.EventID]), c.Key)
		}
		v := counter{}
		if c.Remaining != nil {
			v.limited = true
			v.remaining = *c.Remaining
			v.total = *c.Remaining
			if c.Total != nil {
				v.total = *c.Total
			}
		}
		st.counters[k] = v
	}
	return nil
}

// Decrement is atomic because the store mutex is held for the whole check
// and write.
func (r *inventoryRepository) Decrement(ctx context.Context, eventID, key string, qty int) (bool, error) {
	defer r.store.lock(ctx)()
	st := r.store.state
	k := counterKey{eventID: eventID, key: key}
	c, ok := st.counters[k]
	if !ok {
		return false, fmt.Errorf("counter %s/%s: %w", eventID, key, domain.ErrNotFound)
	}
	if !c.limited {
		return true, nil
	}
	if c.remaining < qty {
		return false, nil
	}
	c.remaining -= qty
	st.counters[k] = c
	return true, nil
}

func (r *inventoryRepository) Increment(ctx context.Context, eventID, key string, qty int) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	k := counterKey{eventID: eventID, key: key}
	c, ok := st.counters[k]
	if !ok {
		return fmt.Errorf("counter %s/%s: %w", eventID, key, domain.ErrNotFound)
	}
	if c.limited {
		c.remaining += qty
		st.counters[k] = c
	}
	return nil
}

func (r *inventoryRepository) ListCounters(ctx context.Context, eventID string) ([]domain.InventoryCounter, error) {
	defer r.store.lock(ctx)()
	st := r.store.state
	keys := st.counterOrder[eventID]
	out := make([]domain.InventoryCounter, 0, len(keys))
	for _, key := range keys {
		c := st.counters[counterKey{eventID: eventID, key: key}]
		ic := domain.InventoryCounter{EventID: eventID, Key: key}
		if c.limited {
			remaining, total := c.remaining, c.total
			ic.Remaining, ic.Total = &remaining, &total
		}
		out = append(out, ic)
	}
	return out, nil
}

func copyToken(t *domain.ReservationToken) *domain.ReservationToken {
	c := *t
	c.Keys = slices.Clone(t.Keys)
	return &c
}

func (r *inventoryRepository) CreateReservation(ctx context.Context, token *domain.ReservationToken) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	if _, exists := st.reservations[token.ID]; exists {
		return fmt.Errorf("reservation %s already exists", token.ID)
	}
	st.reservations[token.ID] = copyToken(token)
	return nil
}

func (r *inventoryRepository) GetReservation(ctx context.Context, id string) (*domain.ReservationToken, error) {
	defer r.store.lock(ctx)()
	t, ok := r.store.state.reservations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyToken(t), nil
}

func (r *inventoryRepository) CommitReservation(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	t, ok := st.reservations[id]
	if !ok {
		return domain.ErrNotFound
	}
	if t.State == domain.ReservationHeld {
		c := copyToken(t)
		c.State = domain.ReservationCommitted
		st.reservations[id] = c
	}
	return nil
}

func (r *inventoryRepository) ConsumeReservation(ctx context.Context, id string, at time.Time) (*domain.ReservationToken, bool, error) {
	defer r.store.lock(ctx)()
	st := r.store.state
	t, ok := st.reservations[id]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if t.State == domain.ReservationReleased {
		return copyToken(t), false, nil
	}
	c := copyToken(t)
	c.State = domain.ReservationReleased
	c.ReleasedAt = &at
	st.reservations[id] = c
	return copyToken(c), true, nil
}
