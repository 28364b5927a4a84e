package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"eventreg/internal/domain"
)

type eventRepository struct {
	store *Store
}

// NewEventRepository returns an EventRepository backed by store.
func NewEventRepository(store *Store) domain.EventRepository {
	return &eventRepository{store: store}
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Variants = slices.Clone(e.Variants)
	c.FormSchema = slices.Clone(e.FormSchema)
	c.Eligibility.AllowedValues = slices.Clone(e.Eligibility.AllowedValues)
	return &c
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	if _, exists := st.events[event.ID]; exists {
		return fmt.Errorf("event %s already exists", event.ID)
	}
	st.events[event.ID] = copyEvent(event)
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	defer r.store.lock(ctx)()
	e, ok := r.store.state.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

// GetByIDForShare is GetByID: the store mutex already serializes writers.
func (r *eventRepository) GetByIDForShare(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

// update replaces the stored event with a modified copy.
func (r *eventRepository) update(ctx context.Context, id string, fn func(e *domain.Event) error) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	e, ok := st.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	c := copyEvent(e)
	if err := fn(c); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()
	st.events[id] = c
	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	return r.update(ctx, id, func(e *domain.Event) error {
		e.Status = status
		return nil
	})
}

func (r *eventRepository) SetRegistrationOpen(ctx context.Context, id string, open bool) error {
	return r.update(ctx, id, func(e *domain.Event) error {
		e.RegistrationOpen = open
		return nil
	})
}

func (r *eventRepository) UpdateFormSchema(ctx context.Context, id string, schema domain.FormSchema) error {
	return r.update(ctx, id, func(e *domain.Event) error {
		if e.FormLocked {
			return domain.ErrFormLocked
		}
		e.FormSchema = slices.Clone(schema)
		return nil
	})
}

func (r *eventRepository) LockForm(ctx context.Context, id string) (bool, error) {
	var locked bool
	err := r.update(ctx, id, func(e *domain.Event) error {
		locked = !e.FormLocked
		e.FormLocked = true
		return nil
	})
	return locked, err
}
