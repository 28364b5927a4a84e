package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"eventreg/internal/domain"
)

type registrationRepository struct {
	store *Store
}

// NewRegistrationRepository returns a RegistrationRepository backed by store.
func NewRegistrationRepository(store *Store) domain.RegistrationRepository {
	return &registrationRepository{store: store}
}

func copyRegistration(r *domain.Registration) *domain.Registration {
	c := *r
	c.Answers = maps.Clone(r.Answers)
	c.TeamMembers = slices.Clone(r.TeamMembers)
	if r.Variant != nil {
		v := *r.Variant
		c.Variant = &v
	}
	return &c
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	defer r.store.lock(ctx)()
	st := r.store.state
	if _, exists := st.registrations[reg.ID]; exists {
		return fmt.Errorf("registration %s already exists", reg.ID)
	}
	if reg.Status.IsActive() {
		for _, other := range st.registrations {
			if other.EventID == reg.EventID && other.ParticipantID == reg.ParticipantID && other.Status.IsActive() {
				return domain.ErrDuplicateActive
			}
		}
	}
	if reg.TicketID != "" && r.ticketTaken(reg.TicketID) {
		return domain.ErrTicketIDCollision
	}
	st.registrations[reg.ID] = copyRegistration(reg)
	st.regOrder = append(st.regOrder, reg.ID)
	return nil
}

func (r *registrationRepository) ticketTaken(ticketID string) bool {
	for _, other := range r.store.state.registrations {
		if other.TicketID == ticketID {
			return true
		}
	}
	return false
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	defer r.store.lock(ctx)()
	reg, ok := r.store.state.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRegistration(reg), nil
}

// GetByIDForUpdate is GetByID: the store mutex already serializes writers.
func (r *registrationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registration, error) {
	return r.GetByID(ctx, id)
}

func (r *registrationRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Registration, error) {
	defer r.store.lock(ctx)()
	for _, reg := range r.store.state.registrations {
		if reg.TicketID == ticketID {
			return copyRegistration(reg), nil
		}
	}
	return nil, domain.ErrNotFound
}

// ordered returns registrations matching keep in insertion order.
func (r *registrationRepository) ordered(keep func(*domain.Registration) bool) []*domain.Registration {
	st := r.store.state
	var out []*domain.Registration
	for _, id := range st.regOrder {
		if reg := st.registrations[id]; keep(reg) {
			out = append(out, copyRegistration(reg))
		}
	}
	return out
}

func (r *registrationRepository) GetActive(ctx context.Context, eventID, participantID string) (*domain.Registration, error) {
	defer r.store.lock(ctx)()
	regs := r.ordered(func(reg *domain.Registration) bool {
		return reg.EventID == eventID && reg.ParticipantID == participantID && reg.Status.IsActive()
	})
	if len(regs) == 0 {
		return nil, domain.ErrNotFound
	}
	return regs[len(regs)-1], nil
}

func (r *registrationRepository) ListByEventAndParticipant(ctx context.Context, eventID, participantID string) ([]*domain.Registration, error) {
	defer r.store.lock(ctx)()
	regs := r.ordered(func(reg *domain.Registration) bool {
		return reg.EventID == eventID && reg.ParticipantID == participantID
	})
	slices.Reverse(regs)
	return regs, nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string, filter domain.RegistrationFilter, p domain.PaginationParams) ([]*domain.Registration, int, error) {
	defer r.store.lock(ctx)()
	regs := r.ordered(func(reg *domain.Registration) bool {
		if reg.EventID != eventID {
			return false
		}
		return filter.Status == nil || reg.Status == *filter.Status
	})
	return page(regs, p), len(regs), nil
}

func (r *registrationRepository) update(ctx context.Context, id string, fn func(reg *domain.Registration) (bool, error)) (bool, error) {
	defer r.store.lock(ctx)()
	st := r.store.state
	reg, ok := st.registrations[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	c := copyRegistration(reg)
	changed, err := fn(c)
	if err != nil || !changed {
		return false, err
	}
	st.registrations[id] = c
	return true, nil
}

func (r *registrationRepository) UpdateState(ctx context.Context, reg *domain.Registration) error {
	_, err := r.update(ctx, reg.ID, func(c *domain.Registration) (bool, error) {
		c.Status = reg.Status
		c.Payment = reg.Payment
		c.CancelReason = reg.CancelReason
		c.UpdatedAt = reg.UpdatedAt
		return true, nil
	})
	return err
}

func (r *registrationRepository) AssignTicket(ctx context.Context, id, ticketID, qrPayload string) (bool, error) {
	return r.update(ctx, id, func(c *domain.Registration) (bool, error) {
		if c.TicketID != "" {
			return false, nil
		}
		if r.ticketTaken(ticketID) {
			return false, domain.ErrTicketIDCollision
		}
		c.TicketID = ticketID
		c.QRPayload = qrPayload
		c.UpdatedAt = time.Now().UTC()
		return true, nil
	})
}

func (r *registrationRepository) SetAttendance(ctx context.Context, id string, update domain.AttendanceUpdate) (bool, error) {
	return r.update(ctx, id, func(c *domain.Registration) (bool, error) {
		if c.Status != domain.RegistrationConfirmed || c.Attended == update.Attended {
			return false, nil
		}
		c.Attended = update.Attended
		c.AttendedAt = update.AttendedAt
		c.ScanMethod = update.Method
		c.ScannedBy = update.ScannedBy
		c.UpdatedAt = time.Now().UTC()
		return true, nil
	})
}
