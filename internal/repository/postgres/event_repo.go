package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventreg/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, organizer_id, name, kind, status, capacity_limit, variants, starts_at,
	registration_deadline, registration_open, requires_payment, eligibility, form_schema,
	form_locked, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	list := e.Variants
	if list == nil {
		list = []domain.Variant{}
	}
	variants, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal variants: %w", err)
	}
	eligibility, err := json.Marshal(e.Eligibility)
	if err != nil {
		return fmt.Errorf("marshal eligibility: %w", err)
	}
	schema, err := marshalSchema(e.FormSchema)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = conn(ctx, r.DB).ExecContext(ctx, query,
		e.ID, e.OrganizerID, e.Name, string(e.Kind), string(e.Status), nullInt(e.CapacityLimit), variants,
		nullTime(e.StartsAt), nullTime(e.RegistrationDeadline), e.RegistrationOpen, e.RequiresPayment,
		eligibility, schema, e.FormLocked, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

// GetByIDForShare holds a shared row lock until the transaction ends, so the
// schema cannot change while answers validated against it are persisted.
func (r *eventRepository) GetByIDForShare(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR SHARE`, id)
}

func (r *eventRepository) getOne(ctx context.Context, query string, id string) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		kind, status                  string
		capacity                      sql.NullInt64
		variants, eligibility, schema []byte
		startsAt, deadline            sql.NullTime
	)
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.OrganizerID, &e.Name, &kind, &status, &capacity, &variants, &startsAt,
		&deadline, &e.RegistrationOpen, &e.RequiresPayment, &eligibility, &schema,
		&e.FormLocked, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Kind = domain.EventKind(kind)
	e.Status = domain.EventStatus(status)
	e.CapacityLimit = intPtr(capacity)
	e.StartsAt = timePtr(startsAt)
	e.RegistrationDeadline = timePtr(deadline)
	if err := json.Unmarshal(variants, &e.Variants); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	if err := json.Unmarshal(eligibility, &e.Eligibility); err != nil {
		return nil, fmt.Errorf("decode eligibility: %w", err)
	}
	if err := json.Unmarshal(schema, &e.FormSchema); err != nil {
		return nil, fmt.Errorf("decode form schema: %w", err)
	}
	return e, nil
}

// exec runs an update on a single event row and maps a missing row to ErrNotFound.
func (r *eventRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, query, id, string(status), time.Now().UTC())
}

func (r *eventRepository) SetRegistrationOpen(ctx context.Context, id string, open bool) error {
	query := `UPDATE events SET registration_open = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, query, id, open, time.Now().UTC())
}

func (r *eventRepository) UpdateFormSchema(ctx context.Context, id string, schema domain.FormSchema) error {
	data, err := marshalSchema(schema)
	if err != nil {
		return err
	}
	query := `UPDATE events SET form_schema = $2, updated_at = $3 WHERE id = $1 AND NOT form_locked`
	err = r.exec(ctx, query, id, data, time.Now().UTC())
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	// Zero rows: either the event is missing or the form is locked.
	var locked bool
	err = conn(ctx, r.DB).QueryRowContext(ctx, `SELECT form_locked FROM events WHERE id = $1`, id).Scan(&locked)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case err != nil:
		return err
	case locked:
		return domain.ErrFormLocked
	}
	return fmt.Errorf("update form schema of event %s: no row changed", id)
}

func (r *eventRepository) LockForm(ctx context.Context, id string) (bool, error) {
	query := `UPDATE events SET form_locked = TRUE, updated_at = $2 WHERE id = $1 AND NOT form_locked`
	err := r.exec(ctx, query, id, time.Now().UTC())
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	var found int
	err = conn(ctx, r.DB).QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	return false, err
}

func marshalSchema(schema domain.FormSchema) ([]byte, error) {
	if schema == nil {
		schema = domain.FormSchema{}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal form schema: %w", err)
	}
	return data, nil
}
