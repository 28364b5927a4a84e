package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventreg/internal/domain"
)

type inventoryRepository struct {
	DB *sql.DB
}

func NewInventoryRepository(db *sql.DB) domain.InventoryRepository {
	return &inventoryRepository{
		DB: db,
	}
}

func (r *inventoryRepository) Seed(ctx context.Context, counters []domain.InventoryCounter) error {
	query := `
		INSERT INTO inventory_counters (event_id, key, remaining, total, ordinal)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, key) DO UPDATE SET remaining = EXCLUDED.remaining, total = EXCLUDED.total
	`
	for i, c := range counters {
		total := c.Total
		if total == nil {
			total = c.Remaining
		}
		if _, err := conn(ctx, r.DB).ExecContext(ctx, query, c.EventID, c.Key, nullInt(c.Remaining), nullInt(total), i); err != nil {
			return fmt.Errorf("seed counter %s: %w", c.Key, err)
		}
	}
	return nil
}

// Decrement is a single conditional update, so concurrent callers can never
// drive a limited counter below zero.
func (r *inventoryRepository) Decrement(ctx context.Context, eventID, key string, qty int) (bool, error) {
	query := `
		UPDATE inventory_counters
		SET remaining = remaining - $3
		WHERE event_id = $1 AND key = $2 AND (remaining IS NULL OR remaining >= $3)
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID, key, qty)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if err := r.counterExists(ctx, eventID, key); err != nil {
		return false, err
	}
	return false, nil
}

func (r *inventoryRepository) Increment(ctx context.Context, eventID, key string, qty int) error {
	query := `
		UPDATE inventory_counters
		SET remaining = remaining + $3
		WHERE event_id = $1 AND key = $2
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID, key, qty)
	if err != nil {
		return err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("counter %s/%s: %w", eventID, key, domain.ErrNotFound)
	}
	return nil
}

func (r *inventoryRepository) counterExists(ctx context.Context, eventID, key string) error {
	var found int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT 1 FROM inventory_counters WHERE event_id = $1 AND key = $2`, eventID, key,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("counter %s/%s: %w", eventID, key, domain.ErrNotFound)
	}
	return err
}

func (r *inventoryRepository) ListCounters(ctx context.Context, eventID string) ([]domain.InventoryCounter, error) {
	query := `
		SELECT event_id, key, remaining, total
		FROM inventory_counters
		WHERE event_id = $1
		ORDER BY ordinal, key
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InventoryCounter
	for rows.Next() {
		var c domain.InventoryCounter
		var remaining, total sql.NullInt64
		if err := rows.Scan(&c.EventID, &c.Key, &remaining, &total); err != nil {
			return nil, err
		}
		c.Remaining = intPtr(remaining)
		c.Total = intPtr(total)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *inventoryRepository) CreateReservation(ctx context.Context, t *domain.ReservationToken) error {
	query := `
		INSERT INTO inventory_reservations (id, event_id, keys, quantity, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		t.ID, t.EventID, pq.Array(t.Keys), t.Quantity, string(t.State), t.CreatedAt,
	)
	return err
}

const reservationColumns = `id, event_id, keys, quantity, state, created_at, released_at`

func scanReservation(row interface{ Scan(...any) error }) (*domain.ReservationToken, error) {
	t := &domain.ReservationToken{}
	var state string
	var releasedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.EventID, pq.Array(&t.Keys), &t.Quantity, &state, &t.CreatedAt, &releasedAt); err != nil {
		return nil, err
	}
	t.State = domain.ReservationState(state)
	t.ReleasedAt = timePtr(releasedAt)
	return t, nil
}

func (r *inventoryRepository) GetReservation(ctx context.Context, id string) (*domain.ReservationToken, error) {
	query := `SELECT ` + reservationColumns + ` FROM inventory_reservations WHERE id = $1`
	t, err := scanReservation(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *inventoryRepository) CommitReservation(ctx context.Context, id string) error {
	query := `UPDATE inventory_reservations SET state = 'committed' WHERE id = $1 AND state = 'held'`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	_, err = r.GetReservation(ctx, id)
	return err
}

// ConsumeReservation moves a reservation to released exactly once. The second
// return value is false when it had already been released.
func (r *inventoryRepository) ConsumeReservation(ctx context.Context, id string, at time.Time) (*domain.ReservationToken, bool, error) {
	query := `
		UPDATE inventory_reservations
		SET state = 'released', released_at = $2
		WHERE id = $1 AND state <> 'released'
		RETURNING ` + reservationColumns
	t, err := scanReservation(conn(ctx, r.DB).QueryRowContext(ctx, query, id, at))
	if err == nil {
		return t, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}
	t, err = r.GetReservation(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return t, false, nil
}
