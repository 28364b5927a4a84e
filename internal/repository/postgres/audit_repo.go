package postgres

import (
	"context"
	"database/sql"

	"eventreg/internal/domain"
)

type auditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) domain.AuditRepository {
	return &auditRepository{
		DB: db,
	}
}

func (r *auditRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	query := `
		INSERT INTO attendance_audit (id, event_id, registration_id, actor_id, action, method, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.ID, e.EventID, e.RegistrationID, e.ActorID, string(e.Action), string(e.Method), nullString(e.Reason), e.CreatedAt,
	)
	return err
}

func (r *auditRepository) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.AuditEntry, int, error) {
	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_audit WHERE event_id = $1`, eventID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, registration_id, actor_id, action, method, reason, created_at
		FROM attendance_audit
		WHERE event_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID, limitArg(p), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.AuditEntry
	for rows.Next() {
		e := &domain.AuditEntry{}
		var action, method string
		var reason sql.NullString
		if err := rows.Scan(&e.ID, &e.EventID, &e.RegistrationID, &e.ActorID, &action, &method, &reason, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Action = domain.AuditAction(action)
		e.Method = domain.ScanMethod(method)
		e.Reason = reason.String
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// limitArg maps an unbounded page to a NULL limit, which Postgres treats as LIMIT ALL.
func limitArg(p domain.PaginationParams) sql.NullInt64 {
	if l := p.Limit(); l > 0 {
		return sql.NullInt64{Int64: int64(l), Valid: true}
	}
	return sql.NullInt64{}
}
