package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventreg/internal/domain"
)

const (
	oneActiveConstraint = "registrations_one_active_idx"
	ticketIDConstraint  = "registrations_ticket_id_key"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

const registrationColumns = `id, event_id, participant_id, status, answers, variant, team_name, team_members,
	contact_email, payment_status, proof_ref, payment_notes, payment_actor_id, payment_decided_at,
	reservation_id, ticket_id, qr_payload, attended, attended_at, scan_method, scanned_by,
	cancel_reason, created_at, updated_at`

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	answers, err := json.Marshal(reg.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	if reg.Answers == nil {
		answers = []byte("{}")
	}
	var variant []byte
	if reg.Variant != nil {
		if variant, err = json.Marshal(reg.Variant); err != nil {
			return fmt.Errorf("marshal variant: %w", err)
		}
	}
	members := reg.TeamMembers
	if members == nil {
		members = []string{}
	}
	query := `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`
	_, err = conn(ctx, r.DB).ExecContext(ctx, query,
		reg.ID, reg.EventID, reg.ParticipantID, string(reg.Status), answers, variant,
		nullString(reg.TeamName), pq.Array(members), nullString(reg.ContactEmail),
		string(reg.Payment.Status), nullString(reg.Payment.ProofRef), nullString(reg.Payment.Notes),
		nullString(reg.Payment.ActorID), nullTime(reg.Payment.DecidedAt),
		nullString(reg.ReservationID), nullString(reg.TicketID), nullString(reg.QRPayload),
		reg.Attended, nullTime(reg.AttendedAt), nullString(string(reg.ScanMethod)), nullString(reg.ScannedBy),
		nullString(reg.CancelReason), reg.CreatedAt, reg.UpdatedAt,
	)
	switch {
	case isUniqueViolation(err, oneActiveConstraint):
		return domain.ErrDuplicateActive
	case isUniqueViolation(err, ticketIDConstraint):
		return domain.ErrTicketIDCollision
	}
	return err
}

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var (
		status, paymentStatus                     string
		answers, variant                          []byte
		teamName, email, proofRef, notes, actorID sql.NullString
		reservationID, ticketID, qrPayload        sql.NullString
		scanMethod, scannedBy, cancelReason       sql.NullString
		decidedAt, attendedAt                     sql.NullTime
	)
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.ParticipantID, &status, &answers, &variant, &teamName,
		pq.Array(&reg.TeamMembers), &email, &paymentStatus, &proofRef, &notes, &actorID, &decidedAt,
		&reservationID, &ticketID, &qrPayload, &reg.Attended, &attendedAt, &scanMethod, &scannedBy,
		&cancelReason, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationStatus(status)
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &reg.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(variant) > 0 {
		reg.Variant = &domain.VariantSelection{}
		if err := json.Unmarshal(variant, reg.Variant); err != nil {
			return nil, fmt.Errorf("decode variant: %w", err)
		}
	}
	reg.TeamName = teamName.String
	reg.ContactEmail = email.String
	reg.Payment = domain.PaymentApproval{
		Status:    domain.PaymentStatus(paymentStatus),
		ProofRef:  proofRef.String,
		Notes:     notes.String,
		ActorID:   actorID.String,
		DecidedAt: timePtr(decidedAt),
	}
	reg.ReservationID = reservationID.String
	reg.TicketID = ticketID.String
	reg.QRPayload = qrPayload.String
	reg.AttendedAt = timePtr(attendedAt)
	reg.ScanMethod = domain.ScanMethod(scanMethod.String)
	reg.ScannedBy = scannedBy.String
	reg.CancelReason = cancelReason.String
	return reg, nil
}

func (r *registrationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Registration, error) {
	reg, err := scanRegistration(conn(ctx, r.DB).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return r.getOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *registrationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registration, error) {
	return r.getOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1 FOR UPDATE`, id)
}

func (r *registrationRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Registration, error) {
	return r.getOne(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE ticket_id = $1`, ticketID)
}

func (r *registrationRepository) GetActive(ctx context.Context, eventID, participantID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND participant_id = $2 AND status IN ('pending', 'confirmed')`
	return r.getOne(ctx, query, eventID, participantID)
}

func (r *registrationRepository) ListByEventAndParticipant(ctx context.Context, eventID, participantID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND participant_id = $2
		ORDER BY created_at, id`
	return r.list(ctx, query, eventID, participantID)
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string, filter domain.RegistrationFilter, p domain.PaginationParams) ([]*domain.Registration, int, error) {
	var status sql.NullString
	if filter.Status != nil {
		status = sql.NullString{String: string(*filter.Status), Valid: true}
	}
	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND ($2::text IS NULL OR status = $2)`,
		eventID, status,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`
	regs, err := r.list(ctx, query, eventID, status, limitArg(p), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// exec runs a single-row update and reports whether a row changed.
func (r *registrationRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *registrationRepository) exists(ctx context.Context, id string) error {
	var found int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT 1 FROM registrations WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *registrationRepository) UpdateState(ctx context.Context, reg *domain.Registration) error {
	query := `
		UPDATE registrations
		SET status = $2, payment_status = $3, proof_ref = $4, payment_notes = $5, payment_actor_id = $6,
			payment_decided_at = $7, cancel_reason = $8, updated_at = $9
		WHERE id = $1
	`
	changed, err := r.exec(ctx, query,
		reg.ID, string(reg.Status), string(reg.Payment.Status), nullString(reg.Payment.ProofRef),
		nullString(reg.Payment.Notes), nullString(reg.Payment.ActorID), nullTime(reg.Payment.DecidedAt),
		nullString(reg.CancelReason), reg.UpdatedAt,
	)
	if isUniqueViolation(err, oneActiveConstraint) {
		return domain.ErrDuplicateActive
	}
	if err != nil {
		return err
	}
	if !changed {
		return domain.ErrNotFound
	}
	return nil
}

// AssignTicket sets the ticket of a registration that has none. It never
// raises a unique violation, because that would abort the enclosing
// transaction; a taken id is detected up front and reported as
// ErrTicketIDCollision so the caller can retry with a fresh one.
func (r *registrationRepository) AssignTicket(ctx context.Context, id, ticketID, qrPayload string) (bool, error) {
	query := `
		UPDATE registrations
		SET ticket_id = $2, qr_payload = $3, updated_at = $4
		WHERE id = $1 AND ticket_id IS NULL
			AND NOT EXISTS (SELECT 1 FROM registrations WHERE ticket_id = $2)
	`
	changed, err := r.exec(ctx, query, id, ticketID, qrPayload, time.Now().UTC())
	if isUniqueViolation(err, ticketIDConstraint) {
		return false, domain.ErrTicketIDCollision
	}
	if err != nil || changed {
		return changed, err
	}
	var current sql.NullString
	err = conn(ctx, r.DB).QueryRowContext(ctx, `SELECT ticket_id FROM registrations WHERE id = $1`, id).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, domain.ErrNotFound
	case err != nil:
		return false, err
	case current.Valid:
		return false, nil
	}
	return false, domain.ErrTicketIDCollision
}

// SetAttendance writes only when the confirmed registration's attended flag
// actually changes.
func (r *registrationRepository) SetAttendance(ctx context.Context, id string, u domain.AttendanceUpdate) (bool, error) {
	query := `
		UPDATE registrations
		SET attended = $2, attended_at = $3, scan_method = $4, scanned_by = $5, updated_at = $6
		WHERE id = $1 AND status = 'confirmed' AND attended <> $2
	`
	changed, err := r.exec(ctx, query,
		id, u.Attended, nullTime(u.AttendedAt), nullString(string(u.Method)), nullString(u.ScannedBy), time.Now().UTC(),
	)
	if err != nil || changed {
		return changed, err
	}
	return false, r.exists(ctx, id)
}
