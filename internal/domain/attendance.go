package domain

import (
	"context"
	"time"
)

// AuditAction is the attendance change an audit entry records.
type AuditAction string

const (
	AuditMarkPresent AuditAction = "mark_present"
	AuditUnmark      AuditAction = "unmark"
)

// AuditEntry is an immutable attendance ledger record.
// swagger:model AuditEntry
type AuditEntry struct {
	ID             string      `json:"id"`
	EventID        string      `json:"event_id"`
	RegistrationID string      `json:"registration_id"`
	ActorID        string      `json:"actor_id"`
	Action         AuditAction `json:"action"`
	Method         ScanMethod  `json:"method"`
	Reason         string      `json:"reason,omitempty"`
	CreatedAt      time.Time   `json:"timestamp"`
}

// AuditRepository is append-only: there is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	ListByEvent(ctx context.Context, eventID string, page PaginationParams) ([]*AuditEntry, int, error)
}

// AttendanceResult is the outcome of an attendance call. Entry is nil when
// the call did not change state.
type AttendanceResult struct {
	Registration *Registration `json:"registration"`
	Entry        *AuditEntry   `json:"audit_entry"`
	Changed      bool          `json:"changed"`
}

// ScanInput identifies a ticket by raw ticket id or by signed QR payload.
type ScanInput struct {
	TicketID  string
	QRPayload string
	ActorID   string
	Method    ScanMethod
	Reason    string
}

// AttendanceService records attendance with a full audit trail.
type AttendanceService interface {
	MarkAttendance(ctx context.Context, in ScanInput) (*AttendanceResult, error)
	ManualAttendance(ctx context.Context, registrationID, actorID string, markAttended bool, reason string) (*AttendanceResult, error)
	AuditLog(ctx context.Context, eventID, actorID string, page PaginationParams) ([]*AuditEntry, int, error)
}
