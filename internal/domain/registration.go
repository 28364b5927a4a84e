package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration row.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
	RegistrationRejected  RegistrationStatus = "rejected"
)

// IsActive reports whether the status holds inventory and blocks a new
// registration by the same participant.
func (s RegistrationStatus) IsActive() bool {
	return s == RegistrationPending || s == RegistrationConfirmed
}

// PaymentStatus is the state of the organizer payment review.
type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentApproved    PaymentStatus = "approved"
	PaymentRejected    PaymentStatus = "rejected"
)

// PaymentApproval is the payment review attached to a registration.
type PaymentApproval struct {
	Status    PaymentStatus `json:"status"`
	ProofRef  string        `json:"proof_ref,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	ActorID   string        `json:"actor_id,omitempty"`
	DecidedAt *time.Time    `json:"decided_at,omitempty"`
}

// ScanMethod records how attendance was taken.
type ScanMethod string

const (
	ScanQR     ScanMethod = "qr_scan"
	ScanManual ScanMethod = "manual_override"
)

// VariantSelection is the size/color/quantity chosen for a stock event.
type VariantSelection struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// Registration is one participant's claim on an event. Rows are never
// deleted; cancellation and rejection are status transitions.
// swagger:model Registration
type Registration struct {
	ID            string             `json:"id"`
	EventID       string             `json:"event_id"`
	ParticipantID string             `json:"participant_id"`
	Status        RegistrationStatus `json:"status"`
	Answers       map[string]any     `json:"custom_form_answers"`
	Variant       *VariantSelection  `json:"variant_selection,omitempty"`
	TeamName      string             `json:"team_name,omitempty"`
	TeamMembers   []string           `json:"team_members,omitempty"`
	ContactEmail  string             `json:"contact_email,omitempty"`
	Payment       PaymentApproval    `json:"payment_approval"`
	ReservationID string             `json:"reservation_id"`
	TicketID      string             `json:"ticket_id,omitempty"`
	QRPayload     string             `json:"qr_payload,omitempty"`
	Attended      bool               `json:"attended"`
	AttendedAt    *time.Time         `json:"attended_at,omitempty"`
	ScanMethod    ScanMethod         `json:"scan_method,omitempty"`
	ScannedBy     string             `json:"scanned_by,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Quantity returns the number of inventory units the registration holds.
func (r *Registration) Quantity() int {
	if r.Variant != nil && r.Variant.Quantity > 0 {
		return r.Variant.Quantity
	}
	return 1
}

// HasTicket reports whether a ticket has been issued.
func (r *Registration) HasTicket() bool {
	return r.TicketID != ""
}

// AttendanceUpdate is the attendance state written to a registration.
type AttendanceUpdate struct {
	Attended   bool
	AttendedAt *time.Time
	Method     ScanMethod
	ScannedBy  string
}

// RegistrationFilter narrows organizer registration listings.
type RegistrationFilter struct {
	Status *RegistrationStatus
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Create inserts a row; ErrDuplicateActive when the participant already
	// holds an active registration for the event.
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	// GetByIDForUpdate reads a row and locks it for the current transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Registration, error)
	GetByTicketID(ctx context.Context, ticketID string) (*Registration, error)
	// GetActive returns the latest pending or confirmed row for the pair.
	GetActive(ctx context.Context, eventID, participantID string) (*Registration, error)
	ListByEventAndParticipant(ctx context.Context, eventID, participantID string) ([]*Registration, error)
	ListByEvent(ctx context.Context, eventID string, filter RegistrationFilter, page PaginationParams) ([]*Registration, int, error)
	// UpdateState persists status, payment review and cancel reason.
	UpdateState(ctx context.Context, reg *Registration) error
	// AssignTicket sets ticket id and QR payload only when no ticket exists.
	// It reports false when a ticket was already present and returns
	// ErrTicketIDCollision when ticketID is used by another row.
	AssignTicket(ctx context.Context, id, ticketID, qrPayload string) (bool, error)
	// SetAttendance writes the update only if it changes the attended flag of
	// a confirmed registration, reporting whether it did.
	SetAttendance(ctx context.Context, id string, update AttendanceUpdate) (bool, error)
}

// RegisterInput is the payload of a registration attempt.
type RegisterInput struct {
	EventID       string
	ParticipantID string
	Attributes    map[string]string
	Answers       map[string]any
	Variant       *VariantSelection
	TeamName      string
	TeamMembers   []string
	ContactEmail  string
}

// AdmissionService admits or rejects registration attempts.
type AdmissionService interface {
	Register(ctx context.Context, in RegisterInput) (*Registration, error)
}

// RegistrationService exposes participant and organizer reads plus cancellation.
type RegistrationService interface {
	Get(ctx context.Context, registrationID, actorID string) (*Registration, error)
	ListMine(ctx context.Context, eventID, participantID string) ([]*Registration, error)
	ListByEvent(ctx context.Context, eventID, actorID string, filter RegistrationFilter, page PaginationParams) ([]*Registration, int, error)
	Cancel(ctx context.Context, registrationID, participantID, reason string) (*Registration, error)
}

// PaymentService drives the payment approval state machine.
type PaymentService interface {
	AttachProof(ctx context.Context, registrationID, participantID, proofRef string) (*Registration, error)
	Approve(ctx context.Context, registrationID, actorID, notes string) (*Registration, error)
	Reject(ctx context.Context, registrationID, actorID, notes string) (*Registration, error)
}
