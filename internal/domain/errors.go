package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the machine-readable category of a domain failure. It is the
// "kind" half of the {kind, message} pair returned across the API boundary.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindOutOfStock         ErrorKind = "out_of_stock"
	KindCapacityReached    ErrorKind = "capacity_reached"
	KindRegistrationClosed ErrorKind = "registration_closed"
	KindDeadlinePassed     ErrorKind = "deadline_passed"
	KindNotEligible        ErrorKind = "not_eligible"
	KindDuplicateActive    ErrorKind = "duplicate_active_registration"
	KindFormLocked         ErrorKind = "form_locked"
	KindTicketNotFound     ErrorKind = "ticket_not_found"
	KindNotFound           ErrorKind = "not_found"
	KindNotConfirmed       ErrorKind = "not_confirmed"
	KindForbidden          ErrorKind = "forbidden"
	KindProofMissing       ErrorKind = "proof_missing"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindReasonRequired     ErrorKind = "reason_required"
	KindInternal           ErrorKind = "internal_error"
)

// Error is a domain failure with a kind and a caller-facing message.
// Two *Error values match under errors.Is when their kinds are equal.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewError returns an *Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation joins field problems into a single validation error.
func Validation(problems ...string) *Error {
	return &Error{Kind: KindValidation, Message: strings.Join(problems, "; ")}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Sentinel errors, one per kind. Compare with errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrOutOfStock         = &Error{Kind: KindOutOfStock, Message: "selected item is out of stock"}
	ErrCapacityReached    = &Error{Kind: KindCapacityReached, Message: "event has reached its capacity"}
	ErrRegistrationClosed = &Error{Kind: KindRegistrationClosed, Message: "registration is closed"}
	ErrDeadlinePassed     = &Error{Kind: KindDeadlinePassed, Message: "registration deadline has passed"}
	ErrNotEligible        = &Error{Kind: KindNotEligible, Message: "participant is not eligible for this event"}
	ErrDuplicateActive    = &Error{Kind: KindDuplicateActive, Message: "participant already holds an active registration for this event"}
	ErrFormLocked         = &Error{Kind: KindFormLocked, Message: "registration form is locked"}
	ErrTicketNotFound     = &Error{Kind: KindTicketNotFound, Message: "ticket not found"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrNotConfirmed       = &Error{Kind: KindNotConfirmed, Message: "registration is not confirmed"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrProofMissing       = &Error{Kind: KindProofMissing, Message: "payment proof has not been submitted"}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition, Message: "registration cannot make this transition"}
	ErrReasonRequired     = &Error{Kind: KindReasonRequired, Message: "a reason is required"}
)

// ErrTicketIDCollision is returned by storage when a generated ticket id is
// already taken by another registration. It never crosses the API boundary.
var ErrTicketIDCollision = errors.New("ticket id already in use")
