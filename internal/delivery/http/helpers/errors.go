package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventreg/internal/domain"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindReasonRequired:     http.StatusBadRequest,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindNotEligible:        http.StatusForbidden,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindTicketNotFound:     http.StatusNotFound,
	domain.KindOutOfStock:         http.StatusConflict,
	domain.KindCapacityReached:    http.StatusConflict,
	domain.KindRegistrationClosed: http.StatusConflict,
	domain.KindDeadlinePassed:     http.StatusConflict,
	domain.KindDuplicateActive:    http.StatusConflict,
	domain.KindFormLocked:         http.StatusConflict,
	domain.KindNotConfirmed:       http.StatusConflict,
	domain.KindInvalidTransition:  http.StatusConflict,
	domain.KindProofMissing:       http.StatusUnprocessableEntity,
}

// StatusForKind returns the HTTP status used for a domain error kind.
func StatusForKind(kind domain.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteDomainError writes err as {code: kind, message}. Errors that carry no
// domain kind are logged and reported as internal errors without their text.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		WriteJSONError(w, StatusForKind(de.Kind), string(de.Kind), de.Message)
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}
