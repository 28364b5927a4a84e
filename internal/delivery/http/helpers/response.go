package helpers

import (
	"encoding/json"
	"net/http"
)

// Envelope codes for failures that do not come from a domain.ErrorKind.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error half of the envelope. Details lists individual
// problems when a request fails more than one check.
// swagger:model APIError
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// APIResponse wraps every JSON body. Exactly one of Data and Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess writes data under the envelope's data key.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError writes an error envelope with optional per-problem details.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string, details ...string) {
	writeEnvelope(w, statusCode, APIResponse{
		Error: &APIError{Code: code, Message: message, Details: details},
	})
}

// writeEnvelope marks every JSON response no-store.
func writeEnvelope(w http.ResponseWriter, statusCode int, body APIResponse) {
	header := w.Header()
	header.Set("Content-Type", "application/json")
	header.Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
