package controllers

import (
	"net/http"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
)

// authenticatedCaller returns the verified caller or writes a 401 and returns false.
func authenticatedCaller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.Caller{}, false
	}
	return caller, true
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller, ok := authenticatedCaller(w, r)
	return caller.UserID, ok
}

// pathParam returns a required path value or writes a 400 and returns false.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	return v, true
}

// PaginatedResponse is the data of list endpoints.
type PaginatedResponse[T any] struct {
	Items      []T                    `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}
