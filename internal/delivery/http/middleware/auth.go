package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"
)

type callerKey struct{}

// SetCaller returns a context carrying the authenticated caller.
func SetCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// SetUserID returns a context carrying a caller with no attributes.
func SetUserID(ctx context.Context, userID string) context.Context {
	return SetCaller(ctx, domain.Caller{UserID: userID})
}

// CallerFromContext returns the caller set by RequireAuth.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok && c.UserID != ""
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	c, ok := CallerFromContext(ctx)
	return c.UserID, ok
}

// AttributesFromContext returns the token-verified participant attributes.
// Eligibility checks must read attributes from here, never from a request body.
func AttributesFromContext(ctx context.Context) map[string]string {
	c, _ := CallerFromContext(ctx)
	return c.Attributes
}

// RequireAuth validates the Bearer token and stores the verified caller in
// the request context. A missing or rejected token gets a 401 and next is
// not called.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				unauthorized(w, problem)
				return
			}
			caller, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				unauthorized(w, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetCaller(r.Context(), caller)))
		}
	}
}

func bearerToken(r *http.Request) (token, problem string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="eventreg"`)
	h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, message)
}
