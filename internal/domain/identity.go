package domain

import "time"

// Caller is the identity carried by a verified bearer token. Attributes are
// the participant facts (department, faculty, year) that attribute
// eligibility rules are checked against; only the token issuer sets them.
type Caller struct {
	UserID     string
	Attributes map[string]string
}

// TokenIssuer issues bearer tokens for a caller identity.
type TokenIssuer interface {
	Issue(caller Caller, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller it was issued for.
type TokenVerifier interface {
	Verify(token string) (Caller, error)
}
