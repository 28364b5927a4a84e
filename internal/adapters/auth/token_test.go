package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)

	token, err := issuer.Issue(domain.Caller{UserID: "user-123", Attributes: map[string]string{"department": "CSE"}}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, map[string]string{"department": "CSE"}, claims.Attributes)

	_, err = issuer.Issue(domain.Caller{}, time.Hour)
	assert.Error(t, err)
}

func TestJWTVerifier_Verify(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	valid, err := issuer.Issue(domain.Caller{UserID: "user-123"}, time.Hour)
	require.NoError(t, err)
	withAttrs, err := issuer.Issue(domain.Caller{UserID: "user-123", Attributes: map[string]string{"faculty": "engineering"}}, time.Hour)
	require.NoError(t, err)
	expired, err := issuer.Issue(domain.Caller{UserID: "user-123"}, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWTIssuer("other-secret").Issue(domain.Caller{UserID: "user-123", Attributes: map[string]string{"faculty": "engineering"}}, time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-123"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Attributes:       map[string]string{"faculty": "engineering"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		want    domain.Caller
		wantErr bool
	}{
		{name: "valid", token: valid, want: domain.Caller{UserID: "user-123"}},
		{name: "attributes claim", token: withAttrs, want: domain.Caller{UserID: "user-123", Attributes: map[string]string{"faculty": "engineering"}}},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong secret", token: foreign, wantErr: true},
		{name: "unsigned attributes", token: unsigned, wantErr: true},
		{name: "missing expiry", token: noExpiry, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	verifier := NewJWTVerifier("test-secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.Verify(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
