package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventreg/internal/domain"
)

const ticketAudience = "ticket"

type ticketClaims struct {
	jwt.RegisteredClaims
	RegistrationID string `json:"rid"`
	EventID        string `json:"eid"`
}

type ticketSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTicketSigner returns a TicketSigner producing HS256 QR tokens. Tokens do
// not expire; a ticket stays valid for as long as its registration does.
func NewTicketSigner(secret string) domain.TicketSigner {
	return &ticketSigner{secret: []byte(secret), now: time.Now}
}

func (s *ticketSigner) Sign(c domain.TicketClaims) (string, error) {
	claims := ticketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  c.TicketID,
			Audience: jwt.ClaimStrings{ticketAudience},
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
		RegistrationID: c.RegistrationID,
		EventID:        c.EventID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return token, nil
}

func (s *ticketSigner) Parse(payload string) (domain.TicketClaims, error) {
	claims := &ticketClaims{}
	_, err := jwt.ParseWithClaims(payload, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(ticketAudience))
	if err != nil {
		return domain.TicketClaims{}, fmt.Errorf("parse ticket: %w", err)
	}
	if claims.Subject == "" || claims.RegistrationID == "" {
		return domain.TicketClaims{}, errors.New("parse ticket: incomplete claims")
	}
	return domain.TicketClaims{
		TicketID:       claims.Subject,
		RegistrationID: claims.RegistrationID,
		EventID:        claims.EventID,
	}, nil
}
