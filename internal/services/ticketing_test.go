package services

import (
	"context"
	"encoding/base32"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func TestNewTicketID_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id, err := NewTicketID()
		require.NoError(t, err)
		require.Len(t, id, 26)
		assert.Equal(t, strings.ToLower(id), id)

		decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(id))
		require.NoError(t, err)
		require.Len(t, decoded, 16)
		assert.Equal(t, byte(4), decoded[6]>>4, "uuid version")

		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

// scriptedIDs returns the given ids in order, then unique fallbacks.
func scriptedIDs(ids ...string) domain.TicketIDGenerator {
	i := 0
	return func() (string, error) {
		if i < len(ids) {
			i++
			return ids[i-1], nil
		}
		i++
		return fmt.Sprintf("generated-%d", i), nil
	}
}

func TestIssueTicket_RetriesOnCollision(t *testing.T) {
	h := newHarness(t, withTicketIDs(scriptedIDs("taken", "taken", "fresh")))
	event := h.publish(t, seatsEvent(5))

	first := h.register(t, event.ID, "alice")
	require.Equal(t, "taken", first.TicketID)

	second := h.register(t, event.ID, "bob")
	assert.Equal(t, "fresh", second.TicketID)
}

func TestIssueTicket_GivesUpAfterMaxAttempts(t *testing.T) {
	h := newHarness(t, withTicketIDs(func() (string, error) { return "same", nil }))
	event := h.publish(t, seatsEvent(5))
	h.register(t, event.ID, "alice")

	_, err := h.admission.Register(context.Background(), domain.RegisterInput{EventID: event.ID, ParticipantID: "bob"})
	require.Error(t, err)
	assert.Equal(t, 4, h.remaining(t, event.ID, domain.SeatsKey), "failed issuance rolls back the admission")
	assert.Equal(t, 0, h.activeCount(t, event.ID, "bob"))
}

func TestIssueTicket_Idempotent(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(5))
	reg := h.register(t, event.ID, "alice")
	ctx := context.Background()

	again, err := h.tickets.IssueTicket(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, reg.TicketID, again.TicketID)

	// A stale copy without the ticket must still resolve to the stored one.
	stale := *reg
	stale.TicketID, stale.QRPayload = "", ""
	resolved, err := h.tickets.IssueTicket(ctx, &stale)
	require.NoError(t, err)
	assert.Equal(t, reg.TicketID, resolved.TicketID)
	assert.Equal(t, reg.QRPayload, resolved.QRPayload)
}

func TestIssueTicket_RequiresConfirmed(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, paidEvent(5))
	reg := h.register(t, event.ID, "alice")

	_, err := h.tickets.IssueTicket(context.Background(), reg)
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
}

func TestGetTicket(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(5))
	reg := h.register(t, event.ID, "alice")
	ctx := context.Background()

	ticket, err := h.tickets.GetTicket(ctx, reg.TicketID, "alice")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, ticket.RegistrationID)
	assert.Equal(t, reg.QRPayload, ticket.QRPayload)

	_, err = h.tickets.GetTicket(ctx, reg.TicketID, organizer)
	require.NoError(t, err)

	_, err = h.tickets.GetTicket(ctx, reg.TicketID, "mallory")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.tickets.GetTicket(ctx, "nope", "alice")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestTicketIDsUniqueAcrossRegistrations(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(30))
	seen := make(map[string]struct{})
	for i := range 30 {
		reg := h.register(t, event.ID, fmt.Sprintf("p%d", i))
		_, dup := seen[reg.TicketID]
		require.False(t, dup)
		seen[reg.TicketID] = struct{}{}
	}
}
