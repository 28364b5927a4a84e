package services

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"eventreg/internal/domain"
	"eventreg/internal/metrics"
)

var ticketEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewTicketID returns a 26-character lowercase base32 encoding of a random
// UUIDv4.
func NewTicketID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(ticketEncoding.EncodeToString(u[:])), nil
}

type ticketService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	signer           domain.TicketSigner
	newID            domain.TicketIDGenerator
	maxAttempts      int
	logger           *slog.Logger
}

// NewTicketService creates a TicketService. newID may be nil to use
// NewTicketID; maxAttempts bounds retries on ticket id collisions.
func NewTicketService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	signer domain.TicketSigner,
	newID domain.TicketIDGenerator,
	maxAttempts int,
	logger *slog.Logger,
) domain.TicketService {
	if newID == nil {
		newID = NewTicketID
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ticketService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		signer:           signer,
		newID:            newID,
		maxAttempts:      maxAttempts,
		logger:           logger,
	}
}

func ticketOf(reg *domain.Registration) *domain.Ticket {
	return &domain.Ticket{
		TicketID:       reg.TicketID,
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		QRPayload:      reg.QRPayload,
	}
}

func (s *ticketService) IssueTicket(ctx context.Context, reg *domain.Registration) (*domain.Ticket, error) {
	if reg.HasTicket() {
		return ticketOf(reg), nil
	}
	if reg.Status != domain.RegistrationConfirmed {
		return nil, domain.ErrNotConfirmed
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		ticketID, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("generate ticket id: %w", err)
		}
		payload, err := s.signer.Sign(domain.TicketClaims{
			TicketID:       ticketID,
			RegistrationID: reg.ID,
			EventID:        reg.EventID,
		})
		if err != nil {
			return nil, fmt.Errorf("sign qr payload: %w", err)
		}

		assigned, err := s.registrationRepo.AssignTicket(ctx, reg.ID, ticketID, payload)
		if errors.Is(err, domain.ErrTicketIDCollision) {
			metrics.RecordTicketCollision()
			s.logger.WarnContext(ctx, "ticket id collision, retrying",
				"registration_id", reg.ID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("assign ticket: %w", err)
		}
		if !assigned {
			// Another call issued the ticket first.
			current, err := loadRegistration(ctx, s.registrationRepo.GetByID, reg.ID)
			if err != nil {
				return nil, err
			}
			reg.TicketID, reg.QRPayload = current.TicketID, current.QRPayload
			return ticketOf(reg), nil
		}

		reg.TicketID, reg.QRPayload = ticketID, payload
		metrics.RecordTicketIssued()
		s.logger.InfoContext(ctx, "ticket issued", "registration_id", reg.ID, "ticket_id", ticketID)
		return ticketOf(reg), nil
	}
	return nil, fmt.Errorf("issue ticket for %s: no unique id after %d attempts", reg.ID, s.maxAttempts)
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	reg, err := s.registrationRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get registration by ticket: %w", err)
	}
	if reg.ParticipantID != actorID {
		if _, err := loadOrganizedEvent(ctx, s.eventRepo, reg.EventID, actorID); err != nil {
			return nil, err
		}
	}
	return ticketOf(reg), nil
}
