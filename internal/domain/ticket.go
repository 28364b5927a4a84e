package domain

import "context"

// Ticket is the scannable credential of a confirmed registration.
// swagger:model Ticket
type Ticket struct {
	TicketID       string `json:"ticket_id"`
	RegistrationID string `json:"registration_id"`
	EventID        string `json:"event_id"`
	QRPayload      string `json:"qr_payload"`
}

// TicketClaims is the content signed into a QR payload.
type TicketClaims struct {
	TicketID       string
	RegistrationID string
	EventID        string
}

// TicketSigner encodes and decodes QR payloads.
type TicketSigner interface {
	Sign(claims TicketClaims) (string, error)
	Parse(payload string) (TicketClaims, error)
}

// TicketIDGenerator returns a fresh random ticket identifier.
type TicketIDGenerator func() (string, error)

// TicketService issues and resolves tickets.
type TicketService interface {
	// IssueTicket assigns a ticket to a confirmed registration. Calling it
	// again returns the existing ticket unchanged.
	IssueTicket(ctx context.Context, reg *Registration) (*Ticket, error)
	GetTicket(ctx context.Context, ticketID, actorID string) (*Ticket, error)
}
