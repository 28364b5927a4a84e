package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NotificationType names the registration change a participant is told about.
type NotificationType string

const (
	NotifyRegistrationReceived  NotificationType = "registration_received"
	NotifyRegistrationConfirmed NotificationType = "registration_confirmed"
	NotifyPaymentRejected       NotificationType = "payment_rejected"
	NotifyRegistrationCancelled NotificationType = "registration_cancelled"
)

// Notification is the fire-and-forget message emitted on registration changes.
type Notification struct {
	Type           NotificationType `json:"type"`
	RegistrationID string           `json:"registration_id"`
	EventID        string           `json:"event_id"`
	EventName      string           `json:"event_name"`
	ParticipantID  string           `json:"participant_id"`
	Email          string           `json:"email"`
	TicketID       string           `json:"ticket_id,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// Notifier hands notifications to an external delivery channel. Callers
// never fail a request because of a Notify error.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationNotice(ctx context.Context, n Notification) error
}
