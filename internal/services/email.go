package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventreg/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationNotice renders the template named after the notification
// type and sends it to the participant's contact address.
func (s *emailService) SendRegistrationNotice(ctx context.Context, n domain.Notification) error {
	if n.Email == "" {
		return fmt.Errorf("notification %s for %s has no recipient", n.Type, n.RegistrationID)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(string(n.Type), n)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", n.Type, err)
	}
	if err := s.mailer.Send(ctx, n.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", n.Type, err)
	}
	s.logger.InfoContext(ctx, "registration email sent", "type", n.Type, "registration_id", n.RegistrationID)
	return nil
}
