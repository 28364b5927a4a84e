package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

type fakeMailer struct {
	to, subject string
	err         error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, _, _ string) error {
	m.to, m.subject = to, subject
	return m.err
}

type fakeRenderer struct {
	name string
	err  error
}

func (r *fakeRenderer) Render(name string, _ any) (string, string, string, error) {
	r.name = name
	return "subject " + name, "<p>html</p>", "text", r.err
}

func TestSendRegistrationNotice(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, discardLogger())

	err := svc.SendRegistrationNotice(context.Background(), domain.Notification{
		Type:           domain.NotifyRegistrationConfirmed,
		RegistrationID: "r1",
		Email:          "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "registration_confirmed", renderer.name)
	assert.Equal(t, "alice@example.com", mailer.to)
	assert.Equal(t, "subject registration_confirmed", mailer.subject)
}

func TestSendRegistrationNotice_Errors(t *testing.T) {
	ctx := context.Background()
	n := domain.Notification{Type: domain.NotifyPaymentRejected, Email: "a@example.com"}

	err := NewEmailService(&fakeMailer{}, &fakeRenderer{}, discardLogger()).
		SendRegistrationNotice(ctx, domain.Notification{Type: domain.NotifyPaymentRejected})
	assert.Error(t, err, "no recipient")

	err = NewEmailService(&fakeMailer{}, &fakeRenderer{err: errors.New("missing template")}, discardLogger()).
		SendRegistrationNotice(ctx, n)
	assert.ErrorContains(t, err, "render")

	err = NewEmailService(&fakeMailer{err: errors.New("throttled")}, &fakeRenderer{}, discardLogger()).
		SendRegistrationNotice(ctx, n)
	assert.ErrorContains(t, err, "send")
}
