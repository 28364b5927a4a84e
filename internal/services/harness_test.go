package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
	"eventreg/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeSigner encodes claims as a readable colon-separated string.
type fakeSigner struct{}

func (fakeSigner) Sign(c domain.TicketClaims) (string, error) {
	return strings.Join([]string{"qr", c.TicketID, c.RegistrationID, c.EventID}, ":"), nil
}

func (fakeSigner) Parse(payload string) (domain.TicketClaims, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 4 || parts[0] != "qr" {
		return domain.TicketClaims{}, errors.New("malformed payload")
	}
	return domain.TicketClaims{TicketID: parts[1], RegistrationID: parts[2], EventID: parts[3]}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) types() []domain.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationType, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.Type
	}
	return out
}

const organizer = "org-1"

type harness struct {
	store         *memory.Store
	events        domain.EventRepository
	regs          domain.RegistrationRepository
	inventory     domain.InventoryRepository
	audit         domain.AuditRepository
	ledger        domain.InventoryLedger
	forms         domain.FormService
	tickets       domain.TicketService
	eventSvc      domain.EventService
	admission     domain.AdmissionService
	payments      domain.PaymentService
	registrations domain.RegistrationService
	attendance    domain.AttendanceService
	notifier      *recordingNotifier
}

type harnessConfig struct {
	ledgerOpts LedgerOptions
	newID      domain.TicketIDGenerator
	wrapRegs   func(domain.RegistrationRepository) domain.RegistrationRepository
}

type harnessOption func(*harnessConfig)

func withReleaseOnCancelAfterStart() harnessOption {
	return func(c *harnessConfig) { c.ledgerOpts.ReleaseOnCancelAfterStart = true }
}

func withTicketIDs(gen domain.TicketIDGenerator) harnessOption {
	return func(c *harnessConfig) { c.newID = gen }
}

func withRegistrationRepo(wrap func(domain.RegistrationRepository) domain.RegistrationRepository) harnessOption {
	return func(c *harnessConfig) { c.wrapRegs = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	var cfg harnessConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := discardLogger()
	timeout := 5 * time.Second
	store := memory.NewStore()
	h := &harness{
		store:     store,
		events:    memory.NewEventRepository(store),
		regs:      memory.NewRegistrationRepository(store),
		inventory: memory.NewInventoryRepository(store),
		audit:     memory.NewAuditRepository(store),
		notifier:  &recordingNotifier{},
	}
	if cfg.wrapRegs != nil {
		h.regs = cfg.wrapRegs(h.regs)
	}
	h.ledger = NewInventoryLedger(h.inventory, h.events, store, cfg.ledgerOpts, logger)
	h.forms = NewFormService(h.events, store, logger, timeout)
	h.tickets = NewTicketService(h.regs, h.events, fakeSigner{}, cfg.newID, 5, logger)
	h.eventSvc = NewEventService(h.events, h.inventory, h.ledger, store, logger, timeout)
	h.admission = NewAdmissionService(h.events, h.regs, h.ledger, h.forms, h.tickets, store, h.notifier, logger, timeout)
	h.payments = NewPaymentService(h.events, h.regs, h.ledger, h.tickets, store, h.notifier, logger, timeout)
	h.registrations = NewRegistrationService(h.events, h.regs, h.ledger, store, h.notifier, logger, timeout)
	h.attendance = NewAttendanceService(h.events, h.regs, h.audit, fakeSigner{}, store, logger, timeout)
	return h
}

func intPtr(v int) *int { return &v }

// seatsEvent returns the input of a published-ready free event with the given capacity.
func seatsEvent(capacity int) domain.CreateEventInput {
	return domain.CreateEventInput{
		OrganizerID:   organizer,
		Name:          "Campus Hackathon",
		Kind:          domain.EventKindSeats,
		CapacityLimit: intPtr(capacity),
	}
}

// publish creates the event and moves it to Published.
func (h *harness) publish(t *testing.T, in domain.CreateEventInput) *domain.Event {
	t.Helper()
	ctx := context.Background()
	event, err := h.eventSvc.CreateEvent(ctx, in)
	require.NoError(t, err)
	event, err = h.eventSvc.TransitionEvent(ctx, event.ID, organizer, domain.EventStatusPublished)
	require.NoError(t, err)
	return event
}

func (h *harness) register(t *testing.T, eventID, participantID string) *domain.Registration {
	t.Helper()
	reg, err := h.admission.Register(context.Background(), domain.RegisterInput{
		EventID:       eventID,
		ParticipantID: participantID,
		ContactEmail:  participantID + "@example.com",
	})
	require.NoError(t, err)
	return reg
}

// remaining returns the remaining count of key, or -1 when it is unlimited.
func (h *harness) remaining(t *testing.T, eventID, key string) int {
	t.Helper()
	counters, err := h.ledger.Snapshot(context.Background(), eventID)
	require.NoError(t, err)
	for _, c := range counters {
		if c.Key == key {
			if c.Remaining == nil {
				return -1
			}
			return *c.Remaining
		}
	}
	t.Fatalf("counter %s not found", key)
	return 0
}

func (h *harness) activeCount(t *testing.T, eventID, participantID string) int {
	t.Helper()
	regs, err := h.regs.ListByEventAndParticipant(context.Background(), eventID, participantID)
	require.NoError(t, err)
	n := 0
	for _, r := range regs {
		if r.Status.IsActive() {
			n++
		}
	}
	return n
}
