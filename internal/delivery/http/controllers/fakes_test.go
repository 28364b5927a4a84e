package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// newRequest builds a request authenticated as userID (empty for anonymous)
// with the given path values set.
func newRequest(method, target, body, userID string, pathValues map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	if userID != "" {
		r = r.WithContext(middleware.SetUserID(r.Context(), userID))
	}
	return r
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

type fakeEventService struct {
	createErr     error
	lastCreate    domain.CreateEventInput
	getResult     *domain.EventWithInventory
	getErr        error
	transitionErr error
	lastStatus    domain.EventStatus
	lastActor     string
	lastOpen      bool
}

func (f *fakeEventService) CreateEvent(_ context.Context, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastCreate = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Event{ID: "ev-1", OrganizerID: in.OrganizerID, Name: in.Name, Kind: in.Kind, Status: domain.EventStatusDraft}, nil
}

func (f *fakeEventService) GetEvent(_ context.Context, _ string) (*domain.EventWithInventory, error) {
	return f.getResult, f.getErr
}

func (f *fakeEventService) TransitionEvent(_ context.Context, eventID, actorID string, next domain.EventStatus) (*domain.Event, error) {
	f.lastStatus, f.lastActor = next, actorID
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	return &domain.Event{ID: eventID, Status: next}, nil
}

func (f *fakeEventService) SetRegistrationOpen(_ context.Context, eventID, actorID string, open bool) (*domain.Event, error) {
	f.lastActor, f.lastOpen = actorID, open
	return &domain.Event{ID: eventID, RegistrationOpen: open}, nil
}

type fakeFormService struct {
	err    error
	lastOp domain.FormOp
}

func (f *fakeFormService) MutateSchema(_ context.Context, eventID, _ string, op domain.FormOp) (*domain.Event, error) {
	f.lastOp = op
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: eventID}, nil
}

func (f *fakeFormService) ValidateAnswers(domain.FormSchema, map[string]any) error { return nil }

func (f *fakeFormService) LockOnFirstRegistration(context.Context, string) error { return nil }

type fakeAdmissionService struct {
	err    error
	lastIn domain.RegisterInput
}

func (f *fakeAdmissionService) Register(_ context.Context, in domain.RegisterInput) (*domain.Registration, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: "reg-1", EventID: in.EventID, ParticipantID: in.ParticipantID, Status: domain.RegistrationConfirmed, TicketID: "tkt-1"}, nil
}

type fakeRegistrationService struct {
	err        error
	list       []*domain.Registration
	total      int
	lastFilter domain.RegistrationFilter
	lastPage   domain.PaginationParams
	lastReason string
}

func (f *fakeRegistrationService) Get(_ context.Context, id, _ string) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: id}, nil
}

func (f *fakeRegistrationService) ListMine(context.Context, string, string) ([]*domain.Registration, error) {
	return f.list, f.err
}

func (f *fakeRegistrationService) ListByEvent(_ context.Context, _, _ string, filter domain.RegistrationFilter, page domain.PaginationParams) ([]*domain.Registration, int, error) {
	f.lastFilter, f.lastPage = filter, page
	return f.list, f.total, f.err
}

func (f *fakeRegistrationService) Cancel(_ context.Context, id, _ string, reason string) (*domain.Registration, error) {
	f.lastReason = reason
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: id, Status: domain.RegistrationCancelled, CancelReason: reason}, nil
}

type fakePaymentService struct {
	err       error
	lastCall  string
	lastNotes string
	lastProof string
}

func (f *fakePaymentService) result(call, id string) (*domain.Registration, error) {
	f.lastCall = call
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: id}, nil
}

func (f *fakePaymentService) AttachProof(_ context.Context, id, _, proofRef string) (*domain.Registration, error) {
	f.lastProof = proofRef
	return f.result("proof", id)
}

func (f *fakePaymentService) Approve(_ context.Context, id, _, notes string) (*domain.Registration, error) {
	f.lastNotes = notes
	return f.result("approve", id)
}

func (f *fakePaymentService) Reject(_ context.Context, id, _, notes string) (*domain.Registration, error) {
	f.lastNotes = notes
	return f.result("reject", id)
}

type fakeAttendanceService struct {
	err        error
	lastScan   domain.ScanInput
	lastMark   bool
	lastReason string
	entries    []*domain.AuditEntry
}

func (f *fakeAttendanceService) MarkAttendance(_ context.Context, in domain.ScanInput) (*domain.AttendanceResult, error) {
	f.lastScan = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AttendanceResult{Registration: &domain.Registration{ID: "reg-1", Attended: true}, Changed: true}, nil
}

func (f *fakeAttendanceService) ManualAttendance(_ context.Context, id, _ string, mark bool, reason string) (*domain.AttendanceResult, error) {
	f.lastMark, f.lastReason = mark, reason
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AttendanceResult{Registration: &domain.Registration{ID: id, Attended: mark}, Changed: true}, nil
}

func (f *fakeAttendanceService) AuditLog(context.Context, string, string, domain.PaginationParams) ([]*domain.AuditEntry, int, error) {
	return f.entries, len(f.entries), f.err
}

type fakeTicketService struct {
	ticket *domain.Ticket
	err    error
}

func (f *fakeTicketService) IssueTicket(context.Context, *domain.Registration) (*domain.Ticket, error) {
	return f.ticket, f.err
}

func (f *fakeTicketService) GetTicket(context.Context, string, string) (*domain.Ticket, error) {
	return f.ticket, f.err
}
