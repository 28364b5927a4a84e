package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
)

func TestRegistrationController_Register(t *testing.T) {
	params := map[string]string{"eventID": "ev-1"}

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "admitted",
			body:       `{"custom_form_answers":{"nim":"123","age":21},"variant_selection":{"size":"M","color":"Black"},"contact_email":"p@example.com"}`,
			wantStatus: http.StatusCreated,
		},
		{name: "sold out", body: `{}`, svcErr: domain.ErrOutOfStock, wantStatus: http.StatusConflict, wantCode: "out_of_stock"},
		{name: "capacity", body: `{}`, svcErr: domain.ErrCapacityReached, wantStatus: http.StatusConflict, wantCode: "capacity_reached"},
		{name: "closed", body: `{}`, svcErr: domain.ErrRegistrationClosed, wantStatus: http.StatusConflict, wantCode: "registration_closed"},
		{name: "duplicate", body: `{}`, svcErr: domain.ErrDuplicateActive, wantStatus: http.StatusConflict, wantCode: "duplicate_active_registration"},
		{name: "not eligible", body: `{}`, svcErr: domain.ErrNotEligible, wantStatus: http.StatusForbidden, wantCode: "not_eligible"},
		{name: "bad answers", body: `{}`, svcErr: domain.Validation(`field "nim" is required`), wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "malformed body", body: `{"custom_form_answers":`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admission := &fakeAdmissionService{err: tt.svcErr}
			c := NewRegistrationController(testLogger, admission, &fakeRegistrationService{})
			rr := httptest.NewRecorder()

			c.Register(rr, newRequest(http.MethodPost, "/events/ev-1/registrations", tt.body, "user-1", params))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rr, nil).Code)
				return
			}
			var reg domain.Registration
			require.Nil(t, decodeEnvelope(t, rr, &reg))
			assert.Equal(t, "tkt-1", reg.TicketID)
			assert.Equal(t, "user-1", admission.lastIn.ParticipantID)
			assert.Equal(t, "ev-1", admission.lastIn.EventID)
			assert.Equal(t, json.Number("21"), admission.lastIn.Answers["age"])
			assert.Equal(t, "M", admission.lastIn.Variant.Size)
		})
	}
}

func TestRegistrationController_Register_AttributesFromToken(t *testing.T) {
	params := map[string]string{"eventID": "ev-1"}
	verified := domain.Caller{UserID: "user-1", Attributes: map[string]string{"department": "MECH"}}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantAttrs  map[string]string
		wantMsg    string
	}{
		{name: "token attributes used", body: `{"custom_form_answers":{}}`, wantStatus: http.StatusCreated, wantAttrs: map[string]string{"department": "MECH"}},
		{name: "body attributes refused", body: `{"custom_form_answers":{},"attributes":{"department":"CSE"}}`, wantStatus: http.StatusBadRequest, wantMsg: `unknown field "attributes"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admission := &fakeAdmissionService{}
			c := NewRegistrationController(testLogger, admission, &fakeRegistrationService{})
			r := newRequest(http.MethodPost, "/events/ev-1/registrations", tt.body, "", params)
			r = r.WithContext(middleware.SetCaller(r.Context(), verified))
			rr := httptest.NewRecorder()

			c.Register(rr, r)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantMsg != "" {
				apiErr := decodeEnvelope(t, rr, nil)
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
				assert.Empty(t, admission.lastIn.ParticipantID, "service must not be called")
				return
			}
			assert.Equal(t, "user-1", admission.lastIn.ParticipantID)
			assert.Equal(t, tt.wantAttrs, admission.lastIn.Attributes)
		})
	}
}

func TestRegistrationController_ListByEvent_BadPage(t *testing.T) {
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, &fakeAdmissionService{}, svc)
	rr := httptest.NewRecorder()

	c.ListByEvent(rr, newRequest(http.MethodGet, "/events/ev-1/registrations?page=0", "", "org-1", map[string]string{"eventID": "ev-1"}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeEnvelope(t, rr, nil).Code)
	assert.Equal(t, domain.PaginationParams{}, svc.lastPage)
}

func TestRegistrationController_ListByEvent(t *testing.T) {
	params := map[string]string{"eventID": "ev-1"}
	svc := &fakeRegistrationService{list: []*domain.Registration{{ID: "reg-1"}}, total: 41}
	c := NewRegistrationController(testLogger, &fakeAdmissionService{}, svc)

	rr := httptest.NewRecorder()
	c.ListByEvent(rr, newRequest(http.MethodGet, "/events/ev-1/registrations?status=Pending&page=2&page_size=20", "", "org-1", params))

	require.Equal(t, http.StatusOK, rr.Code)
	var page PaginatedResponse[*domain.Registration]
	require.Nil(t, decodeEnvelope(t, rr, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	require.NotNil(t, svc.lastFilter.Status)
	assert.Equal(t, domain.RegistrationPending, *svc.lastFilter.Status)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 20}, svc.lastPage)

	rr = httptest.NewRecorder()
	c.ListByEvent(rr, newRequest(http.MethodGet, "/events/ev-1/registrations?status=maybe", "", "org-1", params))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	svc.err = domain.ErrForbidden
	rr = httptest.NewRecorder()
	c.ListByEvent(rr, newRequest(http.MethodGet, "/events/ev-1/registrations", "", "user-2", params))
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRegistrationController_ListMine_EmptyIsArray(t *testing.T) {
	c := NewRegistrationController(testLogger, &fakeAdmissionService{}, &fakeRegistrationService{})
	rr := httptest.NewRecorder()

	c.ListMine(rr, newRequest(http.MethodGet, "/events/ev-1/registrations/mine", "", "user-1", map[string]string{"eventID": "ev-1"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
}

func TestRegistrationController_Cancel(t *testing.T) {
	params := map[string]string{"registrationID": "reg-1"}
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, &fakeAdmissionService{}, svc)

	rr := httptest.NewRecorder()
	c.Cancel(rr, newRequest(http.MethodDelete, "/registrations/reg-1?reason=sick", "", "user-1", params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sick", svc.lastReason)

	svc.err = domain.ErrInvalidTransition
	rr = httptest.NewRecorder()
	c.Cancel(rr, newRequest(http.MethodDelete, "/registrations/reg-1", "", "user-1", params))
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	c.Cancel(rr, newRequest(http.MethodDelete, "/registrations/reg-1", "", "", params))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegistrationController_Get(t *testing.T) {
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, &fakeAdmissionService{}, svc)
	params := map[string]string{"registrationID": "reg-9"}

	rr := httptest.NewRecorder()
	c.Get(rr, newRequest(http.MethodGet, "/registrations/reg-9", "", "user-1", params))
	require.Equal(t, http.StatusOK, rr.Code)

	svc.err = domain.NewError(domain.KindNotFound, "registration not found")
	rr = httptest.NewRecorder()
	c.Get(rr, newRequest(http.MethodGet, "/registrations/reg-9", "", "user-1", params))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
