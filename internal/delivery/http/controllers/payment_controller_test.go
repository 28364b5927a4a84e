package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func TestPaymentController_AttachProof(t *testing.T) {
	params := map[string]string{"registrationID": "reg-1"}
	svc := &fakePaymentService{}
	c := NewPaymentController(testLogger, svc)

	rr := httptest.NewRecorder()
	c.AttachProof(rr, newRequest(http.MethodPost, "/registrations/reg-1/proof", `{"proof_ref":" https://blob/p.png "}`, "user-1", params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://blob/p.png", svc.lastProof)

	rr = httptest.NewRecorder()
	c.AttachProof(rr, newRequest(http.MethodPost, "/registrations/reg-1/proof", `{"proof_ref":""}`, "user-1", params))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPaymentController_Decisions(t *testing.T) {
	params := map[string]string{"registrationID": "reg-1"}

	tests := []struct {
		name       string
		approve    bool
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
		wantNotes  string
	}{
		{name: "approve with notes", approve: true, body: `{"notes":"transfer ok"}`, wantStatus: http.StatusOK, wantNotes: "transfer ok"},
		{name: "approve without body", approve: true, wantStatus: http.StatusOK},
		{name: "approve without proof", approve: true, svcErr: domain.ErrProofMissing, wantStatus: http.StatusUnprocessableEntity, wantCode: "proof_missing"},
		{name: "approve cancelled", approve: true, svcErr: domain.ErrInvalidTransition, wantStatus: http.StatusConflict, wantCode: "invalid_transition"},
		{name: "reject", body: `{"notes":"blurry"}`, wantStatus: http.StatusOK, wantNotes: "blurry"},
		{name: "reject by participant", svcErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePaymentService{err: tt.svcErr}
			c := NewPaymentController(testLogger, svc)
			rr := httptest.NewRecorder()
			req := newRequest(http.MethodPost, "/registrations/reg-1/decision", tt.body, "org-1", params)

			if tt.approve {
				c.Approve(rr, req)
			} else {
				c.Reject(rr, req)
			}

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rr, nil).Code)
				return
			}
			assert.Equal(t, tt.wantNotes, svc.lastNotes)
			if tt.approve {
				assert.Equal(t, "approve", svc.lastCall)
			} else {
				assert.Equal(t, "reject", svc.lastCall)
			}
		})
	}
}
