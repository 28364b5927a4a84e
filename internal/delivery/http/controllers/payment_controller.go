package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"
)

// AttachProofRequest is the request body for POST /registrations/{registrationID}/proof.
type AttachProofRequest struct {
	ProofRef string `json:"proof_ref"`
}

func (c AttachProofRequest) Validate() []string {
	if strings.TrimSpace(c.ProofRef) == "" {
		return []string{"proof_ref is required"}
	}
	return nil
}

// PaymentDecisionRequest is the optional body of approve and reject.
type PaymentDecisionRequest struct {
	Notes string `json:"notes"`
}

type PaymentController struct {
	Logger  *slog.Logger
	Service domain.PaymentService
}

func NewPaymentController(logger *slog.Logger, svc domain.PaymentService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// AttachProof godoc
// @Summary Attach a payment proof
// @Description Participant only; the registration must be pending. proof_ref is an opaque reference into the blob store.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Param body body AttachProofRequest true "Proof reference"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Router /registrations/{registrationID}/proof [post]
func (c *PaymentController) AttachProof(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "registrationID")
	if !ok {
		return
	}
	var req AttachProofRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.AttachProof(r.Context(), id, userID, strings.TrimSpace(req.ProofRef))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// decodeDecision reads an optional decision body; an empty body means no notes.
func decodeDecision(w http.ResponseWriter, r *http.Request) (PaymentDecisionRequest, bool) {
	var req PaymentDecisionRequest
	if r.ContentLength == 0 {
		return req, true
	}
	return req, helpers.DecodeAndValidate(w, r, &req)
}

// Approve godoc
// @Summary Approve a payment
// @Description Organizer only. Confirms the registration and issues its ticket. Approving an already approved registration returns it unchanged.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Param body body PaymentDecisionRequest false "Notes"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 422 {object} helpers.APIResponse "error.code: proof_missing"
// @Router /registrations/{registrationID}/approve [post]
func (c *PaymentController) Approve(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Approve)
}

// Reject godoc
// @Summary Reject a payment
// @Description Organizer only. Rejects the registration and returns its unit to inventory. Rejecting an already rejected registration returns it unchanged.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Param body body PaymentDecisionRequest false "Notes"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Router /registrations/{registrationID}/reject [post]
func (c *PaymentController) Reject(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Reject)
}

func (c *PaymentController) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, registrationID, actorID, notes string) (*domain.Registration, error)) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "registrationID")
	if !ok {
		return
	}
	req, ok := decodeDecision(w, r)
	if !ok {
		return
	}
	reg, err := fn(r.Context(), id, userID, strings.TrimSpace(req.Notes))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
