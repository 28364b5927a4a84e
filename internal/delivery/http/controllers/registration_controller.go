package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"
)

// RegisterRequest is the request body for POST /events/{eventID}/registrations.
type RegisterRequest struct {
	Answers      map[string]any           `json:"custom_form_answers"`
	Variant      *domain.VariantSelection `json:"variant_selection,omitempty"`
	TeamName     string                   `json:"team_name,omitempty"`
	TeamMembers  []string                 `json:"team_members,omitempty"`
	ContactEmail string                   `json:"contact_email,omitempty"`
}

func (c RegisterRequest) Validate() []string {
	if c.Variant != nil && c.Variant.Quantity < 0 {
		return []string{"variant_selection.quantity must not be negative"}
	}
	return nil
}

// RegistrationSuccessResponse is the success envelope of endpoints returning a registration.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RegistrationListSuccessResponse is the success envelope of GET /events/{eventID}/registrations.
type RegistrationListSuccessResponse struct {
	Data  PaginatedResponse[*domain.Registration] `json:"data"`
	Error *helpers.APIError                       `json:"error"`
}

type RegistrationController struct {
	Logger        *slog.Logger
	Admission     domain.AdmissionService
	Registrations domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, admission domain.AdmissionService, registrations domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:        logger,
		Admission:     admission,
		Registrations: registrations,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Reserves inventory and creates the caller's registration. Attribute eligibility is checked against the attrs claim of the bearer token. Free events are confirmed with a ticket immediately; paid events stay pending until the organizer approves the payment proof.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param registration body RegisterRequest true "Form answers and selections"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: not_eligible"
// @Failure 409 {object} helpers.APIResponse "error.code: out_of_stock | capacity_reached | registration_closed | deadline_passed | duplicate_active_registration"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := authenticatedCaller(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Admission.Register(r.Context(), domain.RegisterInput{
		EventID:       eventID,
		ParticipantID: caller.UserID,
		Attributes:    caller.Attributes,
		Answers:       req.Answers,
		Variant:       req.Variant,
		TeamName:      req.TeamName,
		TeamMembers:   req.TeamMembers,
		ContactEmail:  req.ContactEmail,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ListByEvent godoc
// @Summary List an event's registrations
// @Description Organizer only. Optional status filter.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param status query string false "pending | confirmed | cancelled | rejected"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.RegistrationListSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var filter domain.RegistrationFilter
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		status := domain.RegistrationStatus(strings.ToLower(s))
		switch status {
		case domain.RegistrationPending, domain.RegistrationConfirmed, domain.RegistrationCancelled, domain.RegistrationRejected:
			filter.Status = &status
		default:
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown status filter")
			return
		}
	}
	page, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	regs, total, err := c.Registrations.ListByEvent(r.Context(), eventID, userID, filter, page)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PaginatedResponse[*domain.Registration]{
		Items:      regs,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}

// ListMine godoc
// @Summary List the caller's registrations for an event
// @Description Full history, including cancelled and rejected rows superseded by a newer registration.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Router /events/{eventID}/registrations/mine [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	regs, err := c.Registrations.ListMine(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// Get godoc
// @Summary Get a registration
// @Description Visible to its participant and the event organizer.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{registrationID} [get]
func (c *RegistrationController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "registrationID")
	if !ok {
		return
	}
	reg, err := c.Registrations.Get(r.Context(), id, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Participant only. Returns the unit to inventory unless the event has already started and the deployment keeps units on late cancellation.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Param reason query string false "Cancellation reason"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Router /registrations/{registrationID} [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "registrationID")
	if !ok {
		return
	}
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	reg, err := c.Registrations.Cancel(r.Context(), id, userID, reason)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
