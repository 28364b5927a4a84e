package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name                 string                 `json:"name"`
	Kind                 domain.EventKind       `json:"kind"`
	CapacityLimit        *int                   `json:"capacity_limit"`
	Variants             []domain.Variant       `json:"variants"`
	StartsAt             *time.Time             `json:"starts_at"`
	RegistrationDeadline *time.Time             `json:"registration_deadline"`
	RequiresPayment      bool                   `json:"requires_payment"`
	Eligibility          domain.EligibilityRule `json:"eligibility"`
	FormSchema           domain.FormSchema      `json:"form_schema"`
}

// Validate implements Validator. Deeper rules are enforced by the event service.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.Kind != domain.EventKindSeats && c.Kind != domain.EventKindStock {
		errs = append(errs, "kind must be seats or stock")
	}
	return errs
}

// RegistrationWindowRequest is the request body for PUT /events/{eventID}/registration-window.
type RegistrationWindowRequest struct {
	Open *bool `json:"open"`
}

func (c RegistrationWindowRequest) Validate() []string {
	if c.Open == nil {
		return []string{"open is required"}
	}
	return nil
}

// FormOpRequest is the request body for PUT /events/{eventID}/form.
type FormOpRequest struct {
	Type     domain.FormOpType  `json:"type"`
	Name     string             `json:"name,omitempty"`
	Field    *domain.FormField  `json:"field,omitempty"`
	Position int                `json:"position,omitempty"`
	Fields   []domain.FormField `json:"fields,omitempty"`
}

func (c FormOpRequest) Validate() []string {
	if c.Type == "" {
		return []string{"type is required"}
	}
	return nil
}

// EventSuccessResponse is the success envelope of endpoints returning an event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventWithInventorySuccessResponse is the success envelope of GET /events/{eventID}.
type EventWithInventorySuccessResponse struct {
	Data  *domain.EventWithInventory `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Forms   domain.FormService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, forms domain.FormService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Forms:   forms,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a draft event owned by the caller and seeds its inventory counters.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event definition"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), domain.CreateEventInput{
		OrganizerID:          userID,
		Name:                 req.Name,
		Kind:                 req.Kind,
		CapacityLimit:        req.CapacityLimit,
		Variants:             req.Variants,
		StartsAt:             req.StartsAt,
		RegistrationDeadline: req.RegistrationDeadline,
		RequiresPayment:      req.RequiresPayment,
		Eligibility:          req.Eligibility,
		FormSchema:           req.FormSchema,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with a snapshot of its remaining inventory per counter.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventWithInventorySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Transition returns a handler moving the event to next. Routed as
// POST /events/{eventID}/publish, /start, /complete and /close.
//
// @Summary Change event status
// @Description Organizer only. Publishing opens the event for registration.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Router /events/{eventID}/publish [post]
func (c *EventController) Transition(next domain.EventStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		eventID, ok := pathParam(w, r, "eventID")
		if !ok {
			return
		}
		event, err := c.Service.TransitionEvent(r.Context(), eventID, userID, next)
		if err != nil {
			helpers.WriteDomainError(w, r, c.Logger, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, event)
	}
}

// SetRegistrationWindow godoc
// @Summary Open or close registration
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body RegistrationWindowRequest true "Window state"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/{eventID}/registration-window [put]
func (c *EventController) SetRegistrationWindow(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req RegistrationWindowRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.SetRegistrationOpen(r.Context(), eventID, userID, *req.Open)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// MutateForm godoc
// @Summary Change the registration form
// @Description Applies one add, update, delete, move or replace operation. Rejected with form_locked once the first registration exists.
// @Tags forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param op body FormOpRequest true "Form operation"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 409 {object} helpers.APIResponse "error.code: form_locked"
// @Router /events/{eventID}/form [put]
func (c *EventController) MutateForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	var req FormOpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Forms.MutateSchema(r.Context(), eventID, userID, domain.FormOp{
		Type:     req.Type,
		Name:     req.Name,
		Field:    req.Field,
		Position: req.Position,
		Fields:   req.Fields,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
