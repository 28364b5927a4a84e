package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"
)

// ScanRequest is the request body for POST /attendance/scan. Either ticket_id
// or qr_payload identifies the ticket.
type ScanRequest struct {
	TicketID  string            `json:"ticket_id,omitempty"`
	QRPayload string            `json:"qr_payload,omitempty"`
	Method    domain.ScanMethod `json:"method,omitempty"`
	Reason    string            `json:"reason,omitempty"`
}

func (c ScanRequest) Validate() []string {
	if strings.TrimSpace(c.TicketID) == "" && strings.TrimSpace(c.QRPayload) == "" {
		return []string{"ticket_id or qr_payload is required"}
	}
	return nil
}

// ManualAttendanceRequest is the request body for POST /registrations/{registrationID}/attendance.
type ManualAttendanceRequest struct {
	MarkAttended *bool  `json:"mark_attended"`
	Reason       string `json:"reason"`
}

func (c ManualAttendanceRequest) Validate() []string {
	if c.MarkAttended == nil {
		return []string{"mark_attended is required"}
	}
	return nil
}

// AttendanceSuccessResponse is the success envelope of attendance changes.
type AttendanceSuccessResponse struct {
	Data  *domain.AttendanceResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// AuditLogSuccessResponse is the success envelope of GET /events/{eventID}/audit-log.
type AuditLogSuccessResponse struct {
	Data  PaginatedResponse[*domain.AuditEntry] `json:"data"`
	Error *helpers.APIError                     `json:"error"`
}

type AttendanceController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewAttendanceController(logger *slog.Logger, svc domain.AttendanceService) *AttendanceController {
	return &AttendanceController{
		Logger:  logger,
		Service: svc,
	}
}

// Scan godoc
// @Summary Mark a ticket holder present
// @Description Organizer only. Accepts a raw ticket id or a signed QR payload. Marking an already present attendee succeeds without a new audit entry.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScanRequest true "Ticket"
// @Success 200 {object} controllers.AttendanceSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: ticket_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: not_confirmed"
// @Router /attendance/scan [post]
func (c *AttendanceController) Scan(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req ScanRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.MarkAttendance(r.Context(), domain.ScanInput{
		TicketID:  strings.TrimSpace(req.TicketID),
		QRPayload: strings.TrimSpace(req.QRPayload),
		ActorID:   userID,
		Method:    req.Method,
		Reason:    req.Reason,
	})
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// Manual godoc
// @Summary Manually mark or unmark attendance
// @Description Organizer only. Unmarking requires a reason.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID"
// @Param body body ManualAttendanceRequest true "Attendance change"
// @Success 200 {object} controllers.AttendanceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: reason_required"
// @Router /registrations/{registrationID}/attendance [post]
func (c *AttendanceController) Manual(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "registrationID")
	if !ok {
		return
	}
	var req ManualAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.ManualAttendance(r.Context(), id, userID, *req.MarkAttended, strings.TrimSpace(req.Reason))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// AuditLog godoc
// @Summary List attendance audit entries
// @Description Organizer only. Oldest first.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.AuditLogSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/{eventID}/audit-log [get]
func (c *AttendanceController) AuditLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	page, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	entries, total, err := c.Service.AuditLog(r.Context(), eventID, userID, page)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if entries == nil {
		entries = []*domain.AuditEntry{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PaginatedResponse[*domain.AuditEntry]{
		Items:      entries,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}
