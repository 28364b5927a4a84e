package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"eventreg/internal/adapters/qrcode"
	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"
)

// TicketSuccessResponse is the success envelope of GET /tickets/{ticketID}.
type TicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{
		Logger:  logger,
		Service: svc,
	}
}

// GetTicket godoc
// @Summary Get a ticket
// @Description Visible to the ticket holder and the event organizer. qr_payload is the signed token encoded in the QR image.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: ticket_not_found"
// @Router /tickets/{ticketID} [get]
func (c *TicketController) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := c.load(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// QRCode godoc
// @Summary Get a ticket's QR code
// @Tags tickets
// @Produce png
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID"
// @Param size query int false "Edge length in pixels (default 256, max 1024)"
// @Success 200 {file} binary
// @Failure 404 {object} helpers.APIResponse "error.code: ticket_not_found"
// @Router /tickets/{ticketID}/qr.png [get]
func (c *TicketController) QRCode(w http.ResponseWriter, r *http.Request) {
	ticket, ok := c.load(w, r)
	if !ok {
		return
	}
	size := qrcode.DefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 64 && v <= 1024 {
			size = v
		}
	}
	png, err := qrcode.PNG(ticket.QRPayload, size)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (c *TicketController) load(w http.ResponseWriter, r *http.Request) (*domain.Ticket, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}
	ticketID, ok := pathParam(w, r, "ticketID")
	if !ok {
		return nil, false
	}
	ticket, err := c.Service.GetTicket(r.Context(), ticketID, userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return nil, false
	}
	return ticket, true
}
