package controllers

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func TestTicketController_GetTicket(t *testing.T) {
	params := map[string]string{"ticketID": "tkt-1"}
	svc := &fakeTicketService{ticket: &domain.Ticket{TicketID: "tkt-1", RegistrationID: "reg-1", QRPayload: "signed"}}
	c := NewTicketController(testLogger, svc)

	rr := httptest.NewRecorder()
	c.GetTicket(rr, newRequest(http.MethodGet, "/tickets/tkt-1", "", "user-1", params))
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.Ticket
	require.Nil(t, decodeEnvelope(t, rr, &got))
	assert.Equal(t, "signed", got.QRPayload)

	svc.err = domain.ErrTicketNotFound
	rr = httptest.NewRecorder()
	c.GetTicket(rr, newRequest(http.MethodGet, "/tickets/tkt-1", "", "user-2", params))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTicketController_QRCode(t *testing.T) {
	params := map[string]string{"ticketID": "tkt-1"}
	c := NewTicketController(testLogger, &fakeTicketService{ticket: &domain.Ticket{TicketID: "tkt-1", QRPayload: "signed-payload"}})
	rr := httptest.NewRecorder()

	c.QRCode(rr, newRequest(http.MethodGet, "/tickets/tkt-1/qr.png?size=128", "", "user-1", params))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}
