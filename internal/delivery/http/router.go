package http

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventreg/internal/delivery/http/controllers"
	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
	"eventreg/internal/metrics"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Payments      *controllers.PaymentController
	Attendance    *controllers.AttendanceController
	Tickets       *controllers.TicketController
	Health        *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(c.Events.Transition(domain.EventStatusPublished)))
	mux.HandleFunc("POST /events/{eventID}/start", auth(c.Events.Transition(domain.EventStatusOngoing)))
	mux.HandleFunc("POST /events/{eventID}/complete", auth(c.Events.Transition(domain.EventStatusCompleted)))
	mux.HandleFunc("POST /events/{eventID}/close", auth(c.Events.Transition(domain.EventStatusClosed)))
	mux.HandleFunc("PUT /events/{eventID}/registration-window", auth(c.Events.SetRegistrationWindow))
	mux.HandleFunc("PUT /events/{eventID}/form", auth(c.Events.MutateForm))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Registrations.Register))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(c.Registrations.ListByEvent))
	mux.HandleFunc("GET /events/{eventID}/registrations/mine", auth(c.Registrations.ListMine))
	mux.HandleFunc("GET /registrations/{registrationID}", auth(c.Registrations.Get))
	mux.HandleFunc("DELETE /registrations/{registrationID}", auth(c.Registrations.Cancel))

	// Payments
	mux.HandleFunc("POST /registrations/{registrationID}/proof", auth(c.Payments.AttachProof))
	mux.HandleFunc("POST /registrations/{registrationID}/approve", auth(c.Payments.Approve))
	mux.HandleFunc("POST /registrations/{registrationID}/reject", auth(c.Payments.Reject))

	// Attendance
	mux.HandleFunc("POST /attendance/scan", auth(c.Attendance.Scan))
	mux.HandleFunc("POST /registrations/{registrationID}/attendance", auth(c.Attendance.Manual))
	mux.HandleFunc("GET /events/{eventID}/audit-log", auth(c.Attendance.AuditLog))

	// Tickets
	mux.HandleFunc("GET /tickets/{ticketID}", auth(c.Tickets.GetTicket))
	mux.HandleFunc("GET /tickets/{ticketID}/qr.png", auth(c.Tickets.QRCode))

	// Operations
	mux.HandleFunc("GET /health", c.Health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with the request middleware chain.
func NewHandler(mux http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	var h http.Handler = mux
	h = middleware.CORS(allowedOrigins, h)
	h = middleware.LoggingMiddleware(logger, h)
	h = chimw.Recoverer(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}
