// Package metrics exposes Prometheus counters for the registration engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventreg"

var (
	admissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Count of registration attempts by outcome (confirmed, pending or an error kind).",
		},
		[]string{"outcome"},
	)
	paymentDecisionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_decisions_total",
			Help:      "Count of organizer payment decisions that changed state.",
		},
		[]string{"decision"},
	)
	inventoryReleaseCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_releases_total",
			Help:      "Count of reservation releases by reason and whether units were returned.",
		},
		[]string{"reason", "returned"},
	)
	ticketsIssuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_issued_total",
			Help:      "Count of tickets issued.",
		},
	)
	ticketCollisionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_id_collisions_total",
			Help:      "Count of generated ticket ids that were already taken.",
		},
	)
	attendanceCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_changes_total",
			Help:      "Count of attendance state changes by action and method.",
		},
		[]string{"action", "method"},
	)
	notificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Count of notifications handed to the delivery channel by type and result.",
		},
		[]string{"type", "result"},
	)
)

var registerMetrics sync.Once

// Register registers all metrics with reg. Only the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(admissionCounter)
		reg.MustRegister(paymentDecisionCounter)
		reg.MustRegister(inventoryReleaseCounter)
		reg.MustRegister(ticketsIssuedCounter)
		reg.MustRegister(ticketCollisionCounter)
		reg.MustRegister(attendanceCounter)
		reg.MustRegister(notificationCounter)
	})
}

// Handler serves the metrics of the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAdmission records the outcome of a registration attempt.
func RecordAdmission(outcome string) {
	admissionCounter.WithLabelValues(outcome).Inc()
}

// RecordPaymentDecision records an approval or rejection.
func RecordPaymentDecision(decision string) {
	paymentDecisionCounter.WithLabelValues(decision).Inc()
}

// RecordInventoryRelease records a release call.
func RecordInventoryRelease(reason string, returned bool) {
	label := "false"
	if returned {
		label = "true"
	}
	inventoryReleaseCounter.WithLabelValues(reason, label).Inc()
}

// RecordTicketIssued records a newly issued ticket.
func RecordTicketIssued() {
	ticketsIssuedCounter.Inc()
}

// RecordTicketCollision records a ticket id collision that forced a retry.
func RecordTicketCollision() {
	ticketCollisionCounter.Inc()
}

// RecordAttendance records an attendance state change.
func RecordAttendance(action, method string) {
	attendanceCounter.WithLabelValues(action, method).Inc()
}

// RecordNotification records a notification hand-off.
func RecordNotification(notificationType, result string) {
	notificationCounter.WithLabelValues(notificationType, result).Inc()
}
