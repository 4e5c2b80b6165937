// Package observability exposes Prometheus instruments for the booking engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicketsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelink_tickets_created_total",
		Help: "Tickets created, labelled by booking source.",
	}, []string{"source"})

	TicketsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelink_tickets_cancelled_total",
		Help: "Tickets cancelled or refunded.",
	})

	ProofsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelink_payment_proofs_submitted_total",
		Help: "Payment proofs submitted for review.",
	})

	ProofsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelink_payment_proofs_reviewed_total",
		Help: "Payment proof review outcomes.",
	}, []string{"outcome"})

	SeatReservationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelink_seat_reservation_failures_total",
		Help: "Seat reservations rejected, labelled by cause.",
	}, []string{"cause"})

	CoinTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelink_coin_transactions_total",
		Help: "Coin ledger entries written, labelled by type.",
	}, []string{"type"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelink_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
