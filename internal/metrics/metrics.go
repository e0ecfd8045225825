package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketchat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketchat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Chat metrics
	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketchat_messages_appended_total",
			Help: "Total messages appended to rooms",
		},
		[]string{"sender_type", "ai"},
	)

	AppointmentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketchat_appointment_transitions_total",
			Help: "Appointment status transitions by outcome",
		},
		[]string{"status", "result"},
	)

	MessagesMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketchat_messages_marked_read_total",
			Help: "Total messages flipped to read",
		},
	)

	// Fan-out metrics
	FanoutPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketchat_fanout_published_total",
			Help: "Real-time events handed to the publisher",
		},
		[]string{"type"},
	)

	FanoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketchat_fanout_failures_total",
			Help: "Real-time events dropped after a publish failure",
		},
		[]string{"type"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketchat_websocket_clients",
			Help: "Connected websocket subscribers",
		},
	)

	AutoReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketchat_auto_replies_total",
			Help: "AI replies generated on behalf of businesses",
		},
		[]string{"result"},
	)
)
