package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armlink",
			Subsystem: "telemetry",
			Name:      "frames_total",
			Help:      "Telemetry frames received and decoded.",
		},
	)
	decodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armlink",
			Subsystem: "telemetry",
			Name:      "decode_errors_total",
			Help:      "Telemetry frames that failed to decode.",
		},
	)
	recvTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armlink",
			Subsystem: "telemetry",
			Name:      "recv_timeouts_total",
			Help:      "Single-message receive timeouts.",
		},
	)
	linkLost = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "armlink",
			Subsystem: "link",
			Name:      "lost_total",
			Help:      "Links declared lost after consecutive timeouts.",
		},
	)
	connects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armlink",
			Subsystem: "link",
			Name:      "connects_total",
			Help:      "Connection attempts by outcome.",
		},
		[]string{"outcome"},
	)
	commandsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "armlink",
			Subsystem: "command",
			Name:      "sent_total",
			Help:      "Command requests written to the dealer channel.",
		},
		[]string{"command"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesReceived, decodeErrors, recvTimeouts, linkLost, connects, commandsSent,
		)
	})
}

func RecordFrame() {
	RegisterMetrics()
	framesReceived.Inc()
}

func RecordDecodeError() {
	RegisterMetrics()
	decodeErrors.Inc()
}

func RecordRecvTimeout() {
	RegisterMetrics()
	recvTimeouts.Inc()
}

func RecordLinkLost() {
	RegisterMetrics()
	linkLost.Inc()
}

func RecordConnect(outcome string) {
	RegisterMetrics()
	connects.WithLabelValues(outcome).Inc()
}

func RecordCommand(command string) {
	RegisterMetrics()
	commandsSent.WithLabelValues(command).Inc()
}
