package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bromq-dev/mqttc/pkg/packet"
)

// Metrics holds the Prometheus counters a client updates.
//
// Metrics collected:
//   - mqttc_packets_sent_total: Counter of packets written by type
//   - mqttc_packets_received_total: Counter of packets read by type
//   - mqttc_bytes_sent_total: Counter of frame bytes written
//   - mqttc_codec_errors_total: Counter of encode and decode failures
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	bytesSent       prometheus.Counter
	codecErrors     prometheus.Counter
}

// NewMetrics registers the client metrics with reg
// (default: prometheus.DefaultRegisterer).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		packetsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttc",
			Name:      "packets_sent_total",
			Help:      "Total number of MQTT packets sent",
		}, []string{"type"}),

		packetsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttc",
			Name:      "packets_received_total",
			Help:      "Total number of MQTT packets received",
		}, []string{"type"}),

		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mqttc",
			Name:      "bytes_sent_total",
			Help:      "Total number of frame bytes sent",
		}),

		codecErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mqttc",
			Name:      "codec_errors_total",
			Help:      "Total number of packet encode and decode errors",
		}),
	}
}

func (m *Metrics) sent(t packet.Type, n int) {
	if m == nil {
		return
	}
	m.packetsSent.WithLabelValues(t.String()).Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) received(t packet.Type) {
	if m == nil {
		return
	}
	m.packetsReceived.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) codecError() {
	if m == nil {
		return
	}
	m.codecErrors.Inc()
}
