// Package telemetry wires the process-wide Prometheus registry, slog
// bootstrap, and optional OTLP span export spec §4.7 names (grounded on
// la2go's cmd/gameserver.main slog setup and ocx-backend's
// prometheus/client_golang usage).
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// packetSizeBuckets are the histogram boundaries spec §4.7 names
// explicitly for network_packet_size_bytes.
var packetSizeBuckets = []float64{32, 64, 128, 256, 512, 1024, 1400, 2048}

// Metrics holds every gauge/counter/histogram spec §4.7 requires.
type Metrics struct {
	ConnectedPlayers *prometheus.GaugeVec
	TickRateHz       prometheus.Gauge
	PacketsTotal     *prometheus.CounterVec
	BytesTotal       *prometheus.CounterVec
	PacketSizeBytes  *prometheus.HistogramVec
	RTT              prometheus.Histogram
}

// NewMetrics registers every series against the default registry and
// returns handles for the realm/gateway to update as they run.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectedPlayers: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connected_players_count",
			Help: "Number of players currently connected to the realm.",
		}, []string{"realm"}),

		TickRateHz: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "server_tick_rate_hz",
			Help: "Observed simulation tick rate, sampled every 5s as ticks/sec over the interval.",
		}),

		PacketsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "network_packets_total",
			Help: "Total packets sent/received, by direction and channel.",
		}, []string{"direction", "channel"}),

		BytesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "network_bytes_total",
			Help: "Total bytes sent/received, by direction and channel.",
		}, []string{"direction", "channel"}),

		PacketSizeBytes: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "network_packet_size_bytes",
			Help:    "Distribution of packet sizes, by direction.",
			Buckets: packetSizeBuckets,
		}, []string{"direction"}),

		RTT: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "server_rtt",
			Help: "Observed client round-trip time from keep-alive acknowledgement.",
		}),
	}
}
