package httpserver

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters every long-lived process (gateway, coordinator,
// aggregator) exposes on /metrics, labeled by this process's own gateway
// or service name so a single Prometheus target list can scrape the
// whole fleet.
var (
	PacketsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ttcloud_packets_received_total",
		Help: "Inbound radio packets accepted by a decision engine, by packet kind.",
	}, []string{"gateway", "kind"})

	RepliesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ttcloud_replies_sent_total",
		Help: "Command packets a decision engine handed to its radio bridge.",
	}, []string{"gateway"})

	AnomaliesRaised = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ttcloud_anomalies_raised_total",
		Help: "Anomaly checks that fired, by kind.",
	}, []string{"gateway", "kind"})

	SlotsAllocated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ttcloud_slots_allocated_total",
		Help: "Time-slot assignments a decision engine has handed out to talkers.",
	}, []string{"gateway"})
)

func init() {
	prometheus.MustRegister(PacketsReceived, RepliesSent, AnomaliesRaised, SlotsAllocated)
}
