// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every planboard collector. A private registry keeps tests
// free of duplicate registration panics.
var Registry = prometheus.NewRegistry()

var (
	HubClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "planboard",
		Subsystem: "hub",
		Name:      "clients",
		Help:      "Number of connected websocket subscribers.",
	})

	HubBroadcasts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planboard",
		Subsystem: "hub",
		Name:      "broadcasts_total",
		Help:      "Snapshots sent to subscribers, by result.",
	}, []string{"result"})

	DocumentWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planboard",
		Subsystem: "store",
		Name:      "document_writes_total",
		Help:      "Whole-document writes, by RPC method.",
	}, []string{"method"})

	DocumentRevision = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "planboard",
		Subsystem: "store",
		Name:      "document_revision",
		Help:      "Latest revision per document path.",
	}, []string{"path"})

	BridgeWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planboard",
		Subsystem: "bridge",
		Name:      "writes_total",
		Help:      "Outbound writes from the sync bridge, by result.",
	}, []string{"result"})

	BridgeSnapshots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planboard",
		Subsystem: "bridge",
		Name:      "snapshots_total",
		Help:      "Inbound snapshots seen by the sync bridge, by outcome.",
	}, []string{"outcome"})

	RPCRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planboard",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "Connect requests, by procedure and result code.",
	}, []string{"procedure", "code"})

	AdvisorRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planboard",
		Subsystem: "advisor",
		Name:      "requests_total",
		Help:      "AI advisor requests, by provider and outcome.",
	}, []string{"provider", "outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HubClients,
		HubBroadcasts,
		DocumentWrites,
		DocumentRevision,
		BridgeWrites,
		BridgeSnapshots,
		RPCRequests,
		AdvisorRequests,
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
