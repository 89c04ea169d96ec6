package http

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	endpointLabel = "endpoint"
	errTypeLabel  = "error_type"
)

var (
	apiQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "api_query_latency",
		Help: "The time to serve a spatial query.",
	}, []string{
		endpointLabel,
	})

	apiRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_errors",
		Help: "The errors that occured while serving API requests.",
	}, []string{
		endpointLabel,
		errTypeLabel,
	})

	syncConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sync_connected_clients",
		Help: "The number of connected sync clients.",
	})
)

func instrumentQueryLatency(endpoint string, start time.Time) {
	apiQueryLatency.With(prometheus.Labels{
		endpointLabel: endpoint,
	}).Observe(time.Since(start).Seconds())
}

func instrumentRequestError(endpoint string, err error) {
	apiRequestErrors.With(prometheus.Labels{
		endpointLabel: endpoint,
		errTypeLabel:  errors.Type(err),
	}).Inc()
}

func instrumentSyncClientConnect() {
	syncConnectedClients.Inc()
}

func instrumentSyncClientDisconnect() {
	syncConnectedClients.Dec()
}
