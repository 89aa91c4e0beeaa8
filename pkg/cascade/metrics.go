package cascade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_stage_served_total",
		Help: "Retrievals answered by a cascade stage",
	}, []string{"type", "stage"})
	stageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_stage_failures_total",
		Help: "Cascade stages that failed or returned nothing",
	}, []string{"type", "stage", "kind"})
	fallbackServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_fallback_served_total",
		Help: "Retrievals answered by the static fallback dataset",
	}, []string{"type"})
)
