package view

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_cycles_total",
		Help: "The total number of retrieval cycles",
	}, []string{"type"})
	staleDiscards = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_stale_discards_total",
		Help: "Completed cycles dropped because the state changed while they ran",
	}, []string{"type"})
	prunedSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_pruned_selections_total",
		Help: "Child facet selections removed because their parent no longer allows them",
	}, []string{"type"})
)
