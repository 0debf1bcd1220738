package basket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opClear  = "clear"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "basket",
			Name:      "mutations_total",
			Help:      "Total number of committed basket mutations",
		},
		[]string{"op"},
	)

	restoreFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "basket",
			Name:      "restore_failures_total",
			Help:      "Total number of persisted baskets discarded because they could not be decoded",
		},
	)

	persistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "basket",
			Name:      "persist_failures_total",
			Help:      "Total number of basket writes that failed",
		},
	)
)
