package categorize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fsort",
			Name:      "resolutions_total",
			Help:      "Entries processed by the resolution engine, by outcome.",
		},
		[]string{"source"},
	)

	retriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fsort",
			Name:      "classifier_retries_total",
			Help:      "Retries after transient classifier failures.",
		},
	)
)
