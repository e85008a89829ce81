package annotator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for annotation runs. Registered on the default
// registry so the /metrics handler picks them up.
var (
	metricRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "annograph",
		Subsystem: "annotator",
		Name:      "runs_total",
		Help:      "Completed annotation runs.",
	})

	metricRunErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "annograph",
		Subsystem: "annotator",
		Name:      "run_errors_total",
		Help:      "Annotation runs that aborted before producing output.",
	})

	metricAnnotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "annograph",
		Subsystem: "annotator",
		Name:      "annotations_total",
		Help:      "Annotations produced across all runs.",
	})

	metricUnreadableDocs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "annograph",
		Subsystem: "annotator",
		Name:      "unreadable_documents_total",
		Help:      "Documents whose content could not be resolved.",
	})

	metricRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "annograph",
		Subsystem: "annotator",
		Name:      "run_duration_seconds",
		Help:      "Wall time per annotation run.",
		Buckets:   prometheus.DefBuckets,
	})
)
