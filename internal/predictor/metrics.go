package predictor

import "github.com/prometheus/client_golang/prometheus"

var (
	loadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "textclassd",
			Subsystem: "predictor",
			Name:      "model_loads_total",
			Help:      "Total number of successful model bundle loads",
		},
	)

	loadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "textclassd",
			Subsystem: "predictor",
			Name:      "model_load_failures_total",
			Help:      "Total number of failed model bundle loads",
		},
	)

	unloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "textclassd",
			Subsystem: "predictor",
			Name:      "model_unloads_total",
			Help:      "Total number of model unloads",
		},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textclassd",
			Subsystem: "predictor",
			Name:      "predictions_total",
			Help:      "Total number of prediction calls",
		},
		[]string{"kind", "outcome"},
	)

	predictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "textclassd",
			Subsystem: "predictor",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of prediction calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	batchTexts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "textclassd",
			Subsystem: "predictor",
			Name:      "batch_texts",
			Help:      "Number of texts per batch prediction call",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)
)

func init() {
	prometheus.MustRegister(
		loadsTotal, loadFailuresTotal, unloadsTotal,
		predictionsTotal, predictionDuration, batchTexts,
	)
}
