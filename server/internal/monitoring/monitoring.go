// Package monitoring exposes Prometheus collectors for the model service.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector groups the service's metrics.
type Collector struct {
	Predictions         *prometheus.CounterVec
	PredictionFailures  *prometheus.CounterVec
	TrainingSessions    prometheus.Gauge
	ModelTrained        prometheus.Gauge
	Trainings           *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	ExtractionSeconds   prometheus.Histogram
}

// NewCollector registers the collectors on reg. A nil reg gives unregistered
// collectors, which is what tests want.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fingertail_predictions_total",
			Help: "Predictions served, by outcome",
		}, []string{"outcome"}),
		PredictionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fingertail_prediction_failures_total",
			Help: "Predictions rejected, by reason",
		}, []string{"reason"}),
		TrainingSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "fingertail_training_sessions",
			Help: "Sessions currently in the training log",
		}),
		ModelTrained: f.NewGauge(prometheus.GaugeOpts{
			Name: "fingertail_model_trained",
			Help: "1 when a legitimate profile is trained",
		}),
		Trainings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fingertail_trainings_total",
			Help: "Training runs, by trigger",
		}, []string{"trigger"}),
		PersistenceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fingertail_persistence_failures_total",
			Help: "Blob store operations that failed, by operation",
		}, []string{"op"}),
		ExtractionSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fingertail_feature_extraction_seconds",
			Help:    "Time spent extracting a feature vector",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
}
