// Package metrics provides Prometheus metrics instrumentation for the forecaster.
//
// It exposes operational metrics about the forecaster's pipeline performance,
// including the duration of each stage (collect, build, train, predict), the
// age and shape of the published forecast, and error tracking. All metrics are
// exposed via the /metrics HTTP endpoint for Prometheus scraping.
//
// Metrics exposed:
//   - loadcast_adapter_collect_seconds: Histogram of load collection duration
//   - loadcast_dataset_build_seconds: Histogram of dataset assembly duration
//   - loadcast_model_train_seconds: Histogram of model training duration
//   - loadcast_model_predict_seconds: Histogram of forecast prediction duration
//   - loadcast_forecast_age_seconds: Gauge of current forecast age
//   - loadcast_forecast_samples: Gauge of training samples behind the forecast
//   - loadcast_predicted_peak_mw: Gauge of the forecast's peak hourly load
//   - loadcast_committed_units: Gauge of the plan's first-hour commitment
//   - loadcast_errors_total: Counter of errors by component and reason
//
// All metrics include the zone label for multi-zone deployments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the forecaster.
type Metrics struct {
	AdapterCollectSeconds prometheus.Histogram
	DatasetBuildSeconds   prometheus.Histogram
	ModelTrainSeconds     prometheus.Histogram
	ModelPredictSeconds   prometheus.Histogram
	ForecastAgeSeconds    prometheus.Gauge
	ForecastSamples       prometheus.Gauge
	PredictedPeakMW       prometheus.Gauge
	CommittedUnits        prometheus.Gauge
	ErrorsTotal           *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New(zone, adapter, model string) *Metrics {
	return &Metrics{
		AdapterCollectSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "loadcast_adapter_collect_seconds",
			Help: "Time spent collecting load observations from the adapter",
			ConstLabels: prometheus.Labels{
				"adapter": adapter,
				"zone":    zone,
			},
			Buckets: prometheus.DefBuckets, // Default buckets: .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
		}),

		DatasetBuildSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "loadcast_dataset_build_seconds",
			Help: "Time spent assembling the training dataset",
			ConstLabels: prometheus.Labels{
				"zone": zone,
			},
			Buckets: prometheus.DefBuckets,
		}),

		ModelTrainSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "loadcast_model_train_seconds",
			Help: "Time spent training the forecast model",
			ConstLabels: prometheus.Labels{
				"model": model,
				"zone":  zone,
			},
			Buckets: prometheus.DefBuckets,
		}),

		ModelPredictSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "loadcast_model_predict_seconds",
			Help: "Time spent predicting the load forecast",
			ConstLabels: prometheus.Labels{
				"model": model,
				"zone":  zone,
			},
			Buckets: prometheus.DefBuckets,
		}),

		ForecastAgeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loadcast_forecast_age_seconds",
			Help: "Age of the current forecast in seconds",
			ConstLabels: prometheus.Labels{
				"zone": zone,
			},
		}),

		ForecastSamples: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loadcast_forecast_samples",
			Help: "Number of training samples behind the current forecast",
			ConstLabels: prometheus.Labels{
				"zone": zone,
			},
		}),

		PredictedPeakMW: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loadcast_predicted_peak_mw",
			Help: "Peak hourly load in the current forecast",
			ConstLabels: prometheus.Labels{
				"model": model,
				"zone":  zone,
			},
		}),

		CommittedUnits: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loadcast_committed_units",
			Help: "Planned generation commitment for the forecast's first hour",
			ConstLabels: prometheus.Labels{
				"zone": zone,
			},
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loadcast_errors_total",
			Help: "Total number of errors by component and reason",
			ConstLabels: prometheus.Labels{
				"zone": zone,
			},
		}, []string{"component", "reason"}),
	}
}

// RecordCollect records the time spent collecting observations.
func (m *Metrics) RecordCollect(seconds float64) {
	m.AdapterCollectSeconds.Observe(seconds)
}

// RecordBuild records the time spent assembling the dataset.
func (m *Metrics) RecordBuild(seconds float64) {
	m.DatasetBuildSeconds.Observe(seconds)
}

// RecordTrain records the time spent training the model.
func (m *Metrics) RecordTrain(seconds float64) {
	m.ModelTrainSeconds.Observe(seconds)
}

// RecordPredict records the time spent predicting.
func (m *Metrics) RecordPredict(seconds float64) {
	m.ModelPredictSeconds.Observe(seconds)
}

// SetForecastAge sets the current forecast age.
func (m *Metrics) SetForecastAge(seconds float64) {
	m.ForecastAgeSeconds.Set(seconds)
}

// SetForecastSamples sets the training sample count behind the forecast.
func (m *Metrics) SetForecastSamples(n int) {
	m.ForecastSamples.Set(float64(n))
}

// SetPredictedPeak sets the peak hourly load of the current forecast.
func (m *Metrics) SetPredictedPeak(mw float64) {
	m.PredictedPeakMW.Set(mw)
}

// SetCommittedUnits sets the first-hour commitment of the current plan.
func (m *Metrics) SetCommittedUnits(units int) {
	m.CommittedUnits.Set(float64(units))
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
