// Package main implements the core forecast loop orchestration.
//
// This file contains the Forecaster type which orchestrates the forecast
// pipeline:
//
//	collect → build dataset → train → predict → store snapshot
//
// The Forecaster runs continuously via Run(), executing Tick() at regular
// intervals. Each tick retrains the model on the freshest history and
// publishes a day-ahead snapshot that consumers read via the HTTP API.
//
// The forecast loop is instrumented with Prometheus metrics tracking the
// duration of each pipeline stage (collect, build, train, predict) and any
// errors encountered during execution.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loadcast/cmd/forecaster/metrics"
	"loadcast/pkg/adapters"
	"loadcast/pkg/dataset"
	"loadcast/pkg/models"
	"loadcast/pkg/schedule"
	"loadcast/pkg/storage"
)

// Forecaster orchestrates the forecast loop: collect → train → predict → store.
type Forecaster struct {
	zone    string
	adapter adapters.Adapter
	model   models.Model
	store   storage.Store
	lags    dataset.LagSpec
	horizon int
	window  time.Duration
	policy  *schedule.Policy // nil disables commitment planning
	logger  *slog.Logger
	metrics *metrics.Metrics

	// prevUnits carries the last published commitment into the next
	// plan's ramp clamps.
	prevUnits int

	// now is stubbed in tests.
	now func() time.Time
}

// New creates a new Forecaster.
func New(
	zone string,
	adapter adapters.Adapter,
	model models.Model,
	store storage.Store,
	lags dataset.LagSpec,
	horizon int,
	window time.Duration,
	policy *schedule.Policy,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Forecaster {
	if logger == nil {
		logger = slog.Default()
	}

	f := &Forecaster{
		zone:    zone,
		adapter: adapter,
		model:   model,
		store:   store,
		lags:    lags,
		horizon: horizon,
		window:  window,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	if policy != nil {
		f.prevUnits = policy.MinUnits
	}
	return f
}

// Run executes the forecast loop at regular intervals.
// Blocks until context is canceled.
func (f *Forecaster) Run(ctx context.Context, interval time.Duration) error {
	f.logger.Info("starting forecast loop", "interval", interval, "window", f.window)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := f.Tick(ctx); err != nil {
		f.logger.Error("initial forecast tick failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("forecast loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := f.Tick(ctx); err != nil {
				f.logger.Error("forecast tick failed", "error", err)
			}
		}
	}
}

// Tick performs one forecast cycle.
// Exported for testing purposes.
func (f *Forecaster) Tick(ctx context.Context) error {
	start := f.now()
	f.logger.Debug("starting forecast tick")

	// The forecast targets the next calendar day, hour by hour from midnight UTC.
	origin := start.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	series, collectDuration, err := f.collect(ctx, origin)
	if err != nil {
		if f.metrics != nil {
			f.metrics.RecordError("adapter", "collect_failed")
		}
		return fmt.Errorf("collect: %w", err)
	}

	ds, buildDuration, err := f.build(series)
	if err != nil {
		if f.metrics != nil {
			f.metrics.RecordError("dataset", "build_failed")
		}
		return fmt.Errorf("build dataset: %w", err)
	}

	trainDuration, err := f.train(ctx, ds)
	if err != nil {
		if f.metrics != nil {
			f.metrics.RecordError("model", "train_failed")
		}
		return fmt.Errorf("train: %w", err)
	}

	values, predictDuration, err := f.predict(ctx, ds, series, origin)
	if err != nil {
		if f.metrics != nil {
			f.metrics.RecordError("model", "predict_failed")
		}
		return fmt.Errorf("predict: %w", err)
	}

	units := f.plan(values)

	if err := f.storeSnapshot(ctx, origin, values, units, len(ds.Samples)); err != nil {
		if f.metrics != nil {
			f.metrics.RecordError("store", "put_failed")
		}
		return fmt.Errorf("store: %w", err)
	}

	if f.metrics != nil {
		f.metrics.SetForecastAge(0) // Just generated
		f.metrics.SetForecastSamples(len(ds.Samples))
		f.metrics.SetPredictedPeak(peak(values))
		if len(units) > 0 {
			f.metrics.SetCommittedUnits(units[0])
		}
	}

	totalDuration := time.Since(start)
	f.logger.Info("forecast tick complete",
		"zone", f.zone,
		"origin", origin.Format(time.RFC3339),
		"train_samples", len(ds.Samples),
		"forecast_hours", len(values),
		"collect_ms", collectDuration.Milliseconds(),
		"build_ms", buildDuration.Milliseconds(),
		"train_ms", trainDuration.Milliseconds(),
		"predict_ms", predictDuration.Milliseconds(),
		"total_ms", totalDuration.Milliseconds(),
	)

	return nil
}

// collect retrieves hourly load history from the adapter. The window ends at
// the forecast origin so every lagged hour the framing can reference exists
// in the collected range.
func (f *Forecaster) collect(ctx context.Context, origin time.Time) (dataset.Series, time.Duration, error) {
	start := f.now()

	from := origin.Add(-f.window)
	series, err := f.adapter.Collect(ctx, from, origin)
	if err != nil {
		return nil, 0, err
	}

	duration := time.Since(start)

	if f.metrics != nil {
		f.metrics.RecordCollect(duration.Seconds())
	}

	f.logger.Info("collected observations",
		"adapter", f.adapter.Name(),
		"hours", len(series),
		"from", from.Format(time.RFC3339),
		"to", origin.Format(time.RFC3339),
		"duration_ms", duration.Milliseconds(),
	)

	return series, duration, nil
}

// build assembles the supervised dataset from the collected series.
func (f *Forecaster) build(series dataset.Series) (dataset.Dataset, time.Duration, error) {
	start := f.now()

	ds, err := dataset.Build(series, f.lags, f.horizon, dataset.OriginDaily)
	if err != nil {
		return dataset.Dataset{}, 0, err
	}
	if len(ds.Samples) == 0 {
		return dataset.Dataset{}, 0, fmt.Errorf("%w: no valid training samples in window", dataset.ErrInsufficientData)
	}

	duration := time.Since(start)

	if f.metrics != nil {
		f.metrics.RecordBuild(duration.Seconds())
	}

	f.logger.Debug("built dataset", "samples", len(ds.Samples), "input_width", ds.InputWidth())
	return ds, duration, nil
}

// train fits the model on the freshly built dataset.
func (f *Forecaster) train(ctx context.Context, ds dataset.Dataset) (time.Duration, error) {
	start := f.now()

	if err := f.model.Train(ctx, ds); err != nil {
		return 0, err
	}

	duration := time.Since(start)

	if f.metrics != nil {
		f.metrics.RecordTrain(duration.Seconds())
	}

	f.logger.Debug("trained model",
		"model", f.model.Name(),
		"samples", len(ds.Samples),
		"duration_ms", duration.Milliseconds(),
	)

	return duration, nil
}

// predict frames the live origin against the series and runs the model.
func (f *Forecaster) predict(ctx context.Context, ds dataset.Dataset, series dataset.Series, origin time.Time) ([]float64, time.Duration, error) {
	start := f.now()

	input, err := ds.InputFor(series, origin)
	if err != nil {
		return nil, 0, fmt.Errorf("frame origin: %w", err)
	}

	values, err := f.model.Predict(ctx, input)
	if err != nil {
		return nil, 0, err
	}

	duration := time.Since(start)

	if f.metrics != nil {
		f.metrics.RecordPredict(duration.Seconds())
	}

	f.logger.Debug("predicted forecast",
		"model", f.model.Name(),
		"hours", len(values),
		"duration_ms", duration.Milliseconds(),
	)

	return values, duration, nil
}

// plan derives the hourly commitment plan, when a policy is configured.
func (f *Forecaster) plan(values []float64) []int {
	if f.policy == nil {
		return nil
	}

	units := schedule.Commit(f.prevUnits, values, *f.policy)
	if len(units) > 0 {
		f.prevUnits = units[len(units)-1]
	}

	f.logger.Debug("planned commitment", "hours", len(units))
	return units
}

// storeSnapshot persists the forecast snapshot.
func (f *Forecaster) storeSnapshot(ctx context.Context, origin time.Time, values []float64, units []int, trainSamples int) error {
	snapshot := storage.Snapshot{
		Zone:           f.zone,
		Model:          f.model.Name(),
		GeneratedAt:    f.now(),
		Origin:         origin,
		HorizonHours:   f.horizon,
		Values:         values,
		CommittedUnits: units,
		TrainSamples:   trainSamples,
	}

	if err := f.store.Put(ctx, snapshot); err != nil {
		return err
	}

	f.logger.Debug("stored snapshot", "zone", f.zone)
	return nil
}

func peak(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
