// Package adapters provides data source connectors that retrieve hourly load
// observations from external systems and normalize them into a dataset.Series.
//
// Each adapter implements the Adapter interface and can be plugged into the
// forecaster. Available adapters:
//   - HTTPAdapter: generic adapter for any REST API with JSON responses,
//     with an ESIOS preset for the Spanish system operator's indicator API
//   - CSVAdapter: reads pre-cleaned hourly CSV exports
//
// Adapters are intentionally thin: they fetch raw points, snap them to the
// hourly grid, and leave feature framing and forecasting to the upper layers.
// Hours the source did not report come back as explicit missing observations,
// never as holes in the sequence: the dataset builder rejects irregular
// cadence, so silently dropping hours here would poison every build
// downstream.
package adapters

import (
	"context"
	"time"

	"loadcast/pkg/dataset"
)

// Adapter is the interface all data source connectors implement.
//
// Collect fetches hourly observations covering [start, end) and returns them
// as a gap-free hourly series; it must respect context cancellation and
// deadlines and never panic.
type Adapter interface {
	Collect(ctx context.Context, start, end time.Time) (dataset.Series, error)

	// Name returns a short, unique identifier, e.g. "esios" or "csv".
	Name() string
}

// point is one raw observation before grid alignment.
type point struct {
	ts       time.Time
	load     float64
	features map[string]float64
}

// gridSeries snaps raw points onto the hourly grid over [start, end).
// Timestamps are truncated to the hour; when several points land on the same
// hour the last one wins. Hours without a point become explicit missing
// observations.
func gridSeries(points []point, start, end time.Time) dataset.Series {
	start = start.Truncate(time.Hour)
	end = end.Truncate(time.Hour)

	byHour := make(map[time.Time]point, len(points))
	for _, p := range points {
		byHour[p.ts.Truncate(time.Hour)] = p
	}

	var series dataset.Series
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		obs := dataset.Observation{Timestamp: ts, Load: dataset.Missing}
		if p, ok := byHour[ts]; ok {
			obs.Load = p.load
			obs.Features = p.features
		}
		series = append(series, obs)
	}
	return series
}
