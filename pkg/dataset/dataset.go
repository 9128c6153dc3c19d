// Package dataset turns an hourly load series into aligned (input, label)
// sample pairs for multi-horizon forecasting.
//
// Every model variant consumes the same framing, so results stay comparable:
// inputs look backward from a prediction origin through a set of lag offsets,
// labels cover the forecast horizon starting at the origin itself. The package
// guarantees that no input value is ever drawn from inside the label window
// (the no-leakage invariant) and that sample ordering is deterministic, which
// rolling-origin evaluation depends on.
//
// Both operations, Build and RollingSplit, are pure functions of their inputs:
// no I/O, no internal state, safe to call concurrently on shared inputs.
package dataset

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Missing is the explicit marker for an absent load or feature value.
// A series covering a calendar range with holes must carry the holes as
// observations with a Missing load, never drop them from the sequence.
var Missing = math.NaN()

// Observation is a single hourly record. Features holds optional exogenous
// per-hour values (temperature, price, ...) keyed by column name.
type Observation struct {
	Timestamp time.Time
	Load      float64
	Features  map[string]float64
}

// IsMissing reports whether the load value is the explicit missing marker.
func (o Observation) IsMissing() bool {
	return math.IsNaN(o.Load)
}

// Series is an ordered hourly sequence of observations covering a contiguous
// calendar range. It is owned by the caller; Build never mutates it.
type Series []Observation

// Validate checks that the series is non-empty and that consecutive
// observations are exactly one hour apart.
func (s Series) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty series", ErrEmptySeries)
	}
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp.Sub(s[i-1].Timestamp) != time.Hour {
			return fmt.Errorf("%w: %s followed by %s at index %d",
				ErrIrregularCadence,
				s[i-1].Timestamp.Format(time.RFC3339),
				s[i].Timestamp.Format(time.RFC3339),
				i,
			)
		}
	}
	return nil
}

// LagSpec is a set of positive hour offsets. For a prediction origin t, each
// offset k contributes the observation at t-k to the input window.
type LagSpec []int

// Normalize returns the spec sorted ascending with duplicates removed.
// The sorted order fixes the input vector layout.
func (l LagSpec) Normalize() LagSpec {
	out := slices.Clone(l)
	slices.Sort(out)
	return slices.Compact(out)
}

// Validate checks the spec against the label window. Labels occupy
// [origin, origin+horizon), so any offset < 1 would read from inside the
// label window and leak future information into the input.
func (l LagSpec) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: lag set is empty", ErrInvalidSpec)
	}
	for _, lag := range l {
		if lag < 1 {
			return fmt.Errorf("%w: lag %d overlaps the label window", ErrInvalidSpec, lag)
		}
	}
	return nil
}

// Max returns the largest offset in the spec, or 0 when empty.
func (l LagSpec) Max() int {
	max := 0
	for _, lag := range l {
		if lag > max {
			max = lag
		}
	}
	return max
}

// OriginPolicy selects which hours are candidate prediction origins.
type OriginPolicy int

const (
	// OriginHourly places a candidate origin at every hour.
	OriginHourly OriginPolicy = iota

	// OriginDaily places a candidate origin at each midnight, in the
	// location the series timestamps carry. This is the day-ahead setting:
	// one 24-hour forecast per day.
	OriginDaily
)

func (p OriginPolicy) String() string {
	switch p {
	case OriginHourly:
		return "hourly"
	case OriginDaily:
		return "daily"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Sample is one aligned (input, label) pair. Input holds, for each lag offset
// in ascending order, the values of every column at that lagged hour. Label
// holds the load for each horizon step starting at the origin. Samples are
// immutable once produced.
type Sample struct {
	Origin time.Time
	Input  []float64
	Label  []float64
}

// Dataset is an ordered sequence of samples plus the framing that produced
// them. It is never mutated after construction; rolling splits return
// subranges that share the backing array.
type Dataset struct {
	Samples []Sample
	Lags    LagSpec
	Horizon int

	// Columns lists the value columns contributing to each lag position,
	// "load" first, then feature names in sorted order. Input length is
	// always len(Lags) * len(Columns).
	Columns []string
}

// Len returns the number of samples.
func (d Dataset) Len() int { return len(d.Samples) }

// InputWidth returns the length of every sample's input vector.
func (d Dataset) InputWidth() int { return len(d.Lags) * len(d.Columns) }

// LoadColumn is the column name of the target load value.
const LoadColumn = "load"

// Build converts a series into a dataset of aligned samples.
//
// A candidate origin t (permitted by policy) produces a sample only when
// every lagged hour t-k carries non-missing values for all columns and every
// label hour t..t+horizon-1 carries a non-missing load. Origins failing either
// check are skipped; label values are never imputed, since that would corrupt
// evaluation. Samples come out in ascending origin order, so repeated calls
// with identical inputs yield identical datasets.
//
// Errors: ErrInvalidSpec for a malformed lag set or non-positive horizon,
// ErrEmptySeries when the series is shorter than max(lags)+horizon, and
// ErrIrregularCadence when consecutive observations are not one hour apart.
func Build(series Series, lags LagSpec, horizon int, policy OriginPolicy) (Dataset, error) {
	if err := lags.Validate(); err != nil {
		return Dataset{}, err
	}
	if horizon < 1 {
		return Dataset{}, fmt.Errorf("%w: horizon %d must be >= 1", ErrInvalidSpec, horizon)
	}
	if policy != OriginHourly && policy != OriginDaily {
		return Dataset{}, fmt.Errorf("%w: unknown origin policy %d", ErrInvalidSpec, int(policy))
	}

	lags = lags.Normalize()
	minSpan := lags.Max() + horizon
	if len(series) < minSpan {
		return Dataset{}, fmt.Errorf("%w: need %d observations, have %d",
			ErrEmptySeries, minSpan, len(series))
	}
	if err := series.Validate(); err != nil {
		return Dataset{}, err
	}

	columns := featureColumns(series)

	ds := Dataset{
		Lags:    lags,
		Horizon: horizon,
		Columns: columns,
	}

	// The cadence check above makes index arithmetic safe: observation i
	// sits exactly i hours after series[0].
	for i := lags.Max(); i+horizon <= len(series); i++ {
		origin := series[i].Timestamp
		if policy == OriginDaily && origin.Hour() != 0 {
			continue
		}

		sample, ok := frame(series, i, lags, horizon, columns)
		if !ok {
			continue
		}
		ds.Samples = append(ds.Samples, sample)
	}

	return ds, nil
}

// InputFor assembles the input vector for an arbitrary origin using this
// dataset's framing, without requiring label hours to exist. This is how a
// live forecast is framed: the next day's origin has no labels yet, but its
// lagged inputs are all in the past.
//
// The series must be the hourly-regular series the values are drawn from
// (typically the one the dataset was built from, possibly extended). Returns
// an error when a lagged hour falls outside the series or is missing.
func (d Dataset) InputFor(series Series, origin time.Time) ([]float64, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrEmptySeries)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	offset := origin.Sub(series[0].Timestamp)
	if offset%time.Hour != 0 {
		return nil, fmt.Errorf("%w: origin %s is not on the hourly grid",
			ErrInvalidSpec, origin.Format(time.RFC3339))
	}
	i := int(offset / time.Hour)

	input := make([]float64, 0, len(d.Lags)*len(d.Columns))
	for _, lag := range d.Lags {
		j := i - lag
		if j < 0 || j >= len(series) {
			return nil, fmt.Errorf("lag %d of origin %s falls outside the series",
				lag, origin.Format(time.RFC3339))
		}
		obs := series[j]
		for _, col := range d.Columns {
			v := columnValue(obs, col)
			if math.IsNaN(v) {
				return nil, fmt.Errorf("lag %d of origin %s is missing column %q",
					lag, origin.Format(time.RFC3339), col)
			}
			input = append(input, v)
		}
	}
	return input, nil
}

// frame assembles the sample at origin index i, reporting ok=false when any
// required value is missing.
func frame(series Series, i int, lags LagSpec, horizon int, columns []string) (Sample, bool) {
	input := make([]float64, 0, len(lags)*len(columns))
	for _, lag := range lags {
		obs := series[i-lag]
		for _, col := range columns {
			v := columnValue(obs, col)
			if math.IsNaN(v) {
				return Sample{}, false
			}
			input = append(input, v)
		}
	}

	label := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		obs := series[i+h]
		if obs.IsMissing() {
			return Sample{}, false
		}
		label[h] = obs.Load
	}

	return Sample{Origin: series[i].Timestamp, Input: input, Label: label}, true
}

func columnValue(obs Observation, col string) float64 {
	if col == LoadColumn {
		return obs.Load
	}
	v, ok := obs.Features[col]
	if !ok {
		return Missing
	}
	return v
}

// featureColumns derives the deterministic column layout: the load column
// followed by the sorted union of feature names seen anywhere in the series.
// A feature absent from some hours simply marks those hours missing for it.
func featureColumns(series Series) []string {
	seen := map[string]bool{}
	for _, obs := range series {
		for name := range obs.Features {
			seen[name] = true
		}
	}

	columns := make([]string, 0, len(seen)+1)
	columns = append(columns, LoadColumn)
	for name := range seen {
		columns = append(columns, name)
	}
	slices.Sort(columns[1:])
	return columns
}
