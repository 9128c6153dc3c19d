// Package models provides day-ahead load forecasting models.
//
// Every model consumes the exact same sample framing produced by pkg/dataset,
// which keeps naive persistence references and regression models directly
// comparable in walk-forward evaluation. A model is trained on a dataset and
// then predicts one full horizon from a single sample input vector.
package models

import (
	"context"
	"errors"
	"fmt"

	"loadcast/pkg/dataset"
)

// Model is the interface all forecasting models implement.
//
// Train must be called before Predict. Predict takes one sample input vector
// (layout defined by the training dataset's lags and columns) and returns one
// predicted value per horizon step. Implementations must not retain or mutate
// the input slice.
type Model interface {
	// Name returns a short model identifier, e.g. "previous-day".
	Name() string

	// Train fits the model on the training dataset. Persistence models use
	// this to resolve their required lag offsets against the framing.
	Train(ctx context.Context, train dataset.Dataset) error

	// Predict forecasts the full horizon from one sample's input vector.
	Predict(ctx context.Context, input []float64) ([]float64, error)
}

// ErrNotTrained is returned by Predict when Train has not succeeded yet.
var ErrNotTrained = errors.New("model has not been trained")

// framing captures the dataset layout a model was trained against, so
// Predict can locate individual lag values inside the flat input vector.
type framing struct {
	lags    dataset.LagSpec
	columns []string
	horizon int
	width   int
	lagPos  map[int]int // lag offset -> block index
	loadCol int         // position of the load column within a lag block
}

func newFraming(ds dataset.Dataset) (framing, error) {
	f := framing{
		lags:    ds.Lags,
		columns: ds.Columns,
		horizon: ds.Horizon,
		width:   ds.InputWidth(),
		lagPos:  make(map[int]int, len(ds.Lags)),
		loadCol: -1,
	}
	for i, lag := range ds.Lags {
		f.lagPos[lag] = i
	}
	for i, col := range ds.Columns {
		if col == dataset.LoadColumn {
			f.loadCol = i
		}
	}
	if f.loadCol < 0 {
		return framing{}, fmt.Errorf("dataset has no %q column", dataset.LoadColumn)
	}
	return f, nil
}

// loadAt returns the load value at the given lag offset from the input
// vector, or an error when the framing does not carry that offset.
func (f framing) loadAt(input []float64, lag int) (float64, error) {
	block, ok := f.lagPos[lag]
	if !ok {
		return 0, fmt.Errorf("lag %d not present in framing %v", lag, f.lags)
	}
	return input[block*len(f.columns)+f.loadCol], nil
}

func (f framing) checkInput(input []float64) error {
	if len(input) != f.width {
		return fmt.Errorf("input length %d, framing expects %d", len(input), f.width)
	}
	return nil
}

// Options carries model-specific tuning knobs for the factory.
type Options struct {
	// MovingAverageDays is the number of trailing days averaged by the
	// "moving-average" model. Defaults to 3.
	MovingAverageDays int

	// RidgeLambda is the L2 penalty of the "ridge" model. Defaults to 1.0.
	RidgeLambda float64
}

// New creates a forecasting model by name: "previous-day", "moving-average",
// "year-ago", or "ridge".
func New(name string, opts Options) (Model, error) {
	switch name {
	case "previous-day":
		return NewPreviousDay(), nil
	case "moving-average":
		days := opts.MovingAverageDays
		if days <= 0 {
			days = 3
		}
		return NewMovingAverage(days), nil
	case "year-ago":
		return NewYearAgo(), nil
	case "ridge":
		lambda := opts.RidgeLambda
		if lambda <= 0 {
			lambda = 1.0
		}
		return NewRidge(lambda), nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}
