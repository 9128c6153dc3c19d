package models

import (
	"context"
	"fmt"

	"loadcast/pkg/dataset"
)

// Hours per calendar unit used by the persistence models. The year is fixed
// at 365 days; leap-day drift is acceptable for a reference model.
const (
	hoursPerDay  = 24
	hoursPerYear = 365 * hoursPerDay
)

// persistence is the shared skeleton of the naive reference models. Each
// variant predicts horizon step h as the mean of the load at a fixed set of
// lag offsets; the offsets are a pure function of h.
//
// Persistence models carry no learned parameters. Train only resolves the
// required offsets against the dataset framing, so a lag set too small for
// the model fails loudly at training time instead of silently at predict
// time.
type persistence struct {
	name    string
	offsets func(step int) []int
	trained bool
	f       framing
}

// NewPreviousDay returns the previous-day persistence model: tomorrow's hour
// h is forecast as today's hour h, i.e. the load 24 hours before each label
// hour. The classic day-ahead reference.
func NewPreviousDay() Model {
	return &persistence{
		name: "previous-day",
		offsets: func(step int) []int {
			return []int{hoursPerDay - step}
		},
	}
}

// NewMovingAverage returns a persistence model forecasting each hour as the
// mean of the same hour over the previous days trailing days.
func NewMovingAverage(days int) Model {
	return &persistence{
		name: fmt.Sprintf("moving-average-%dd", days),
		offsets: func(step int) []int {
			lags := make([]int, days)
			for d := 1; d <= days; d++ {
				lags[d-1] = d*hoursPerDay - step
			}
			return lags
		},
	}
}

// NewYearAgo returns the same-day-one-year-ago persistence model: each hour
// is forecast as the load at the same hour 365 days earlier. Useful when a
// full year of history is available and annual seasonality dominates.
func NewYearAgo() Model {
	return &persistence{
		name: "year-ago",
		offsets: func(step int) []int {
			return []int{hoursPerYear - step}
		},
	}
}

func (p *persistence) Name() string { return p.name }

// Train resolves the model's lag offsets against the dataset framing.
// Returns an error when the framing lacks an offset the model needs for any
// horizon step, or when the horizon reaches past the model's reference day.
func (p *persistence) Train(ctx context.Context, train dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := newFraming(train)
	if err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}

	for step := 0; step < f.horizon; step++ {
		for _, lag := range p.offsets(step) {
			if lag < 1 {
				return fmt.Errorf("%s: horizon step %d reaches into the reference window", p.name, step)
			}
			if _, ok := f.lagPos[lag]; !ok {
				return fmt.Errorf("%s: framing lacks lag %d needed for step %d (lags %v)",
					p.name, lag, step, f.lags)
			}
		}
	}

	p.f = f
	p.trained = true
	return nil
}

// Predict forecasts each horizon step as the mean of the configured lagged
// loads.
func (p *persistence) Predict(ctx context.Context, input []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.trained {
		return nil, fmt.Errorf("%s: %w", p.name, ErrNotTrained)
	}
	if err := p.f.checkInput(input); err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	out := make([]float64, p.f.horizon)
	for step := range out {
		lags := p.offsets(step)
		sum := 0.0
		for _, lag := range lags {
			v, err := p.f.loadAt(input, lag)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.name, err)
			}
			sum += v
		}
		out[step] = sum / float64(len(lags))
	}
	return out, nil
}
