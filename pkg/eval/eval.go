// Package eval scores forecasting models with rolling-origin (walk-forward)
// evaluation.
//
// The evaluator never lets a model see the fold it is scored against: folds
// come from dataset.RollingSplit, whose test origins are always strictly
// after the training origins. Errors are reported per horizon step, since
// the day-ahead question is rarely "how good is the model" but "which hours
// of the day does it get wrong", and as a single overall figure for ranking
// models against each other.
package eval

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"loadcast/pkg/dataset"
	"loadcast/pkg/models"
)

// StepError holds the error metrics of one horizon step, aggregated over
// every test sample in every fold.
type StepError struct {
	Step int
	RMSE float64
	MAE  float64
}

// Report is the outcome of evaluating one model over all folds.
type Report struct {
	Model   string
	Folds   int
	Samples int // test samples scored across all folds
	PerStep []StepError
	RMSE    float64 // over all steps and samples
	MAE     float64
}

// Evaluate runs walk-forward evaluation: for each fold the model is retrained
// on the train subset and scored on every test sample. The fold geometry is
// the caller's choice; stride == testSpan gives the classic non-overlapping
// walk-forward scheme, stride < testSpan overlaps test windows.
//
// Errors from dataset.RollingSplit pass through unchanged, so callers can
// test for dataset.ErrInsufficientData.
func Evaluate(ctx context.Context, m models.Model, ds dataset.Dataset, trainSpan, testSpan, stride int) (Report, error) {
	split, err := dataset.RollingSplit(ds, trainSpan, testSpan, stride)
	if err != nil {
		return Report{}, err
	}

	sq := make([][]float64, ds.Horizon)  // squared errors per step
	abs := make([][]float64, ds.Horizon) // absolute errors per step

	samples := 0
	for i := 0; i < split.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		train, test := split.Fold(i)
		if err := m.Train(ctx, train); err != nil {
			return Report{}, fmt.Errorf("fold %d: train %s: %w", i, m.Name(), err)
		}

		for _, sample := range test.Samples {
			pred, err := m.Predict(ctx, sample.Input)
			if err != nil {
				return Report{}, fmt.Errorf("fold %d: predict %s at %s: %w",
					i, m.Name(), sample.Origin.Format("2006-01-02T15"), err)
			}
			if len(pred) != len(sample.Label) {
				return Report{}, fmt.Errorf("fold %d: %s predicted %d steps, want %d",
					i, m.Name(), len(pred), len(sample.Label))
			}
			for h := range pred {
				diff := pred[h] - sample.Label[h]
				sq[h] = append(sq[h], diff*diff)
				abs[h] = append(abs[h], math.Abs(diff))
			}
			samples++
		}
	}

	report := Report{
		Model:   m.Name(),
		Folds:   split.Len(),
		Samples: samples,
		PerStep: make([]StepError, ds.Horizon),
	}

	var allSq, allAbs []float64
	for h := 0; h < ds.Horizon; h++ {
		report.PerStep[h] = StepError{
			Step: h,
			RMSE: math.Sqrt(stat.Mean(sq[h], nil)),
			MAE:  stat.Mean(abs[h], nil),
		}
		allSq = append(allSq, sq[h]...)
		allAbs = append(allAbs, abs[h]...)
	}
	report.RMSE = math.Sqrt(stat.Mean(allSq, nil))
	report.MAE = stat.Mean(allAbs, nil)

	return report, nil
}
