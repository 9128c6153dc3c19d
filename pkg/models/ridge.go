package models

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"loadcast/pkg/dataset"
)

// Ridge is a regularized linear model mapping the full lag input vector to
// all horizon steps at once. One weight column is fit per horizon step by
// solving the penalized normal equations
//
//	(XᵀX + λI) W = XᵀY
//
// with gonum. It is the simplest trainable consumer of the shared sample
// framing and serves as the strong-but-cheap reference that the persistence
// models are benchmarked against; heavier architectures live behind the same
// Model interface in external services.
type Ridge struct {
	lambda  float64
	f       framing
	weights *mat.Dense // (width+1) x horizon, row 0 is the bias
	trained bool
}

// NewRidge creates a ridge regression model with the given L2 penalty.
// Panics if lambda is negative; lambda 0 degrades to ordinary least squares,
// which can fail on collinear lag sets.
func NewRidge(lambda float64) *Ridge {
	if lambda < 0 {
		panic("ridge lambda must be >= 0")
	}
	return &Ridge{lambda: lambda}
}

func (r *Ridge) Name() string { return "ridge" }

// Train fits the weights on the training samples.
func (r *Ridge) Train(ctx context.Context, train dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := newFraming(train)
	if err != nil {
		return fmt.Errorf("ridge: %w", err)
	}

	n := train.Len()
	p := f.width + 1 // bias column first
	if n == 0 {
		return fmt.Errorf("ridge: training set is empty")
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewDense(n, f.horizon, nil)
	for i, sample := range train.Samples {
		x.Set(i, 0, 1)
		for j, v := range sample.Input {
			x.Set(i, j+1, v)
		}
		for h, v := range sample.Label {
			y.Set(i, h, v)
		}
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 1; j < p; j++ { // bias stays unpenalized
		xtx.Set(j, j, xtx.At(j, j)+r.lambda)
	}

	var xty mat.Dense
	xty.Mul(x.T(), y)

	var w mat.Dense
	if err := w.Solve(&xtx, &xty); err != nil {
		// A Condition error flags poor conditioning but still carries a
		// usable solution; anything else means the system is singular.
		if _, ok := err.(mat.Condition); !ok {
			return fmt.Errorf("ridge: normal equations are singular: %w", err)
		}
	}

	r.f = f
	r.weights = &w
	r.trained = true
	return nil
}

// Predict applies the fitted weights to one input vector.
func (r *Ridge) Predict(ctx context.Context, input []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.trained {
		return nil, fmt.Errorf("ridge: %w", ErrNotTrained)
	}
	if err := r.f.checkInput(input); err != nil {
		return nil, fmt.Errorf("ridge: %w", err)
	}

	out := make([]float64, r.f.horizon)
	for h := range out {
		v := r.weights.At(0, h)
		for j, xj := range input {
			v += r.weights.At(j+1, h) * xj
		}
		out[h] = v
	}
	return out, nil
}
