package dataset

import "fmt"

// Split provides walk-forward fold access over a dataset. Folds are computed
// lazily on demand and the split carries no mutable cursor, so iterating the
// same split twice (or from several goroutines) yields identical folds.
type Split struct {
	ds        Dataset
	trainSpan int
	testSpan  int
	stride    int
}

// RollingSplit slides a window of trainSpan consecutive samples followed by
// the next testSpan samples across the dataset, advancing the window start by
// stride samples per fold.
//
// Because Build emits samples in ascending origin order, every test sample in
// a fold has an origin strictly after every train sample in that fold. That is
// the walk-forward guarantee time-series evaluation requires: training data
// never sees the future it is scored against.
//
// Returns ErrInvalidSpec for non-positive spans or stride, and
// ErrInsufficientData when the dataset cannot fill a single fold.
func RollingSplit(ds Dataset, trainSpan, testSpan, stride int) (*Split, error) {
	if trainSpan < 1 || testSpan < 1 || stride < 1 {
		return nil, fmt.Errorf("%w: trainSpan=%d testSpan=%d stride=%d must all be >= 1",
			ErrInvalidSpec, trainSpan, testSpan, stride)
	}
	if ds.Len() < trainSpan+testSpan {
		return nil, fmt.Errorf("%w: need %d samples, have %d",
			ErrInsufficientData, trainSpan+testSpan, ds.Len())
	}

	return &Split{
		ds:        ds,
		trainSpan: trainSpan,
		testSpan:  testSpan,
		stride:    stride,
	}, nil
}

// Len returns the number of folds.
func (s *Split) Len() int {
	return (s.ds.Len()-(s.trainSpan+s.testSpan))/s.stride + 1
}

// Fold returns the i-th (train, test) pair. Both datasets share the parent's
// backing sample array and carry its framing; callers must treat them as
// read-only. Panics if i is out of range, matching slice indexing semantics.
func (s *Split) Fold(i int) (train, test Dataset) {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("dataset: fold index %d out of range [0,%d)", i, s.Len()))
	}

	start := i * s.stride
	mid := start + s.trainSpan
	end := mid + s.testSpan

	train = s.ds
	train.Samples = s.ds.Samples[start:mid:mid]
	test = s.ds
	test.Samples = s.ds.Samples[mid:end:end]
	return train, test
}
