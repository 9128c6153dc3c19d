package dataset

import "errors"

// Errors returned by Build and RollingSplit. All of them are deterministic
// consequences of the input shape; none are transient or retryable.
var (
	// ErrInvalidSpec indicates a malformed lag or horizon configuration:
	// an empty lag set, a non-positive offset, an offset overlapping the
	// label window, or a non-positive horizon/span/stride.
	ErrInvalidSpec = errors.New("invalid dataset spec")

	// ErrEmptySeries indicates the series is empty or shorter than the
	// minimum span required by the lag set and horizon.
	ErrEmptySeries = errors.New("series too short for requested framing")

	// ErrIrregularCadence indicates two consecutive observations are not
	// exactly one hour apart. Gaps must be pre-marked as missing values,
	// never omitted from the sequence.
	ErrIrregularCadence = errors.New("series cadence is not hourly")

	// ErrInsufficientData indicates the dataset has fewer samples than
	// one train+test fold requires.
	ErrInsufficientData = errors.New("not enough samples for split")
)
