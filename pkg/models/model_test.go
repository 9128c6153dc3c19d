package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"loadcast/pkg/dataset"
)

var testStart = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

// trendSeries builds an hourly series with load equal to the hour index.
func trendSeries(n int) dataset.Series {
	s := make(dataset.Series, n)
	for i := range s {
		s[i] = dataset.Observation{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Load:      float64(i),
		}
	}
	return s
}

// lagRange returns the lag set {from..to}.
func lagRange(from, to int) dataset.LagSpec {
	lags := make(dataset.LagSpec, 0, to-from+1)
	for lag := from; lag <= to; lag++ {
		lags = append(lags, lag)
	}
	return lags
}

func buildOrFatal(t *testing.T, series dataset.Series, lags dataset.LagSpec, horizon int, policy dataset.OriginPolicy) dataset.Dataset {
	t.Helper()
	ds, err := dataset.Build(series, lags, horizon, policy)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ds.Len() == 0 {
		t.Fatal("Build() produced no samples")
	}
	return ds
}

func TestNew_Factory(t *testing.T) {
	tests := []struct {
		name      string
		modelName string
		want      string
		wantErr   bool
	}{
		{"previous day", "previous-day", "previous-day", false},
		{"moving average default days", "moving-average", "moving-average-3d", false},
		{"year ago", "year-ago", "year-ago", false},
		{"ridge", "ridge", "ridge", false},
		{"unknown", "prophet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.modelName, Options{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", m.Name(), tt.want)
			}
		})
	}
}

func TestPreviousDay_PredictsYesterday(t *testing.T) {
	ds := buildOrFatal(t, trendSeries(24*4), lagRange(1, 24), 24, dataset.OriginDaily)

	m := NewPreviousDay()
	ctx := context.Background()
	if err := m.Train(ctx, ds); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	for _, sample := range ds.Samples {
		got, err := m.Predict(ctx, sample.Input)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		if len(got) != 24 {
			t.Fatalf("len(Predict()) = %d, want 24", len(got))
		}
		for h, v := range got {
			// With load == hour index, yesterday's hour h is exactly
			// 24 below the label.
			want := sample.Label[h] - 24
			if v != want {
				t.Errorf("step %d = %v, want %v", h, v, want)
			}
		}
	}
}

func TestMovingAverage_AveragesTrailingDays(t *testing.T) {
	ds := buildOrFatal(t, trendSeries(24*5), lagRange(1, 72), 24, dataset.OriginDaily)

	m := NewMovingAverage(3)
	ctx := context.Background()
	if err := m.Train(ctx, ds); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	sample := ds.Samples[0]
	got, err := m.Predict(ctx, sample.Input)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for h, v := range got {
		// Mean of the same hour 1, 2 and 3 days back on a linear trend
		// is the value exactly 2 days back.
		want := sample.Label[h] - 48
		if v != want {
			t.Errorf("step %d = %v, want %v", h, v, want)
		}
	}
}

func TestYearAgo_PredictsSameDayLastYear(t *testing.T) {
	ds := buildOrFatal(t, trendSeries(hoursPerYear+24), lagRange(8737, 8760), 24, dataset.OriginHourly)

	m := NewYearAgo()
	ctx := context.Background()
	if err := m.Train(ctx, ds); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	sample := ds.Samples[0]
	got, err := m.Predict(ctx, sample.Input)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for h, v := range got {
		want := sample.Label[h] - float64(hoursPerYear)
		if v != want {
			t.Errorf("step %d = %v, want %v", h, v, want)
		}
	}
}

func TestPersistence_TrainRejectsMissingLags(t *testing.T) {
	// Previous-day needs lags 1..24 for a 24h horizon; this framing only
	// carries lag 1.
	ds := buildOrFatal(t, trendSeries(24*3), dataset.LagSpec{1}, 24, dataset.OriginDaily)

	m := NewPreviousDay()
	if err := m.Train(context.Background(), ds); err == nil {
		t.Fatal("Train() = nil, want error for missing lags")
	}
}

func TestPersistence_PredictBeforeTrain(t *testing.T) {
	m := NewPreviousDay()
	_, err := m.Predict(context.Background(), []float64{1, 2, 3})
	if !errors.Is(err, ErrNotTrained) {
		t.Errorf("Predict() error = %v, want ErrNotTrained", err)
	}
}

func TestRidge_RecoversLinearRelation(t *testing.T) {
	// With load == hour index, label step h is exactly lag-1 input + 1 + h.
	// A lightly regularized ridge fit should recover that to high accuracy.
	ds := buildOrFatal(t, trendSeries(24*20), dataset.LagSpec{1}, 24, dataset.OriginHourly)

	m := NewRidge(1e-6)
	ctx := context.Background()
	if err := m.Train(ctx, ds); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	sample := ds.Samples[ds.Len()-1]
	got, err := m.Predict(ctx, sample.Input)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for h, v := range got {
		want := sample.Label[h]
		if diff := v - want; diff > 0.01 || diff < -0.01 {
			t.Errorf("step %d = %v, want %v (±0.01)", h, v, want)
		}
	}
}

func TestRidge_PredictBeforeTrain(t *testing.T) {
	m := NewRidge(1)
	_, err := m.Predict(context.Background(), []float64{1})
	if !errors.Is(err, ErrNotTrained) {
		t.Errorf("Predict() error = %v, want ErrNotTrained", err)
	}
}

func TestPredict_InputWidthMismatch(t *testing.T) {
	ds := buildOrFatal(t, trendSeries(24*4), lagRange(1, 24), 24, dataset.OriginDaily)

	m := NewPreviousDay()
	ctx := context.Background()
	if err := m.Train(ctx, ds); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	_, err := m.Predict(ctx, []float64{1, 2})
	if err == nil {
		t.Fatal("Predict() = nil, want error for wrong input width")
	}
}

func TestTrain_RespectsContextCancellation(t *testing.T) {
	ds := buildOrFatal(t, trendSeries(24*4), lagRange(1, 24), 24, dataset.OriginDaily)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewPreviousDay().Train(ctx, ds); !errors.Is(err, context.Canceled) {
		t.Errorf("Train() error = %v, want context.Canceled", err)
	}
}
