package eval

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"loadcast/pkg/dataset"
	"loadcast/pkg/models"
)

var testStart = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

func hourlySeries(n int, load func(i int) float64) dataset.Series {
	s := make(dataset.Series, n)
	for i := range s {
		s[i] = dataset.Observation{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Load:      load(i),
		}
	}
	return s
}

func dailyDataset(t *testing.T, days int, load func(i int) float64) dataset.Dataset {
	t.Helper()
	ds, err := dataset.Build(hourlySeries(days*24, load), lagRange(1, 24), 24, dataset.OriginDaily)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return ds
}

func lagRange(from, to int) dataset.LagSpec {
	lags := make(dataset.LagSpec, 0, to-from+1)
	for lag := from; lag <= to; lag++ {
		lags = append(lags, lag)
	}
	return lags
}

func TestEvaluate_PerfectModelScoresZero(t *testing.T) {
	// A perfectly daily-periodic series makes previous-day persistence exact.
	daily := func(i int) float64 { return 1000 + 200*math.Sin(2*math.Pi*float64(i%24)/24) }
	ds := dailyDataset(t, 20, daily)

	report, err := Evaluate(context.Background(), models.NewPreviousDay(), ds, 10, 2, 2)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if report.Model != "previous-day" {
		t.Errorf("Model = %q", report.Model)
	}
	if report.RMSE > 1e-9 || report.MAE > 1e-9 {
		t.Errorf("RMSE = %v, MAE = %v, want 0", report.RMSE, report.MAE)
	}
	if len(report.PerStep) != 24 {
		t.Fatalf("len(PerStep) = %d, want 24", len(report.PerStep))
	}
	for _, step := range report.PerStep {
		if step.RMSE > 1e-9 {
			t.Errorf("step %d RMSE = %v, want 0", step.Step, step.RMSE)
		}
	}
}

func TestEvaluate_ConstantBiasShowsExactly(t *testing.T) {
	// On a linear trend, previous-day persistence is off by exactly 24 at
	// every step of every sample, so RMSE == MAE == 24 everywhere.
	ds := dailyDataset(t, 20, func(i int) float64 { return float64(i) })

	report, err := Evaluate(context.Background(), models.NewPreviousDay(), ds, 10, 2, 2)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if math.Abs(report.RMSE-24) > 1e-9 {
		t.Errorf("RMSE = %v, want 24", report.RMSE)
	}
	if math.Abs(report.MAE-24) > 1e-9 {
		t.Errorf("MAE = %v, want 24", report.MAE)
	}
	for _, step := range report.PerStep {
		if math.Abs(step.RMSE-24) > 1e-9 {
			t.Errorf("step %d RMSE = %v, want 24", step.Step, step.RMSE)
		}
	}
}

func TestEvaluate_FoldAndSampleCounts(t *testing.T) {
	ds := dailyDataset(t, 20, func(i int) float64 { return float64(i) })
	// 19 daily samples (first day consumed by lag 24): folds at stride 2
	// with 10+2 span -> (19-12)/2+1 = 4 folds, 2 test samples each.
	report, err := Evaluate(context.Background(), models.NewPreviousDay(), ds, 10, 2, 2)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.Folds != 4 {
		t.Errorf("Folds = %d, want 4", report.Folds)
	}
	if report.Samples != 8 {
		t.Errorf("Samples = %d, want 8", report.Samples)
	}
}

func TestEvaluate_InsufficientData(t *testing.T) {
	ds := dailyDataset(t, 5, func(i int) float64 { return float64(i) })

	_, err := Evaluate(context.Background(), models.NewPreviousDay(), ds, 10, 2, 2)
	if !errors.Is(err, dataset.ErrInsufficientData) {
		t.Errorf("Evaluate() error = %v, want ErrInsufficientData", err)
	}
}

func TestEvaluate_CanceledContext(t *testing.T) {
	ds := dailyDataset(t, 20, func(i int) float64 { return float64(i) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Evaluate(ctx, models.NewPreviousDay(), ds, 10, 2, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error = %v, want context.Canceled", err)
	}
}

func TestWriteCSV(t *testing.T) {
	reports := []Report{
		{
			Model:   "previous-day",
			Folds:   2,
			Samples: 4,
			PerStep: []StepError{{Step: 0, RMSE: 1.5, MAE: 1.25}, {Step: 1, RMSE: 2, MAE: 1.75}},
			RMSE:    1.768,
			MAE:     1.5,
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, reports); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	got := sb.String()
	wantLines := []string{
		"model,step,rmse,mae",
		"previous-day,0,1.500,1.250",
		"previous-day,1,2.000,1.750",
		"previous-day,overall,1.768,1.500",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("output missing line %q:\n%s", line, got)
		}
	}
}
