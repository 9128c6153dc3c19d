package schedule

import (
	"reflect"
	"testing"
)

func TestCommit_Basic(t *testing.T) {
	p := Policy{
		UnitCapacityMW:         500,
		ReserveMargin:          1.2,
		MinUnits:               1,
		MaxUnits:               100,
		RampUpFactorPerHour:    2.0,
		RampDownPercentPerHour: 50,
		LookaheadHours:         0,
		RoundingMode:           "ceil",
	}
	forecast := []float64{1200, 1300, 1250, 1400, 1000}
	got := Commit(2, forecast, p)
	// h=0 uses 1200 -> 1200*1.2/500 = 2.88 -> ceil = 3
	// h=1 uses 1300 -> 1300*1.2/500 = 3.12 -> ceil = 4
	// h=2 uses 1250 -> 1250*1.2/500 = 3.00 -> ceil = 3
	// h=3 uses 1400 -> 1400*1.2/500 = 3.36 -> ceil = 4
	// h=4 uses 1000 -> 1000*1.2/500 = 2.40 -> ceil = 3
	want := []int{3, 4, 3, 4, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCommit_RampClamps(t *testing.T) {
	p := Policy{
		UnitCapacityMW:         1000,
		ReserveMargin:          1.2,
		MinUnits:               1,
		MaxUnits:               100,
		RampUpFactorPerHour:    1.5,
		RampDownPercentPerHour: 25,
		LookaheadHours:         0,
		RoundingMode:           "ceil",
	}
	// Raw (with reserve) -> units before clamps:
	// 0 => 0; 500=>0.6; 5000=>6; 2000=>2.4; 500=>0.6
	forecast := []float64{0, 500, 5000, 2000, 500}
	got := Commit(2, forecast, p)
	// Hour 0: prev=2; raw ceil=1 -> ramp-down clamp floor(2*0.75)=1 -> 1
	// Hour 1: raw ceil=1 -> prev=1, unchanged -> 1
	// Hour 2: raw ceil=6 -> prev=1, ramp-up clamp ceil(1*1.5)=2 -> 2
	// Hour 3: raw ceil=3 -> prev=2, ramp-up clamp ceil(2*1.5)=3 -> 3
	// Hour 4: raw ceil=1 -> prev=3, ramp-down clamp floor(3*0.75)=2 -> 2
	want := []int{1, 1, 2, 3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCommit_Bounds(t *testing.T) {
	p := Policy{
		UnitCapacityMW:         100,
		ReserveMargin:          1.0,
		MinUnits:               2,
		MaxUnits:               5,
		RampUpFactorPerHour:    10.0,
		RampDownPercentPerHour: 100,
		LookaheadHours:         0,
		RoundingMode:           "ceil",
	}
	forecast := []float64{0, 10, 100, 10000}
	got := Commit(0, forecast, p)
	// min bound enforces must-run 2; max bound caps at fleet size 5
	want := []int{2, 2, 2, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCommit_Lookahead(t *testing.T) {
	p := Policy{
		UnitCapacityMW:         1000,
		ReserveMargin:          1.0,
		MinUnits:               0,
		MaxUnits:               0,
		RampUpFactorPerHour:    10.0,
		RampDownPercentPerHour: 100,
		LookaheadHours:         2,
		RoundingMode:           "ceil",
	}
	forecast := []float64{1000, 1000, 1000, 9000, 1000, 1000}
	got := Commit(0, forecast, p)
	// The hour-3 peak (9 units) is visible two hours ahead, so commitment
	// rises at hour 1 already.
	want := []int{1, 9, 9, 9, 1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCommit_NegativeAndEmpty(t *testing.T) {
	if got := Commit(0, nil, Policy{}); got != nil {
		t.Fatalf("empty forecast: got %v, want nil", got)
	}

	p := Policy{
		UnitCapacityMW:         100,
		ReserveMargin:          1.0,
		RampUpFactorPerHour:    10.0,
		RampDownPercentPerHour: 100,
	}
	got := Commit(0, []float64{-50, 250}, p)
	// Negative load is treated as zero demand.
	want := []int{0, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
