package config

import (
	"context"
	"testing"
	"time"

	"loadcast/pkg/dataset"
	"loadcast/pkg/models"
)

func TestParseLags(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    dataset.LagSpec
		wantErr bool
	}{
		{
			name:  "simple list",
			input: "1,2,24",
			want:  dataset.LagSpec{1, 2, 24},
		},
		{
			name:  "range",
			input: "1-4",
			want:  dataset.LagSpec{1, 2, 3, 4},
		},
		{
			name:  "mixed with duplicates",
			input: "24,1-3,2",
			want:  dataset.LagSpec{1, 2, 3, 24},
		},
		{
			name:  "whitespace tolerated",
			input: " 1 , 2 - 3 ",
			want:  dataset.LagSpec{1, 2, 3},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "inverted range",
			input:   "10-5",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "1,abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLags(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLags(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLags(%q) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLags(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseLags(%q)[%d] = %d, want %d", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// The default lag set must frame every model the forecaster can start with
// (except year-ago, which needs a year of history and its own lag setup).
// The 3-day moving average reaches back to lag 3*24 = 72 for its first step.
func TestDefaultLagsFrameDefaultModels(t *testing.T) {
	lags, err := ParseLags(defaultLags)
	if err != nil {
		t.Fatalf("ParseLags(defaultLags) error = %v", err)
	}

	const horizon = 24
	hours := lags.Max() + horizon
	series := make(dataset.Series, hours)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range series {
		series[i] = dataset.Observation{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Load:      20000 + float64(i%24)*100,
		}
	}

	ds, err := dataset.Build(series, lags, horizon, dataset.OriginDaily)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ds.Len() == 0 {
		t.Fatal("default lags produced no samples")
	}

	for _, name := range []string{"previous-day", "moving-average", "ridge"} {
		model, err := models.New(name, models.Options{MovingAverageDays: 3})
		if err != nil {
			t.Fatalf("models.New(%q) error = %v", name, err)
		}
		if err := model.Train(context.Background(), ds); err != nil {
			t.Errorf("Train(%s) with default lags failed: %v", name, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Zone:         "ES",
			Lags:         dataset.LagSpec{1, 24, 168},
			HorizonHours: 24,
			WindowDays:   30,
			Storage:      "memory",
			Interval:     time.Hour,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty zone", func(c *Config) { c.Zone = "" }},
		{"zero lag", func(c *Config) { c.Lags = dataset.LagSpec{0, 24} }},
		{"zero horizon", func(c *Config) { c.HorizonHours = 0 }},
		{"window too short", func(c *Config) { c.WindowDays = 7 }},
		{"unknown storage", func(c *Config) { c.Storage = "postgres" }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
