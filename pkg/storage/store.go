package storage

import (
	"context"
	"time"
)

// Snapshot is one published day-ahead forecast for a bidding zone.
type Snapshot struct {
	// Zone identifies the market area the forecast covers, e.g. "ES".
	Zone string `json:"zone"`

	// Model is the name of the model that produced the forecast.
	Model string `json:"model"`

	// GeneratedAt is when the forecast was computed.
	GeneratedAt time.Time `json:"generatedAt"`

	// Origin is the first hour the forecast covers. Values[h] predicts
	// the load at Origin + h hours.
	Origin time.Time `json:"origin"`

	// HorizonHours is the number of hourly steps in Values.
	HorizonHours int `json:"horizonHours"`

	// Values holds the predicted load per hour, in MW.
	Values []float64 `json:"values"`

	// CommittedUnits holds the planned generation commitment per hour.
	// Empty when commitment planning is disabled.
	CommittedUnits []int `json:"committedUnits,omitempty"`

	// TrainSamples records how many samples the model was fit on.
	TrainSamples int `json:"trainSamples"`
}

// Store persists the latest forecast snapshot per zone.
type Store interface {
	Put(ctx context.Context, snapshot Snapshot) error
	GetLatest(ctx context.Context, zone string) (Snapshot, bool, error)
}
