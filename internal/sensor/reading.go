// Package sensor simulates a single temperature sensor: a deterministic
// reading generator with an injected fault schedule, and the synthetic
// labeled corpus the anomaly model trains on.
package sensor

import "time"

// FaultType labels the synthetic failure mode injected into a reading.
type FaultType string

const (
	FaultNone       FaultType = "none"
	FaultHighSpike  FaultType = "high_spike"
	FaultLowDrop    FaultType = "low_drop"
	FaultStuckValue FaultType = "stuck_value"
)

// Reading is one sensor sample. Immutable once produced.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Fault     FaultType `json:"fault"`
}
