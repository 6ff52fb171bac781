package monitor

import (
	"github.com/probelab/thermwatch/internal/forest"
	"github.com/probelab/thermwatch/internal/history"
	"github.com/probelab/thermwatch/internal/sensor"
)

// Event topics published by the monitor.
const (
	TopicTick           = "monitor.tick"
	TopicAlertTriggered = "monitor.alert.triggered"
	TopicAlertResolved  = "monitor.alert.resolved"
	TopicCompleted      = "monitor.completed"
)

// TickEvent is the per-tick snapshot handed to display collaborators. It
// carries everything a renderer needs: the latest reading, its verdict, the
// active alert if any, and the two trailing windows.
type TickEvent struct {
	Step           int                   `json:"step"`
	Reading        sensor.Reading        `json:"reading"`
	Status         history.Status        `json:"status"`
	ColorHint      string                `json:"color_hint"`
	Classification forest.Classification `json:"classification"`
	Alert          *Alert                `json:"alert,omitempty"`
	Table          []history.Record      `json:"table"`
	Chart          []history.Record      `json:"chart"`
}

// CompletedEvent is published once when the loop finishes its full run.
type CompletedEvent struct {
	Ticks     int   `json:"ticks"`
	Anomalies int64 `json:"anomalies"`
}
