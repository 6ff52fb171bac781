package ws

import (
	"time"

	"github.com/probelab/thermwatch/internal/dashboard"
	"github.com/probelab/thermwatch/internal/history"
	"github.com/probelab/thermwatch/internal/monitor"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageTick           MessageType = "monitor.tick"
	MessageAlertTriggered MessageType = "monitor.alert_triggered"
	MessageAlertResolved  MessageType = "monitor.alert_resolved"
	MessageCompleted      MessageType = "monitor.completed"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// TickData is the payload for monitor.tick messages. It carries the full
// per-tick snapshot so a freshly connected browser can render without
// replaying earlier messages, plus the status-to-style index the browser
// uses for rows, chart points, and the live readout.
type TickData struct {
	Tick   *monitor.TickEvent                    `json:"tick"`
	Styles map[history.Status]dashboard.RowStyle `json:"styles"`
}

// styleIndex enumerates the display style for every record status, keeping
// the browser's rendering in lockstep with the server-side mapping.
func styleIndex() map[history.Status]dashboard.RowStyle {
	idx := make(map[history.Status]dashboard.RowStyle, 2)
	for _, st := range []history.Status{history.StatusNormal, history.StatusAnomaly} {
		idx[st] = dashboard.StyleFor(history.Record{Status: st})
	}
	return idx
}

// AlertData is the payload for both alert lifecycle messages.
type AlertData struct {
	Alert *monitor.Alert `json:"alert"`
}

// CompletedData is the payload for monitor.completed messages.
type CompletedData struct {
	Ticks     int   `json:"ticks"`
	Anomalies int64 `json:"anomalies"`
}
