// Package dashboard serves the embedded monitoring UI and maps records to
// display styles.
package dashboard

import "github.com/probelab/thermwatch/internal/history"

// RowStyle describes how one history record is rendered.
type RowStyle struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Class string `json:"class"`
}

// StyleFor maps a record to its display style. It is a pure function of the
// record's status so table rows, chart points, and the live readout all agree
// on how a verdict looks.
func StyleFor(rec history.Record) RowStyle {
	if rec.Status == history.StatusAnomaly {
		return RowStyle{Label: "Anomaly", Color: "red", Class: "row-anomaly"}
	}
	return RowStyle{Label: "Normal", Color: "green", Class: "row-normal"}
}
