package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/probelab/thermwatch/internal/forest"
	"github.com/probelab/thermwatch/internal/history"
	"github.com/probelab/thermwatch/internal/sensor"
)

func TestJournal_ReadingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	journal := newTestJournal(t)

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	records := []struct {
		step   int
		value  float64
		status history.Status
		fault  sensor.FaultType
	}{
		{1, 24.8, history.StatusNormal, sensor.FaultNone},
		{2, 25.3, history.StatusNormal, sensor.FaultNone},
		{3, 49.7, history.StatusAnomaly, sensor.FaultHighSpike},
	}
	for _, r := range records {
		rec := history.Record{
			Timestamp: base.Add(time.Duration(r.step) * time.Second),
			Value:     r.value,
			Status:    r.status,
			Fault:     r.fault,
		}
		cls := forest.Classification{IsAnomaly: r.status == history.StatusAnomaly, Score: 0.5, Decision: 0.01}
		if err := journal.InsertReading(ctx, r.step, rec, cls); err != nil {
			t.Fatalf("InsertReading step %d: %v", r.step, err)
		}
	}

	got, err := journal.ListReadings(ctx, 10)
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListReadings returned %d rows, want 3", len(got))
	}
	// Newest first.
	if got[0].Step != 3 || got[2].Step != 1 {
		t.Errorf("readings out of order: steps %d, %d, %d", got[0].Step, got[1].Step, got[2].Step)
	}
	if got[0].Fault != sensor.FaultHighSpike || got[0].Status != history.StatusAnomaly {
		t.Errorf("newest reading = %+v, want anomalous high spike", got[0])
	}

	count, err := journal.CountAnomalies(ctx)
	if err != nil {
		t.Fatalf("CountAnomalies: %v", err)
	}
	if count != 1 {
		t.Errorf("CountAnomalies = %d, want 1", count)
	}
}

func TestJournal_ListReadingsLimit(t *testing.T) {
	ctx := context.Background()
	journal := newTestJournal(t)

	for step := 1; step <= 5; step++ {
		rec := history.Record{Timestamp: time.Now().UTC(), Value: 25, Status: history.StatusNormal, Fault: sensor.FaultNone}
		if err := journal.InsertReading(ctx, step, rec, forest.Classification{}); err != nil {
			t.Fatalf("InsertReading: %v", err)
		}
	}

	got, err := journal.ListReadings(ctx, 2)
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListReadings(2) returned %d rows", len(got))
	}
	if got[0].Step != 5 {
		t.Errorf("first row step = %d, want 5", got[0].Step)
	}
}

func TestJournal_AlertsRoundTrip(t *testing.T) {
	ctx := context.Background()
	journal := newTestJournal(t)

	alert := &Alert{
		ID:          uuid.NewString(),
		Fault:       sensor.FaultLowDrop,
		Severity:    SeverityWarning,
		Message:     "anomaly detected (low_drop): sensor reading 6.50°C",
		Value:       6.5,
		Consecutive: 1,
		TriggeredAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	if err := journal.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("InsertAlert: %v", err)
	}

	alerts, err := journal.ListAlerts(ctx, 10)
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("ListAlerts returned %d rows, want 1", len(alerts))
	}
	got := alerts[0]
	if got.ID != alert.ID || got.Fault != alert.Fault || got.Message != alert.Message {
		t.Errorf("alert round trip mismatch: got %+v", got)
	}
	if got.ResolvedAt != nil {
		t.Error("unresolved alert has ResolvedAt set")
	}

	resolvedAt := alert.TriggeredAt.Add(5 * time.Second)
	if err := journal.ResolveAlert(ctx, alert.ID, resolvedAt); err != nil {
		t.Fatalf("ResolveAlert: %v", err)
	}

	alerts, err = journal.ListAlerts(ctx, 10)
	if err != nil {
		t.Fatalf("ListAlerts after resolve: %v", err)
	}
	if alerts[0].ResolvedAt == nil {
		t.Fatal("alert not marked resolved")
	}
	if !alerts[0].ResolvedAt.Equal(resolvedAt) {
		t.Errorf("ResolvedAt = %v, want %v", alerts[0].ResolvedAt, resolvedAt)
	}
}
