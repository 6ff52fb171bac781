package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/probelab/thermwatch/internal/forest"
	"github.com/probelab/thermwatch/internal/history"
	"github.com/probelab/thermwatch/internal/sensor"
)

// JournalReading is one reading as recorded in the run journal.
type JournalReading struct {
	ID         int64            `json:"id"`
	Step       int              `json:"step"`
	Value      float64          `json:"value"`
	Status     history.Status   `json:"status"`
	Fault      sensor.FaultType `json:"fault"`
	Score      float64          `json:"score"`
	Decision   float64          `json:"decision"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// Journal provides database access for the monitor's run journal.
type Journal struct {
	db *sql.DB
}

// NewJournal creates a Journal backed by the given database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// InsertReading records one classified reading.
func (j *Journal) InsertReading(ctx context.Context, step int, rec history.Record, cls forest.Classification) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO monitor_readings (step, value, status, fault, score, decision, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		step, rec.Value, string(rec.Status), string(rec.Fault), cls.Score, cls.Decision, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// ListReadings returns the most recent readings, newest first.
func (j *Journal) ListReadings(ctx context.Context, limit int) ([]JournalReading, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, step, value, status, fault, score, decision, recorded_at
		FROM monitor_readings ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []JournalReading
	for rows.Next() {
		var r JournalReading
		var status, fault string
		if err := rows.Scan(
			&r.ID, &r.Step, &r.Value, &status, &fault, &r.Score, &r.Decision, &r.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		r.Status = history.Status(status)
		r.Fault = sensor.FaultType(fault)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// CountAnomalies returns the number of journaled anomalous readings.
func (j *Journal) CountAnomalies(ctx context.Context) (int64, error) {
	var count int64
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM monitor_readings WHERE status = ?`,
		string(history.StatusAnomaly),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count anomalies: %w", err)
	}
	return count, nil
}

// InsertAlert records a newly triggered alert.
func (j *Journal) InsertAlert(ctx context.Context, a *Alert) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO monitor_alerts (id, fault, severity, message, value, consecutive, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Fault), a.Severity, a.Message, a.Value, a.Consecutive, a.TriggeredAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ResolveAlert marks an alert resolved at the given time.
func (j *Journal) ResolveAlert(ctx context.Context, id string, at time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE monitor_alerts SET resolved_at = ? WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	return nil
}

// ListAlerts returns the most recent alerts, newest first.
func (j *Journal) ListAlerts(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, fault, severity, message, value, consecutive, triggered_at, resolved_at
		FROM monitor_alerts ORDER BY triggered_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var fault string
		var resolved sql.NullTime
		if err := rows.Scan(
			&a.ID, &fault, &a.Severity, &a.Message, &a.Value, &a.Consecutive, &a.TriggeredAt, &resolved,
		); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		a.Fault = sensor.FaultType(fault)
		if resolved.Valid {
			t := resolved.Time
			a.ResolvedAt = &t
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
