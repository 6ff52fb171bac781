package monitor

import (
	"database/sql"

	"github.com/probelab/thermwatch/internal/store"
)

// Migrations returns the monitor's journal schema.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create monitor tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS monitor_readings (
						id          INTEGER PRIMARY KEY AUTOINCREMENT,
						step        INTEGER NOT NULL,
						value       REAL NOT NULL,
						status      TEXT NOT NULL,
						fault       TEXT NOT NULL DEFAULT 'none',
						score       REAL NOT NULL DEFAULT 0,
						decision    REAL NOT NULL DEFAULT 0,
						recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_monitor_readings_step ON monitor_readings(step)`,

					`CREATE TABLE IF NOT EXISTS monitor_alerts (
						id           TEXT PRIMARY KEY,
						fault        TEXT NOT NULL,
						severity     TEXT NOT NULL DEFAULT 'warning',
						message      TEXT NOT NULL DEFAULT '',
						value        REAL NOT NULL,
						consecutive  INTEGER NOT NULL DEFAULT 1,
						triggered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						resolved_at  DATETIME
					)`,
					`CREATE INDEX IF NOT EXISTS idx_monitor_alerts_triggered ON monitor_alerts(triggered_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
