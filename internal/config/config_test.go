package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := v.GetInt("monitor.seed"); got != 42 {
		t.Errorf("monitor.seed = %d, want 42", got)
	}
	if got := v.GetFloat64("forest.contamination"); got != 0.03 {
		t.Errorf("forest.contamination = %v, want 0.03", got)
	}
	if got := v.GetInt("monitor.total_ticks"); got != 150 {
		t.Errorf("monitor.total_ticks = %d, want 150", got)
	}
	if got := v.GetDuration("monitor.tick_interval"); got != 500*time.Millisecond {
		t.Errorf("monitor.tick_interval = %v, want 500ms", got)
	}
	if got := v.GetInt("monitor.table_window"); got != 15 {
		t.Errorf("monitor.table_window = %d, want 15", got)
	}
	if got := v.GetInt("monitor.chart_window"); got != 50 {
		t.Errorf("monitor.chart_window = %d, want 50", got)
	}
	if got := v.GetString("database.dsn"); got != ":memory:" {
		t.Errorf("database.dsn = %q, want \":memory:\"", got)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thermwatch.yaml")
	content := []byte("monitor:\n  seed: 7\n  total_ticks: 10\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := v.GetInt("monitor.seed"); got != 7 {
		t.Errorf("monitor.seed = %d, want 7", got)
	}
	if got := v.GetInt("monitor.total_ticks"); got != 10 {
		t.Errorf("monitor.total_ticks = %d, want 10", got)
	}
	// Untouched keys keep their defaults.
	if got := v.GetInt("monitor.table_window"); got != 15 {
		t.Errorf("monitor.table_window = %d, want 15", got)
	}
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thermwatch.yaml")
	if err := os.WriteFile(path, []byte("monitor: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
