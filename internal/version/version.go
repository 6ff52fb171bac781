// Package version exposes build-time version information.
package version

import "fmt"

// Set via -ldflags at build time.
var (
	Version = "0.1.0"
	Commit  = "dev"
	Date    = "unknown"
)

// Info returns the full version string.
func Info() string {
	return fmt.Sprintf("thermwatch %s (commit %s, built %s)", Version, Commit, Date)
}

// Short returns just the semantic version.
func Short() string {
	return Version
}

// Map returns version fields for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
	}
}
