// Package config loads ThermWatch configuration from file, environment,
// and defaults, and builds the process logger from it.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file path (or the default search
// locations when empty) and environment variables.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Database (run journal; in-memory by default, the process is ephemeral)
	v.SetDefault("database.dsn", ":memory:")

	// Detection pipeline
	v.SetDefault("monitor.seed", 42)
	v.SetDefault("monitor.total_ticks", 150)
	v.SetDefault("monitor.tick_interval", "500ms")
	v.SetDefault("monitor.table_window", 15)
	v.SetDefault("monitor.chart_window", 50)
	v.SetDefault("monitor.training_corpus_size", 500)

	// Anomaly model
	v.SetDefault("forest.contamination", 0.03)
	v.SetDefault("forest.trees", 100)
	v.SetDefault("forest.subsample_size", 256)

	// Sensor simulation
	v.SetDefault("sensor.baseline_mean", 25.0)
	v.SetDefault("sensor.baseline_std_dev", 2.0)
	v.SetDefault("sensor.baseline_min", 20.0)
	v.SetDefault("sensor.baseline_max", 30.0)
	v.SetDefault("sensor.high_spike_min", 45.0)
	v.SetDefault("sensor.high_spike_max", 55.0)
	v.SetDefault("sensor.low_drop_min", 5.0)
	v.SetDefault("sensor.low_drop_max", 10.0)
	v.SetDefault("sensor.stuck_value", 23.0)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("thermwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/thermwatch")
	}

	// Environment variable support: TW_SERVER_PORT=9090
	v.SetEnvPrefix("TW")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
