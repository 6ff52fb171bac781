package monitor

import "time"

// Config holds the detection loop settings.
type Config struct {
	Seed               int64         `mapstructure:"seed"`
	TotalTicks         int           `mapstructure:"total_ticks"`
	TickInterval       time.Duration `mapstructure:"tick_interval"`
	TableWindow        int           `mapstructure:"table_window"`
	ChartWindow        int           `mapstructure:"chart_window"`
	TrainingCorpusSize int           `mapstructure:"training_corpus_size"`
}

// DefaultConfig returns the demo loop shape: 150 ticks at 500ms with a
// 15-row table window and a 50-point chart window.
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		TotalTicks:         150,
		TickInterval:       500 * time.Millisecond,
		TableWindow:        15,
		ChartWindow:        50,
		TrainingCorpusSize: 500,
	}
}
