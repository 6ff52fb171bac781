// Package monitor runs the anomaly-detection pipeline: it trains the model
// at construction, then drives the generate → classify → record → alert →
// publish loop once per tick until the configured run length is reached or
// the host cancels the context.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/probelab/thermwatch/internal/dashboard"
	"github.com/probelab/thermwatch/internal/event"
	"github.com/probelab/thermwatch/internal/forest"
	"github.com/probelab/thermwatch/internal/history"
	"github.com/probelab/thermwatch/internal/sensor"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ErrAlreadyStarted reports a second Run call on the same session.
var ErrAlreadyStarted = fmt.Errorf("monitor: session already started")

// Session owns the trained model, the reading generator, and the rolling
// history for one monitoring run. It is handed explicitly to the loop and
// to display collaborators; there is no process-wide pipeline state.
type Session struct {
	cfg     Config
	gen     *sensor.Generator
	model   *forest.Forest
	hist    *history.Ring
	alerter *Alerter
	journal *Journal
	bus     *event.Bus
	logger  *zap.Logger

	mu        sync.RWMutex
	state     State
	step      int
	last      *TickEvent
	anomalies int64
}

// NewSession builds the corpus, trains the model, and prepares the loop.
// Training failures (degenerate corpus, misconfigured fault ranges) surface
// here, before the loop ever starts.
func NewSession(cfg Config, sensorCfg sensor.Config, forestCfg forest.Config, journal *Journal, bus *event.Bus, logger *zap.Logger) (*Session, error) {
	corpus, err := sensor.BuildCorpus(sensorCfg, cfg.TrainingCorpusSize, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("build training corpus: %w", err)
	}

	model := forest.New(forestCfg, cfg.Seed)
	if err := model.Train(corpus); err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	gen, err := sensor.NewGenerator(sensorCfg, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	capacity := cfg.ChartWindow
	if cfg.TableWindow > capacity {
		capacity = cfg.TableWindow
	}

	logger.Info("anomaly model trained",
		zap.Int("corpus_size", len(corpus)),
		zap.Float64("contamination", forestCfg.Contamination),
		zap.Float64("score_threshold", model.Threshold()),
	)

	return &Session{
		cfg:     cfg,
		gen:     gen,
		model:   model,
		hist:    history.NewRing(capacity),
		alerter: NewAlerter(journal, bus, logger.Named("alerter")),
		journal: journal,
		bus:     bus,
		logger:  logger,
	}, nil
}

// Run drives the detection loop to completion. It blocks until all ticks
// have run, the context is cancelled, or a tick fails. A tick failure ends
// the run; the host restarts the whole run instead of retrying.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Info("detection loop started",
		zap.Int("total_ticks", s.cfg.TotalTicks),
		zap.Duration("tick_interval", s.cfg.TickInterval),
	)

	defer func() {
		s.mu.Lock()
		s.state = StateFinished
		s.mu.Unlock()
	}()

	for step := 1; step <= s.cfg.TotalTicks; step++ {
		// Stop signal is honored at the top of each tick so a host can
		// terminate the run without leaving the history mid-append.
		select {
		case <-ctx.Done():
			s.logger.Info("detection loop stopped", zap.Int("completed_ticks", step-1))
			return ctx.Err()
		default:
		}

		if err := s.tick(ctx, step); err != nil {
			return fmt.Errorf("tick %d: %w", step, err)
		}

		if step < s.cfg.TotalTicks {
			select {
			case <-ctx.Done():
				s.logger.Info("detection loop stopped", zap.Int("completed_ticks", step))
				return ctx.Err()
			case <-time.After(s.cfg.TickInterval):
			}
		}
	}

	s.mu.RLock()
	anomalies := s.anomalies
	s.mu.RUnlock()

	s.logger.Info("detection loop finished",
		zap.Int("ticks", s.cfg.TotalTicks),
		zap.Int64("anomalies", anomalies),
	)

	s.bus.Publish(ctx, event.Event{
		Topic:     TopicCompleted,
		Source:    "monitor",
		Timestamp: time.Now().UTC(),
		Payload:   CompletedEvent{Ticks: s.cfg.TotalTicks, Anomalies: anomalies},
	})

	return nil
}

// tick performs one generate → classify → record → alert → publish pass.
func (s *Session) tick(ctx context.Context, step int) error {
	started := time.Now()

	reading := s.gen.Next(step)

	cls, err := s.model.Classify(reading.Value)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	status := history.StatusNormal
	if cls.IsAnomaly {
		status = history.StatusAnomaly
	}

	rec := history.Record{
		Timestamp: reading.Timestamp,
		Value:     reading.Value,
		Status:    status,
		Fault:     reading.Fault,
	}
	s.hist.Append(rec)

	alert := s.alerter.Process(ctx, rec)

	if s.journal != nil {
		if err := s.journal.InsertReading(ctx, step, rec, cls); err != nil {
			s.logger.Warn("failed to journal reading", zap.Int("step", step), zap.Error(err))
		}
	}

	readingsTotal.Inc()
	temperatureCelsius.Set(reading.Value)
	if cls.IsAnomaly {
		anomaliesTotal.WithLabelValues(string(reading.Fault)).Inc()
	}
	tickDuration.Observe(time.Since(started).Seconds())

	ev := TickEvent{
		Step:           step,
		Reading:        reading,
		Status:         status,
		ColorHint:      dashboard.StyleFor(rec).Color,
		Classification: cls,
		Alert:          alert,
		Table:          s.hist.Tail(s.cfg.TableWindow),
		Chart:          s.hist.Tail(s.cfg.ChartWindow),
	}

	s.mu.Lock()
	s.step = step
	s.last = &ev
	if cls.IsAnomaly {
		s.anomalies++
	}
	s.mu.Unlock()

	// Synchronous publish keeps tick snapshots ordered for subscribers.
	s.bus.Publish(ctx, event.Event{
		Topic:     TopicTick,
		Source:    "monitor",
		Timestamp: reading.Timestamp,
		Payload:   &ev,
	})

	return nil
}

// StatusSnapshot is the session's externally visible state.
type StatusSnapshot struct {
	State       string  `json:"state"`
	Step        int     `json:"step"`
	TotalTicks  int     `json:"total_ticks"`
	Anomalies   int64   `json:"anomalies"`
	Threshold   float64 `json:"score_threshold"`
	ActiveAlert *Alert  `json:"active_alert,omitempty"`
}

// Status returns a point-in-time snapshot of the session.
func (s *Session) Status() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusSnapshot{
		State:       s.state.String(),
		Step:        s.step,
		TotalTicks:  s.cfg.TotalTicks,
		Anomalies:   s.anomalies,
		Threshold:   s.model.Threshold(),
		ActiveAlert: s.alerter.Active(),
	}
}

// LastTick returns a copy of the most recent tick snapshot, or nil before
// the first tick. Used to bring late-joining display clients up to date.
func (s *Session) LastTick() *TickEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
