package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/probelab/thermwatch/internal/event"
	"github.com/probelab/thermwatch/internal/history"
	"github.com/probelab/thermwatch/internal/sensor"
)

// Alert severities. An alert opens as warning and escalates to critical
// after sustained consecutive anomalies.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// escalateAfter is the consecutive-anomaly count at which an open alert
// escalates to critical.
const escalateAfter = 3

// Alert represents a triggered anomaly alert.
type Alert struct {
	ID          string           `json:"id"`
	Fault       sensor.FaultType `json:"fault"`
	Severity    string           `json:"severity"`
	Message     string           `json:"message"`
	Value       float64          `json:"value"`
	Consecutive int              `json:"consecutive"`
	TriggeredAt time.Time        `json:"triggered_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty"`
}

// Alerter manages the alert lifecycle: an anomalous reading triggers (or
// escalates) the active alert, a normal reading resolves it.
type Alerter struct {
	journal *Journal
	bus     *event.Bus
	logger  *zap.Logger

	mu     sync.Mutex
	active *Alert
}

// NewAlerter creates an alerter. The journal may be nil; alerts are then
// kept in memory only.
func NewAlerter(journal *Journal, bus *event.Bus, logger *zap.Logger) *Alerter {
	return &Alerter{
		journal: journal,
		bus:     bus,
		logger:  logger,
	}
}

// Process evaluates one classified reading and returns the active alert
// after the update, or nil when none is active.
func (a *Alerter) Process(ctx context.Context, rec history.Record) *Alert {
	a.mu.Lock()
	defer a.mu.Unlock()

	if rec.Status == history.StatusAnomaly {
		return a.handleAnomaly(ctx, rec)
	}
	a.handleNormal(ctx)
	return nil
}

// Active returns a copy of the active alert, or nil.
func (a *Alerter) Active() *Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return nil
	}
	cp := *a.active
	return &cp
}

func (a *Alerter) handleAnomaly(ctx context.Context, rec history.Record) *Alert {
	if a.active != nil {
		a.active.Consecutive++
		if a.active.Consecutive >= escalateAfter && a.active.Severity != SeverityCritical {
			a.active.Severity = SeverityCritical
			a.logger.Warn("alert escalated to critical",
				zap.String("alert_id", a.active.ID),
				zap.Int("consecutive", a.active.Consecutive),
			)
		}
		cp := *a.active
		return &cp
	}

	alert := &Alert{
		ID:          uuid.NewString(),
		Fault:       rec.Fault,
		Severity:    SeverityWarning,
		Message:     fmt.Sprintf("anomaly detected (%s): sensor reading %.2f°C", rec.Fault, rec.Value),
		Value:       rec.Value,
		Consecutive: 1,
		TriggeredAt: rec.Timestamp,
	}
	a.active = alert

	if a.journal != nil {
		if err := a.journal.InsertAlert(ctx, alert); err != nil {
			a.logger.Warn("failed to journal alert", zap.String("alert_id", alert.ID), zap.Error(err))
		}
	}

	a.logger.Warn("alert triggered",
		zap.String("alert_id", alert.ID),
		zap.String("fault", string(alert.Fault)),
		zap.Float64("value", alert.Value),
	)

	if a.bus != nil {
		cp := *alert
		a.bus.PublishAsync(ctx, event.Event{
			Topic:     TopicAlertTriggered,
			Source:    "monitor",
			Timestamp: alert.TriggeredAt,
			Payload:   &cp,
		})
	}

	cp := *alert
	return &cp
}

func (a *Alerter) handleNormal(ctx context.Context) {
	if a.active == nil {
		return
	}

	alert := a.active
	a.active = nil

	now := time.Now().UTC()
	alert.ResolvedAt = &now

	if a.journal != nil {
		if err := a.journal.ResolveAlert(ctx, alert.ID, now); err != nil {
			a.logger.Warn("failed to resolve journaled alert", zap.String("alert_id", alert.ID), zap.Error(err))
		}
	}

	a.logger.Info("alert resolved",
		zap.String("alert_id", alert.ID),
		zap.String("fault", string(alert.Fault)),
	)

	if a.bus != nil {
		cp := *alert
		a.bus.PublishAsync(ctx, event.Event{
			Topic:     TopicAlertResolved,
			Source:    "monitor",
			Timestamp: now,
			Payload:   &cp,
		})
	}
}
