// Package app wires the sync components together: it owns the subscription
// scope, routes deliveries into the mergers, content streams, and alert
// gate, and exports transitions for downstream consumers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	kafkaexport "github.com/an-gr-hh1/landslide-sync/internal/adapter/kafka"
	"github.com/an-gr-hh1/landslide-sync/internal/alertgate"
	"github.com/an-gr-hh1/landslide-sync/internal/content"
	"github.com/an-gr-hh1/landslide-sync/internal/domain"
	"github.com/an-gr-hh1/landslide-sync/internal/feed"
	"github.com/an-gr-hh1/landslide-sync/internal/observability"
	"github.com/an-gr-hh1/landslide-sync/internal/profile"
)

// Remote paths the app keeps standing subscriptions on.
const (
	PathSensorReadings = "sensor_readings"
	PathAlerts         = "alerts"
	PathForum          = "forum"
	PathIncidents      = "incidents"
)

// Exporter publishes sync events for downstream archival. Nil disables
// export.
type Exporter interface {
	Publish(ctx context.Context, event kafkaexport.Event) error
}

// App owns the live-state of the sync layer for the process lifetime.
type App struct {
	Telemetry    *feed.Merger[domain.SensorSnapshot]
	AlertMessage *feed.Merger[string]
	Gate         *alertgate.Gate
	Forum        *content.Stream[domain.ForumPost]
	Incidents    *content.Stream[domain.IncidentReport]
	Profiles     *profile.Store

	svc      feed.RealtimeService
	feeds    *feed.Feed
	scope    *feed.Scope
	exporter Exporter
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu         sync.Mutex // serializes alert evaluation across delivery goroutines
	lastActive bool
}

// New assembles an App. gate side effects and clock are injected by the
// caller; exporter may be nil.
func New(svc feed.RealtimeService, gate *alertgate.Gate, exporter Exporter, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *App {
	return &App{
		Telemetry:    feed.NewMerger(domain.DecodeSensorSnapshot),
		AlertMessage: feed.NewMerger(decodeAlertMessage),
		Gate:         gate,
		Forum:        content.NewStream(PathForum, "forum", svc, domain.DecodeForumPost, clock, logger, metrics),
		Incidents:    content.NewStream(PathIncidents, "incident", svc, domain.DecodeIncidentReport, clock, logger, metrics),
		Profiles:     profile.NewStore(svc),

		svc:      svc,
		feeds:    feed.New(svc, logger),
		scope:    feed.NewScope(),
		exporter: exporter,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start opens the standing subscriptions. The returned error is fatal to
// startup; delivery errors after Start are reported through metrics and
// logs without retrying.
func (a *App) Start(ctx context.Context) error {
	subscriptions := []struct {
		path string
		sink feed.Sink
	}{
		{PathSensorReadings, a.Telemetry.Sink(a.counted(PathSensorReadings, feed.FuncSink{
			Value: func(any) { a.evaluateAlert(ctx) },
		}))},
		{PathAlerts, a.AlertMessage.Sink(a.counted(PathAlerts, feed.FuncSink{
			Value: func(any) { a.evaluateAlert(ctx) },
		}))},
		{PathForum, a.counted(PathForum, a.Forum.Sink())},
		{PathIncidents, a.counted(PathIncidents, a.Incidents.Sink())},
	}

	for _, s := range subscriptions {
		sub, err := a.feeds.Subscribe(ctx, s.path, s.sink)
		if err != nil {
			a.scope.Close()
			a.metrics.ActiveSubscriptions.Set(0)
			return fmt.Errorf("subscribe %s: %w", s.path, err)
		}
		a.scope.Add(sub)
		a.metrics.ActiveSubscriptions.Inc()
	}

	a.logger.Info("sync started",
		"paths", []string{PathSensorReadings, PathAlerts, PathForum, PathIncidents})
	return nil
}

// Close cancels every subscription. It returns once in-flight deliveries
// have drained, after which no callback mutates app state.
func (a *App) Close() {
	a.scope.Close()
	a.metrics.ActiveSubscriptions.Set(0)
	a.logger.Info("sync stopped")
}

// Scope exposes the subscription scope for one-shot result gating.
func (a *App) Scope() *feed.Scope { return a.scope }

// CheckReadiness reports nil once the first telemetry snapshot has been
// applied.
func (a *App) CheckReadiness(_ context.Context) error {
	if !a.Telemetry.Delivered() {
		return errors.New("no telemetry snapshot received yet")
	}
	return nil
}

// counted wraps a sink with delivery and error metrics for one path.
func (a *App) counted(path string, next feed.Sink) feed.Sink {
	return feed.FuncSink{
		Value: func(raw any) {
			a.metrics.FeedDeliveries.WithLabelValues(path).Inc()
			next.OnValue(raw)
		},
		Error: func(err error) {
			a.metrics.FeedErrors.WithLabelValues(path).Inc()
			next.OnError(err)
		},
	}
}

// evaluateAlert feeds the latest merged flag and message into the gate and
// exports transitions. Called after every telemetry or alert-message
// delivery. Those deliveries arrive on separate goroutines, and the gate
// must never be fed a flag a concurrent delivery has already replaced, so
// the merged-state read and the observation happen under one lock.
func (a *App) evaluateAlert(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.Telemetry.Latest()
	message := a.AlertMessage.Latest()

	a.Gate.Observe(ctx, snap.AlertActive, message)

	flipped := snap.AlertActive != a.lastActive
	a.lastActive = snap.AlertActive

	if a.exporter == nil {
		return
	}

	event := kafkaexport.Event{
		Kind:       "telemetry",
		Snapshot:   &snap,
		ObservedAt: a.clock.Now(),
	}
	if flipped {
		event.Kind = "alert_cleared"
		if snap.AlertActive {
			event.Kind = "alert_raised"
			event.Message = message
		}
	}
	if err := a.exporter.Publish(ctx, event); err != nil {
		// Export is best-effort; the alert path never depends on it.
		a.logger.Warn("event export failed", "kind", event.Kind, "error", err)
	}
}

// decodeAlertMessage decodes the "alerts" channel value. Anything that is
// not a string decodes to the empty message.
func decodeAlertMessage(raw any) string {
	s, _ := raw.(string)
	return s
}
