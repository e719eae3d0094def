package alertgate

import (
	"context"
	"log/slog"
)

// LogPresenter renders the alert presentation into the log stream. The
// daemon has no screen; the open/closed state of the presentation is
// observable through Gate.State instead.
type LogPresenter struct {
	Logger *slog.Logger
}

func (p *LogPresenter) Present(message string) {
	p.Logger.Warn("ALERT presentation opened", "message", message)
}

func (p *LogPresenter) Update(message string) {
	p.Logger.Warn("ALERT presentation updated", "message", message)
}

func (p *LogPresenter) Dismiss() {
	p.Logger.Info("alert presentation dismissed")
}

// LogSounder stands in for the audible alert on headless deployments.
type LogSounder struct {
	Logger *slog.Logger
}

func (s *LogSounder) Play(context.Context) error {
	s.Logger.Warn("ALERT sound requested")
	return nil
}
