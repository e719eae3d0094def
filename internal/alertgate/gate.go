// Package alertgate decides whether and when remote alert signals become
// user-facing alerts. It is a small state machine driven by the boolean
// alert flag in the telemetry snapshot and the message on the alert
// channel, with a fixed acknowledgement lockout so an alert cannot be
// dismissed reflexively.
package alertgate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/an-gr-hh1/landslide-sync/internal/observability"
)

// DefaultLockout is the acknowledgement lockout applied when the config
// does not override it.
const DefaultLockout = 5 * time.Second

// Phase enumerates the gate's states.
type Phase int

const (
	// PhaseIdle means no alert is active.
	PhaseIdle Phase = iota
	// PhaseRaised is the instant an alert fires; the gate promotes it to
	// PhaseAckPending in the same evaluation once side effects have been
	// requested.
	PhaseRaised
	// PhaseAckPending means the alert presentation is open and the
	// acknowledgement control is locked until the deadline passes.
	PhaseAckPending
	// PhaseAcked means the user confirmed the alert; the gate waits for
	// the external all clear.
	PhaseAcked
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRaised:
		return "raised"
	case PhaseAckPending:
		return "ack_pending"
	case PhaseAcked:
		return "acked"
	default:
		return "unknown"
	}
}

var (
	// ErrLocked is returned when the acknowledgement control is still
	// inside the lockout window.
	ErrLocked = errors.New("alert acknowledgement is locked")
	// ErrNotPending is returned when there is no alert awaiting
	// acknowledgement.
	ErrNotPending = errors.New("no alert pending acknowledgement")
)

// Presenter is the visual alert surface (the blocking dialog in the
// mobile client). Present and Dismiss are idempotent from the gate's
// point of view: re-raising reuses the open presentation via Update rather
// than stacking a second one.
type Presenter interface {
	Present(message string)
	Update(message string)
	Dismiss()
}

// Notifier requests a platform notification for a raised alert.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Sounder requests the audible alert.
type Sounder interface {
	Play(ctx context.Context) error
}

// State is an immutable snapshot of the gate for rendering.
type State struct {
	Phase        Phase     `json:"phase"`
	Active       bool      `json:"active"`
	Message      string    `json:"message"`
	RaisedAt     time.Time `json:"raisedAt,omitzero"`
	Acknowledged bool      `json:"acknowledged"`
	AckLocked    bool      `json:"ackLocked"`
}

// Gate is the alert state machine. The lockout is modeled as a stored
// deadline compared against the clock at each evaluation; nothing sleeps.
type Gate struct {
	presenter Presenter
	notifier  Notifier
	sounder   Sounder
	clock     clockwork.Clock
	lockout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu          sync.Mutex
	phase       Phase
	message     string
	raisedAt    time.Time
	ackDeadline time.Time
}

// New creates a Gate. A lockout of zero or below selects DefaultLockout.
func New(p Presenter, n Notifier, s Sounder, clock clockwork.Clock, lockout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Gate {
	if lockout <= 0 {
		lockout = DefaultLockout
	}
	return &Gate{
		presenter: p,
		notifier:  n,
		sounder:   s,
		clock:     clock,
		lockout:   lockout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Observe feeds the gate the latest merged alert signal. It is called on
// every telemetry or alert-message delivery; repeated observations with the
// same flag are cheap no-ops apart from message updates.
func (g *Gate) Observe(ctx context.Context, active bool, message string) {
	g.mu.Lock()

	if !active {
		if g.phase == PhaseIdle {
			g.mu.Unlock()
			return
		}
		// External all clear always wins, acknowledged or not: close the
		// presentation immediately and drop any pending lockout.
		g.phase = PhaseIdle
		g.message = ""
		g.raisedAt = time.Time{}
		g.ackDeadline = time.Time{}
		g.mu.Unlock()

		g.presenter.Dismiss()
		g.metrics.AlertsCleared.Inc()
		g.logger.Info("alert cleared")
		return
	}

	switch g.phase {
	case PhaseIdle:
		now := g.clock.Now()
		g.phase = PhaseRaised
		g.message = message
		g.raisedAt = now
		// Raised promotes to ack-pending immediately; the lockout window
		// starts now and is not restarted by later re-raises.
		g.phase = PhaseAckPending
		g.ackDeadline = now.Add(g.lockout)
		g.mu.Unlock()

		g.metrics.AlertsRaised.Inc()
		g.logger.Info("alert raised", "message", message, "lockout", g.lockout)
		g.presenter.Present(message)
		if err := g.notifier.Notify(ctx, "Landslide Alert!", message); err != nil {
			// Side-effect failure never blocks the acknowledgement path.
			g.logger.Warn("alert notification failed", "error", err)
		}
		if err := g.sounder.Play(ctx); err != nil {
			g.logger.Warn("alert sound failed", "error", err)
		}

	case PhaseRaised, PhaseAckPending:
		// Idempotent re-raise: one presentation, lockout untouched.
		changed := message != g.message
		g.message = message
		g.mu.Unlock()
		if changed {
			g.presenter.Update(message)
		}

	case PhaseAcked:
		// The presentation was dismissed at acknowledgement; keep the
		// message current for State without reopening anything.
		g.message = message
		g.mu.Unlock()

	default:
		g.mu.Unlock()
	}
}

// Acknowledge records the user confirming the alert. Confirming before the
// lockout deadline has no effect and returns ErrLocked; the control must be
// disabled, not merely advisory.
func (g *Gate) Acknowledge() error {
	g.mu.Lock()

	if g.phase != PhaseAckPending {
		g.mu.Unlock()
		g.metrics.AckAttempts.WithLabelValues("not_pending").Inc()
		return ErrNotPending
	}
	if g.clock.Now().Before(g.ackDeadline) {
		g.mu.Unlock()
		g.metrics.AckAttempts.WithLabelValues("locked").Inc()
		return ErrLocked
	}

	g.phase = PhaseAcked
	g.mu.Unlock()

	g.metrics.AckAttempts.WithLabelValues("accepted").Inc()
	g.logger.Info("alert acknowledged")
	g.presenter.Dismiss()
	return nil
}

// State returns the current gate state for rendering.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		Phase:        g.phase,
		Active:       g.phase != PhaseIdle,
		Message:      g.message,
		RaisedAt:     g.raisedAt,
		Acknowledged: g.phase == PhaseAcked,
		AckLocked:    g.phase == PhaseAckPending && g.clock.Now().Before(g.ackDeadline),
	}
}
