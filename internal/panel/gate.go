package panel

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	gateErrorMessage = "Incorrect PIN. Try again."
	gateErrorDelay   = 1500 * time.Millisecond
)

// SessionStore persists the per-session authenticated flag.
type SessionStore interface {
	IsAuthenticated(ctx context.Context, sessionID string) (bool, error)
	SetAuthenticated(ctx context.Context, sessionID string) error
}

type lockError struct {
	message string
	seq     uint64
}

// Gate checks the shared passcode once per browser session. Failed attempts
// are not counted; the error indicator just clears itself after a delay.
type Gate struct {
	passcode   string
	store      SessionStore
	notifier   Notifier
	metrics    Metrics
	schedule   Scheduler
	errorDelay time.Duration
	seq        atomic.Uint64
	lockErrors *xsync.MapOf[string, lockError]
}

func NewGate(passcode string, store SessionStore, notifier Notifier, metrics Metrics, schedule Scheduler) *Gate {
	if schedule == nil {
		schedule = afterFunc
	}
	return &Gate{
		passcode:   passcode,
		store:      store,
		notifier:   notifier,
		metrics:    metrics,
		schedule:   schedule,
		errorDelay: gateErrorDelay,
		lockErrors: xsync.NewMapOf[string, lockError](),
	}
}

func (g *Gate) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	ok, err := g.store.IsAuthenticated(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	return ok, nil
}

// CheckPasscode reports whether the session may pass. Sessions that already
// passed are not checked again.
func (g *Gate) CheckPasscode(ctx context.Context, sessionID, entered string) (bool, error) {
	authenticated, err := g.IsAuthenticated(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if authenticated {
		return true, nil
	}

	if subtle.ConstantTimeCompare([]byte(entered), []byte(g.passcode)) == 1 {
		if err := g.store.SetAuthenticated(ctx, sessionID); err != nil {
			return false, fmt.Errorf("failed to persist session: %w", err)
		}
		g.lockErrors.Delete(sessionID)
		g.metrics.IncrementGateAttempts("granted")
		g.notifier.Publish(events.GateEvent{SessionID: sessionID, Granted: true})
		toast(g.notifier, events.LevelSuccess, "Access granted")
		return true, nil
	}

	g.metrics.IncrementGateAttempts("denied")
	seq := g.seq.Add(1)
	g.lockErrors.Store(sessionID, lockError{message: gateErrorMessage, seq: seq})
	g.notifier.Publish(events.GateEvent{
		SessionID:  sessionID,
		Message:    gateErrorMessage,
		ClearAfter: g.errorDelay.Milliseconds(),
	})
	g.schedule(g.errorDelay, func() {
		g.clearLockError(sessionID, seq)
	})
	return false, nil
}

// clearLockError drops the error only if no newer attempt replaced it.
func (g *Gate) clearLockError(sessionID string, seq uint64) {
	cleared := false
	g.lockErrors.Compute(sessionID, func(old lockError, loaded bool) (lockError, bool) {
		if !loaded || old.seq != seq {
			return old, !loaded
		}
		cleared = true
		return old, true
	})
	if cleared {
		g.notifier.Publish(events.GateEvent{SessionID: sessionID})
	}
}

// LockError returns the error the session's lock screen should currently show.
func (g *Gate) LockError(sessionID string) string {
	if e, ok := g.lockErrors.Load(sessionID); ok {
		return e.message
	}
	return ""
}
