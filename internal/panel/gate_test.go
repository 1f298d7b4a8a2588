package panel_test

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestGateCorrectPasscode(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	granted, err := h.panel.Gate.CheckPasscode(ctx, "session-a", "1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !granted {
		t.Fatalf("expected the correct passcode to be granted")
	}
	if ok, _ := h.panel.Gate.IsAuthenticated(ctx, "session-a"); !ok {
		t.Fatalf("session not marked authenticated")
	}
	if !h.notifier.hasToast("Access granted") {
		t.Fatalf("missing access toast")
	}

	// Once open the gate is bypassed: no second toast, even for a wrong entry.
	granted, err = h.panel.Gate.CheckPasscode(ctx, "session-a", "0000")
	if err != nil || !granted {
		t.Fatalf("authenticated session re-checked: %v %v", granted, err)
	}
	count := 0
	for _, toast := range h.notifier.toasts() {
		if toast.Message == "Access granted" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("gate opened %d times", count)
	}

	if ok, _ := h.panel.Gate.IsAuthenticated(ctx, "session-b"); ok {
		t.Fatalf("authentication leaked to another session")
	}
}

func TestGateIncorrectPasscode(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(rt)
		ctx := context.Background()
		entered := rapid.String().Filter(func(s string) bool { return s != "1234" }).Draw(rt, "entered")

		granted, err := h.panel.Gate.CheckPasscode(ctx, "session", entered)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if granted {
			rt.Fatalf("gate opened for %q", entered)
		}
		if ok, _ := h.panel.Gate.IsAuthenticated(ctx, "session"); ok {
			rt.Fatalf("session authenticated after a wrong passcode")
		}
		if got := h.panel.Gate.LockError("session"); got != "Incorrect PIN. Try again." {
			rt.Fatalf("unexpected lock error %q", got)
		}
		if len(h.scheduler.delays) != 1 || h.scheduler.delays[0] != 1500*time.Millisecond {
			rt.Fatalf("expected a 1.5s clear, got %v", h.scheduler.delays)
		}

		h.scheduler.fire()
		if got := h.panel.Gate.LockError("session"); got != "" {
			rt.Fatalf("lock error not cleared: %q", got)
		}
	})
}

func TestGateErrorClearedOnlyByLatestAttempt(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	_, _ = h.panel.Gate.CheckPasscode(ctx, "session", "1111")
	h.scheduler.mu.Lock()
	first := h.scheduler.pending[0]
	h.scheduler.pending = nil
	h.scheduler.mu.Unlock()

	_, _ = h.panel.Gate.CheckPasscode(ctx, "session", "2222")

	// The first attempt's timer firing late must not clear the newer error.
	first()
	if h.panel.Gate.LockError("session") == "" {
		t.Fatalf("stale timer cleared a newer error")
	}
	h.scheduler.fire()
	if h.panel.Gate.LockError("session") != "" {
		t.Fatalf("latest timer did not clear the error")
	}

	gates := h.notifier.gateEvents()
	last := gates[len(gates)-1]
	if last.Message != "" || last.Granted || last.SessionID != "session" {
		t.Fatalf("expected a clearing gate event, got %+v", last)
	}
}
