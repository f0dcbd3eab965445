package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// waitFor polls cond until it holds or the (real-time) deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestTimerFires(t *testing.T) {
	clk := clockwork.NewFakeClock()
	tm := newTimerManager(clk)

	var fired atomic.Uint64
	id := tm.Arm(timerNoBuzz, 5*time.Second, func(id uint64) { fired.Store(id) })

	clk.Advance(5 * time.Second)
	waitFor(t, func() bool { return fired.Load() != 0 }, "timer fire")
	if fired.Load() != id {
		t.Errorf("fired with id %d, want %d", fired.Load(), id)
	}
}

func TestCancelPreventsFire(t *testing.T) {
	clk := clockwork.NewFakeClock()
	tm := newTimerManager(clk)

	var fired atomic.Int32
	tm.Arm(timerNoBuzz, 5*time.Second, func(uint64) { fired.Add(1) })
	tm.Cancel(timerNoBuzz)

	clk.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("cancelled timer fired %d times, want 0", fired.Load())
	}
}

func TestRearmReplacesOldTimer(t *testing.T) {
	clk := clockwork.NewFakeClock()
	tm := newTimerManager(clk)

	var firedID atomic.Uint64
	var fires atomic.Int32
	record := func(id uint64) {
		firedID.Store(id)
		fires.Add(1)
	}

	tm.Arm(timerAnswer, 5*time.Second, record)
	second := tm.Arm(timerAnswer, 10*time.Second, record)

	// Past both deadlines: only the replacement may fire, exactly once.
	clk.Advance(time.Minute)
	waitFor(t, func() bool { return fires.Load() == 1 }, "replacement fire")
	time.Sleep(20 * time.Millisecond)
	if fires.Load() != 1 {
		t.Errorf("fires = %d, want 1", fires.Load())
	}
	if firedID.Load() != second {
		t.Errorf("fired id = %d, want replacement id %d", firedID.Load(), second)
	}
}

func TestTimerKindsAreIndependent(t *testing.T) {
	clk := clockwork.NewFakeClock()
	tm := newTimerManager(clk)

	var answerFired, noBuzzFired atomic.Int32
	tm.Arm(timerAnswer, 5*time.Second, func(uint64) { answerFired.Add(1) })
	tm.Arm(timerNoBuzz, 10*time.Second, func(uint64) { noBuzzFired.Add(1) })

	clk.Advance(5 * time.Second)
	waitFor(t, func() bool { return answerFired.Load() == 1 }, "answer timer fire")
	if noBuzzFired.Load() != 0 {
		t.Errorf("no-buzz timer fired early")
	}

	// Cancelling one kind leaves the other alone.
	tm.Cancel(timerAnswer)
	clk.Advance(5 * time.Second)
	waitFor(t, func() bool { return noBuzzFired.Load() == 1 }, "no-buzz timer fire")
}

func TestCancelAll(t *testing.T) {
	clk := clockwork.NewFakeClock()
	tm := newTimerManager(clk)

	var fires atomic.Int32
	tm.Arm(timerNoBuzz, time.Second, func(uint64) { fires.Add(1) })
	tm.Arm(timerAnswer, time.Second, func(uint64) { fires.Add(1) })
	tm.Arm(timerAdvance, time.Second, func(uint64) { fires.Add(1) })
	tm.CancelAll()

	clk.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	if fires.Load() != 0 {
		t.Errorf("fires after CancelAll = %d, want 0", fires.Load())
	}
}
