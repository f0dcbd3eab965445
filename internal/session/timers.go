package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// timerKind identifies the single-shot timers a session may hold. At most
// one timer per kind is live at any time.
type timerKind int

const (
	// timerNoBuzz fires when no team buzzes inside the grace period.
	timerNoBuzz timerKind = iota
	// timerAnswer drives the answer-window countdown ticks.
	timerAnswer
	// timerAdvance is the pause between resolving a question and
	// announcing the next one.
	timerAdvance

	timerKindCount
)

// timerHandle is one armed timer. The id is unique across all timers ever
// armed by the manager; callers record it and compare on fire to reject
// stale deliveries.
type timerHandle struct {
	id   uint64
	t    clockwork.Timer
	stop chan struct{}
}

// timerManager owns at most one live timer per kind with cancel-before-arm
// semantics. A cancelled timer never delivers its fire callback: either the
// cancellation or the fire applies, never both.
type timerManager struct {
	clock clockwork.Clock

	mu   sync.Mutex
	seq  uint64
	live [timerKindCount]*timerHandle
}

func newTimerManager(clock clockwork.Clock) *timerManager {
	return &timerManager{clock: clock}
}

// Arm cancels any live timer of the given kind, then arms a fresh one.
// When the timer fires, fire is invoked from the timer goroutine with the
// handle id; the callee must re-check the id against its own record under
// the session mutex before applying effects.
func (tm *timerManager) Arm(kind timerKind, d time.Duration, fire func(id uint64)) uint64 {
	tm.mu.Lock()
	tm.cancelLocked(kind)
	tm.seq++
	h := &timerHandle{
		id:   tm.seq,
		t:    tm.clock.NewTimer(d),
		stop: make(chan struct{}),
	}
	tm.live[kind] = h
	tm.mu.Unlock()

	go func() {
		select {
		case <-h.t.Chan():
			tm.mu.Lock()
			if tm.live[kind] != h {
				// Superseded between firing and delivery.
				tm.mu.Unlock()
				return
			}
			tm.live[kind] = nil
			tm.mu.Unlock()
			fire(h.id)
		case <-h.stop:
		}
	}()

	return h.id
}

// Cancel stops the live timer of the given kind, if any.
func (tm *timerManager) Cancel(kind timerKind) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.cancelLocked(kind)
}

// CancelAll stops every live timer.
func (tm *timerManager) CancelAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for kind := timerKind(0); kind < timerKindCount; kind++ {
		tm.cancelLocked(kind)
	}
}

func (tm *timerManager) cancelLocked(kind timerKind) {
	h := tm.live[kind]
	if h == nil {
		return
	}
	stopAndDrainTimer(h.t)
	close(h.stop)
	tm.live[kind] = nil
}

// stopAndDrainTimer stops a timer and drains its channel so the watcher
// goroutine never leaks, per the time.Timer.Stop documentation.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
