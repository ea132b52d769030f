package coordinator

import (
	"sync"
	"time"
)

// Watchdog cancels a run's context if it does not complete within a
// configured deadline. Adapted from the teacher's bridge.TimerManager
// (mutex-guarded map of *time.Timer) collapsed to the single timer a run
// needs — spec.md §5: "none specified" by default, so a Watchdog with no
// deadline configured never fires.
type Watchdog struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewWatchdog returns an idle watchdog.
func NewWatchdog() *Watchdog {
	return &Watchdog{}
}

// Arm starts the deadline timer, invoking onExpire if it is not disarmed
// first. A zero or negative deadline means "no timeout": Arm is then a
// no-op, matching spec.md §5's cancellation baseline.
func (w *Watchdog) Arm(deadline time.Duration, onExpire func()) {
	if deadline <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(deadline, onExpire)
}

// Disarm stops the deadline timer, if any.
func (w *Watchdog) Disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
