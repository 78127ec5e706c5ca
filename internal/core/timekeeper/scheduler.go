package timekeeper

import (
	"sync"
	"time"
)

// Scheduler delivers periodic ticks until cancelled.
type Scheduler interface {
	Start(interval time.Duration, onTick func(time.Time))
	Cancel()
}

// TickerScheduler drives ticks from a time.Ticker in its own goroutine.
type TickerScheduler struct {
	mu     sync.Mutex
	stopCh chan struct{}
}

// NewTickerScheduler returns a scheduler backed by time.Ticker.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Start begins ticking. A running ticker is replaced.
func (scheduler *TickerScheduler) Start(interval time.Duration, onTick func(time.Time)) {
	scheduler.mu.Lock()
	if scheduler.stopCh != nil {
		close(scheduler.stopCh)
	}
	stopCh := make(chan struct{})
	scheduler.stopCh = stopCh
	scheduler.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		runTicks(ticker.C, stopCh, onTick)
	}()
}

// runTicks forwards ticks until stopCh closes. A tick that is ready at the
// same moment as the stop is dropped so it cannot leak into a later run.
func runTicks(ticks <-chan time.Time, stopCh <-chan struct{}, onTick func(time.Time)) {
	for {
		select {
		case <-stopCh:
			return
		case tickTime := <-ticks:
			select {
			case <-stopCh:
				return
			default:
			}
			onTick(tickTime)
		}
	}
}

// Cancel stops the ticker goroutine. Safe to call when not running.
func (scheduler *TickerScheduler) Cancel() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.stopCh == nil {
		return
	}
	close(scheduler.stopCh)
	scheduler.stopCh = nil
}

// ManualScheduler stores the tick callback and fires it only when Fire is
// called. Used by tests and by front ends that own their own clock.
type ManualScheduler struct {
	mu       sync.Mutex
	onTick   func(time.Time)
	interval time.Duration
}

// NewManualScheduler returns an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Start records the callback.
func (scheduler *ManualScheduler) Start(interval time.Duration, onTick func(time.Time)) {
	scheduler.mu.Lock()
	scheduler.interval = interval
	scheduler.onTick = onTick
	scheduler.mu.Unlock()
}

// Cancel forgets the callback.
func (scheduler *ManualScheduler) Cancel() {
	scheduler.mu.Lock()
	scheduler.onTick = nil
	scheduler.mu.Unlock()
}

// Active reports whether a callback is registered.
func (scheduler *ManualScheduler) Active() bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.onTick != nil
}

// Interval returns the interval passed to the last Start.
func (scheduler *ManualScheduler) Interval() time.Duration {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.interval
}

// Fire invokes the callback n times. It reports false if the scheduler was
// cancelled before all ticks were delivered.
func (scheduler *ManualScheduler) Fire(n int, now time.Time) bool {
	for i := 0; i < n; i++ {
		scheduler.mu.Lock()
		onTick := scheduler.onTick
		scheduler.mu.Unlock()
		if onTick == nil {
			return false
		}
		onTick(now)
	}
	return true
}
