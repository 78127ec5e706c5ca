package timekeeper

import (
	"errors"
	"slices"
	"sync"
	"time"

	"obscount/internal/core/model"
)

// ErrNotIdle indicates settings were edited while a phase was running.
var ErrNotIdle = errors.New("timer is running")

// Config contains runtime options for Keeper.
type Config struct {
	TickInterval time.Duration
	Scheduler    Scheduler
	Now          func() time.Time
}

// Keeper is the recording/resting state machine. The countdown only moves
// while the state is not idle.
type Keeper struct {
	mu        sync.Mutex
	settings  model.TimerSettings
	options   Config
	state     State
	remaining time.Duration
	events    []chan Event
	hooks     []func(Event)
	closed    bool
}

// New creates a Keeper in the idle state.
func New(settings model.TimerSettings, options Config) *Keeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Scheduler == nil {
		options.Scheduler = NewTickerScheduler()
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Keeper{
		settings: settings.Clamp(),
		options:  options,
		state:    StateIdle,
	}
}

// Subscribe registers a new observer channel. Events are dropped for
// subscribers that fall behind.
func (keeper *Keeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		close(ch)
		return ch
	}
	keeper.events = append(keeper.events, ch)
	return ch
}

// OnStateChange registers a hook that runs synchronously after every phase
// transition, outside the Keeper lock.
func (keeper *Keeper) OnStateChange(hook func(Event)) {
	keeper.mu.Lock()
	keeper.hooks = append(keeper.hooks, hook)
	keeper.mu.Unlock()
}

// Start moves idle to recording and starts the countdown.
func (keeper *Keeper) Start() {
	keeper.mu.Lock()
	if keeper.closed || keeper.state != StateIdle {
		keeper.mu.Unlock()
		return
	}
	event := keeper.enterLocked(StateRecording, keeper.options.Now())
	keeper.mu.Unlock()

	keeper.options.Scheduler.Start(keeper.options.TickInterval, keeper.Tick)
	keeper.dispatch(event)
}

// Stop returns to idle from any running phase. It does not save anything.
func (keeper *Keeper) Stop() {
	keeper.mu.Lock()
	if keeper.state == StateIdle {
		keeper.mu.Unlock()
		return
	}
	event := keeper.enterLocked(StateIdle, keeper.options.Now())
	keeper.mu.Unlock()

	keeper.options.Scheduler.Cancel()
	keeper.dispatch(event)
}

// Toggle starts an idle timer or stops a running one.
func (keeper *Keeper) Toggle() {
	if keeper.Snapshot().State == StateIdle {
		keeper.Start()
		return
	}
	keeper.Stop()
}

// Tick advances the countdown by one tick interval.
func (keeper *Keeper) Tick(tickTime time.Time) {
	keeper.mu.Lock()
	if keeper.state == StateIdle {
		keeper.mu.Unlock()
		return
	}

	keeper.remaining -= keeper.options.TickInterval
	if keeper.remaining > 0 {
		keeper.emitLocked(Event{
			Type:      EventProgress,
			State:     keeper.state,
			Remaining: keeper.remaining,
			Progress:  keeper.progressLocked(),
			At:        tickTime,
		})
		keeper.mu.Unlock()
		return
	}

	next := StateResting
	if keeper.state == StateResting {
		next = StateRecording
	}
	event := keeper.enterLocked(next, tickTime)
	keeper.mu.Unlock()

	keeper.dispatch(event)
}

// WithState runs fn with the current phase while holding the keeper lock,
// so no transition can happen until fn returns. fn must not call back
// into the Keeper.
func (keeper *Keeper) WithState(fn func(State)) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	fn(keeper.state)
}

// Snapshot returns the current phase and countdown.
func (keeper *Keeper) Snapshot() Status {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return Status{
		State:         keeper.state,
		Remaining:     keeper.remaining,
		PhaseDuration: keeper.phaseDurationLocked(),
		Progress:      keeper.progressLocked(),
	}
}

// Settings returns the current phase lengths.
func (keeper *Keeper) Settings() model.TimerSettings {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.settings
}

// UpdateSettings replaces the phase lengths. Only allowed while idle.
func (keeper *Keeper) UpdateSettings(settings model.TimerSettings) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.state != StateIdle {
		return ErrNotIdle
	}
	keeper.settings = settings.Clamp()
	return nil
}

// Close stops ticking and closes all observers. The Keeper cannot be
// restarted afterwards.
func (keeper *Keeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.closed = true
	keeper.state = StateIdle
	keeper.remaining = 0
	events := keeper.events
	keeper.events = nil
	keeper.hooks = nil
	keeper.mu.Unlock()

	keeper.options.Scheduler.Cancel()
	for _, ch := range events {
		close(ch)
	}
}

func (keeper *Keeper) enterLocked(state State, at time.Time) Event {
	previous := keeper.state
	keeper.state = state
	switch state {
	case StateRecording:
		keeper.remaining = keeper.settings.RecordDuration()
	case StateResting:
		keeper.remaining = keeper.settings.RestDuration()
	default:
		keeper.remaining = 0
	}

	event := Event{
		Type:      EventStateChange,
		State:     state,
		Previous:  previous,
		Remaining: keeper.remaining,
		Progress:  keeper.progressLocked(),
		At:        at,
	}
	keeper.emitLocked(event)
	return event
}

func (keeper *Keeper) phaseDurationLocked() time.Duration {
	switch keeper.state {
	case StateRecording:
		return keeper.settings.RecordDuration()
	case StateResting:
		return keeper.settings.RestDuration()
	default:
		return 0
	}
}

func (keeper *Keeper) progressLocked() float64 {
	total := keeper.phaseDurationLocked()
	if total <= 0 {
		return 0
	}
	progress := float64(keeper.remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (keeper *Keeper) dispatch(event Event) {
	keeper.mu.Lock()
	hooks := slices.Clone(keeper.hooks)
	keeper.mu.Unlock()

	for _, hook := range hooks {
		hook(event)
	}
}

func (keeper *Keeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}
