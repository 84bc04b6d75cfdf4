package player

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// SampleInterval is how often progress is sampled while playing
	SampleInterval = 5 * time.Second
	// CompletionThreshold is the watched fraction that must be exceeded for completion
	CompletionThreshold = 0.80
)

// ProgressSink receives a sample at most once per interval while playing
type ProgressSink func(watchedSeconds, totalSeconds float64)

// CompletionSink is invoked once the completion threshold is first crossed
type CompletionSink func()

// PositionFunc reports the current playback position and duration in seconds
type PositionFunc func() (current, duration float64)

// Tracker samples playback position on a fixed interval and derives completion.
// At most one sampling goroutine is alive at a time; the completion flag never
// resets for the lifetime of the tracker.
type Tracker struct {
	clock      clockwork.Clock
	onProgress ProgressSink
	onComplete CompletionSink

	mu        sync.Mutex
	gen       uint64
	running   bool
	stop      chan struct{}
	done      chan struct{}
	completed bool
}

// NewTracker creates a new tracker. Nil sinks are allowed.
func NewTracker(clock clockwork.Clock, onProgress ProgressSink, onComplete CompletionSink) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		clock:      clock,
		onProgress: onProgress,
		onComplete: onComplete,
	}
}

// Start begins sampling position every SampleInterval. A sampler that is
// already running is cancelled first.
func (t *Tracker) Start(position PositionFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	t.gen++
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	ticker := t.clock.NewTicker(SampleInterval)
	go t.run(t.gen, position, ticker, t.stop, t.done)
}

// Stop cancels sampling without waiting for the sampler goroutine to exit.
// No new tick is read once Stop returns, but a sample already past its
// generation check may still be delivered. Use Close for a hard guarantee.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Close cancels sampling and waits for the sampler goroutine to exit, so no
// sink is invoked after it returns. Sinks must not call Close themselves.
func (t *Tracker) Close() {
	t.mu.Lock()
	done := t.done
	t.stopLocked()
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Running reports whether a sampler is active
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Completed reports whether the completion sink has fired
func (t *Tracker) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// stopLocked signals the current sampler to exit (must hold lock)
func (t *Tracker) stopLocked() {
	if !t.running {
		return
	}
	t.running = false
	t.gen++
	close(t.stop)
}

// run is the sampler goroutine
func (t *Tracker) run(gen uint64, position PositionFunc, ticker clockwork.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			t.sample(gen, position)
		}
	}
}

// sample takes one reading and dispatches it to the sinks
func (t *Tracker) sample(gen uint64, position PositionFunc) {
	if !t.current(gen) {
		return
	}

	current, duration := position()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return
	}
	if math.IsNaN(current) || current < 0 {
		current = 0
	}
	if current > duration {
		current = duration
	}

	t.mu.Lock()
	if t.gen != gen || !t.running {
		t.mu.Unlock()
		return
	}
	fireCompletion := false
	if !t.completed && current/duration > CompletionThreshold {
		t.completed = true
		fireCompletion = true
	}
	t.mu.Unlock()

	if t.onProgress != nil {
		t.onProgress(current, duration)
	}
	if fireCompletion && t.onComplete != nil {
		t.onComplete()
	}
}

// current reports whether gen is still the active sampler generation
func (t *Tracker) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen == gen && t.running
}
