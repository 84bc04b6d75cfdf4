package player

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Embedded player states carried by onStateChange messages
const (
	embedStateEnded   = 0
	embedStatePlaying = 1
	embedStatePaused  = 2
)

// EmbedMessage is a decoded postMessage from the embedded player
type EmbedMessage struct {
	Event       string
	PlayerState *int
	CurrentTime *float64
	Duration    *float64
}

type rawEmbedMessage struct {
	Event string          `json:"event"`
	Info  json.RawMessage `json:"info"`
}

type embedInfo struct {
	PlayerState *int     `json:"playerState"`
	CurrentTime *float64 `json:"currentTime"`
	Duration    *float64 `json:"duration"`
}

// ParseEmbedMessage decodes the embedded player's postMessage payload.
// onStateChange carries a bare state number in info; infoDelivery and
// initialDelivery carry an object.
func ParseEmbedMessage(data []byte) (EmbedMessage, error) {
	var raw rawEmbedMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return EmbedMessage{}, fmt.Errorf("invalid embed message: %w", err)
	}
	if raw.Event == "" {
		return EmbedMessage{}, fmt.Errorf("invalid embed message: missing event")
	}

	msg := EmbedMessage{Event: raw.Event}
	if len(raw.Info) == 0 || string(raw.Info) == "null" {
		return msg, nil
	}

	var state int
	if err := json.Unmarshal(raw.Info, &state); err == nil {
		msg.PlayerState = &state
		return msg, nil
	}

	var info embedInfo
	if err := json.Unmarshal(raw.Info, &info); err != nil {
		// Unrelated payload shapes are ignored rather than rejected
		return msg, nil
	}
	msg.PlayerState = info.PlayerState
	msg.CurrentTime = info.CurrentTime
	msg.Duration = info.Duration
	return msg, nil
}

// EmbedEstimator keeps a best-effort playing flag and position for an embedded
// player. Position is the last reported time plus wall-clock time elapsed while
// playing, capped at the duration. It is an estimate: without a richer control
// channel the embedded player's exact position cannot be read.
type EmbedEstimator struct {
	clock clockwork.Clock

	mu       sync.Mutex
	playing  bool
	position float64
	duration float64
	since    time.Time
}

// NewEmbedEstimator creates an estimator. durationHint seeds the duration
// until the embedded player reports one.
func NewEmbedEstimator(clock clockwork.Clock, durationHint float64) *EmbedEstimator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if durationHint < 0 {
		durationHint = 0
	}
	return &EmbedEstimator{clock: clock, duration: durationHint}
}

// Observe folds a message into the estimate. reported is true when the message
// carried a playing, paused or ended state.
func (e *EmbedEstimator) Observe(msg EmbedMessage) (playing, reported bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if msg.Duration != nil && *msg.Duration > 0 {
		e.duration = *msg.Duration
	}
	if msg.CurrentTime != nil && *msg.CurrentTime >= 0 {
		e.position = *msg.CurrentTime
		e.since = now
	}

	if msg.PlayerState == nil {
		return e.playing, false
	}

	switch *msg.PlayerState {
	case embedStatePlaying:
		if !e.playing {
			e.playing = true
			e.since = now
		}
	case embedStatePaused, embedStateEnded:
		if e.playing {
			e.position = e.estimateLocked(now)
			e.playing = false
		}
		if *msg.PlayerState == embedStateEnded && e.duration > 0 {
			e.position = e.duration
		}
	default:
		// Buffering and cued states do not change the playing flag
		return e.playing, false
	}
	return e.playing, true
}

// Playing reports the best-effort playing flag
func (e *EmbedEstimator) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Position returns the estimated position and known duration in seconds
func (e *EmbedEstimator) Position() (current, duration float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimateLocked(e.clock.Now()), e.duration
}

// Reset clears the estimate, keeping the duration
func (e *EmbedEstimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.position = 0
	e.since = time.Time{}
}

// estimateLocked computes the position at now (must hold lock)
func (e *EmbedEstimator) estimateLocked(now time.Time) float64 {
	pos := e.position
	if e.playing && !e.since.IsZero() {
		pos += now.Sub(e.since).Seconds()
	}
	if e.duration > 0 && pos > e.duration {
		pos = e.duration
	}
	return pos
}
