package player

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SimulatedMedia is a headless MediaElement whose position advances with a
// clock while playing. It backs the CLI and tests.
type SimulatedMedia struct {
	clock clockwork.Clock

	mu        sync.Mutex
	duration  float64
	position  float64
	speed     float64
	playing   bool
	startedAt time.Time
	muted     bool
}

// NewSimulatedMedia creates a paused media element of the given duration
func NewSimulatedMedia(clock clockwork.Clock, duration float64) *SimulatedMedia {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if duration < 0 {
		duration = 0
	}
	return &SimulatedMedia{clock: clock, duration: duration, speed: 1}
}

// SetSpeed sets the playback rate; non-positive rates are ignored
func (m *SimulatedMedia) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = m.currentLocked()
	m.startedAt = m.clock.Now()
	m.speed = speed
}

// Play starts playback, restarting from the beginning when at the end
func (m *SimulatedMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settleLocked()
	if m.playing {
		return nil
	}
	if m.duration > 0 && m.position >= m.duration {
		m.position = 0
	}
	m.playing = true
	m.startedAt = m.clock.Now()
	return nil
}

// Pause freezes the position
func (m *SimulatedMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = m.currentLocked()
	m.playing = false
}

// CurrentTime returns the position in seconds
func (m *SimulatedMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

// Duration returns the media length in seconds
func (m *SimulatedMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

// Seek jumps to seconds, keeping the play state
func (m *SimulatedMedia) Seek(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settleLocked()
	if seconds < 0 {
		seconds = 0
	}
	if seconds > m.duration {
		seconds = m.duration
	}
	m.position = seconds
	m.startedAt = m.clock.Now()
}

// SetMuted sets the mute flag
func (m *SimulatedMedia) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// Muted returns the mute flag
func (m *SimulatedMedia) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Playing reports whether the element is advancing. Reaching the end pauses it.
func (m *SimulatedMedia) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settleLocked()
	return m.playing
}

// Ended reports whether playback reached the end
func (m *SimulatedMedia) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration > 0 && m.currentLocked() >= m.duration
}

// currentLocked computes the position, pausing at the end (must hold lock)
func (m *SimulatedMedia) currentLocked() float64 {
	m.settleLocked()
	pos := m.position
	if m.playing {
		pos += m.clock.Since(m.startedAt).Seconds() * m.speed
	}
	return pos
}

// settleLocked freezes the element at the end once the clock has carried it
// there, like a native element that pauses when it ends (must hold lock)
func (m *SimulatedMedia) settleLocked() {
	if !m.playing {
		return
	}
	pos := m.position + m.clock.Since(m.startedAt).Seconds()*m.speed
	if pos >= m.duration {
		m.position = m.duration
		m.playing = false
	}
}
