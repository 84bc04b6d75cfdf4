package player

// PlaybackState represents the lifecycle state of a mounted player
type PlaybackState string

// Playback state constants
const (
	StateIdle     PlaybackState = "idle"     // Not mounted, or no renderable source
	StateChecking PlaybackState = "checking" // Availability precheck in flight
	StateReady    PlaybackState = "ready"    // Player may be shown, not yet started
	StatePlaying  PlaybackState = "playing"  // Media is playing, progress is sampled
	StatePaused   PlaybackState = "paused"   // Playback paused by the viewer
	StateEnded    PlaybackState = "ended"    // Media reached its end
	StateFailed   PlaybackState = "failed"   // Classified error is being presented
)

// String returns the string representation of the playback state
func (s PlaybackState) String() string {
	return string(s)
}

// IsValid checks if the playback state is a known valid value
func (s PlaybackState) IsValid() bool {
	switch s {
	case StateIdle, StateChecking, StateReady, StatePlaying, StatePaused, StateEnded, StateFailed:
		return true
	default:
		return false
	}
}

// ControlsActive reports whether transport controls respond in this state
func (s PlaybackState) ControlsActive() bool {
	switch s {
	case StateReady, StatePlaying, StatePaused, StateEnded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a transition from current state to newState is valid.
// Every state may return to idle on unmount or source change.
func (s PlaybackState) CanTransitionTo(newState PlaybackState) bool {
	if newState == StateIdle {
		return s != StateIdle && s.IsValid()
	}

	switch s {
	case StateIdle:
		// External sources skip the precheck
		return newState == StateChecking || newState == StateReady
	case StateChecking:
		return newState == StateReady || newState == StateFailed
	case StateReady:
		return newState == StatePlaying || newState == StateFailed
	case StatePlaying:
		return newState == StatePaused || newState == StateEnded || newState == StateFailed
	case StatePaused:
		return newState == StatePlaying || newState == StateFailed
	case StateEnded:
		// Seeking back re-enters the playthrough
		return newState == StatePlaying || newState == StatePaused
	case StateFailed:
		// Retry
		return newState == StateChecking
	default:
		return false
	}
}
