// Package player implements the lesson video playback controller: source
// resolution, the availability precheck, the transport state machine,
// progress sampling with completion detection, and error presentation.
package player

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stwalsh4118/coursecast/internal/logger"
)

// MediaElement is the native media element owned by a local-stream player
type MediaElement interface {
	Play() error
	Pause()
	CurrentTime() float64
	Duration() float64
	Seek(seconds float64)
	SetMuted(muted bool)
	Muted() bool
}

// Container is the element that wraps the player and can go fullscreen
type Container interface {
	RequestFullscreen() error
	ExitFullscreen() error
}

// MediaEventType names a native media element event
type MediaEventType string

// Native media events forwarded to the controller
const (
	EventPlay       MediaEventType = "play"
	EventPause      MediaEventType = "pause"
	EventEnded      MediaEventType = "ended"
	EventTimeUpdate MediaEventType = "timeupdate"
	EventError      MediaEventType = "error"
)

// MediaEvent is a native media event. Status carries the HTTP status of a
// failed media fetch when known.
type MediaEvent struct {
	Type   MediaEventType
	Status int
	Err    error
}

// StateChangeFunc observes state transitions
type StateChangeFunc func(from, to PlaybackState)

// Options configures a Controller
type Options struct {
	Reference     Reference
	Checker       AvailabilityChecker
	Media         MediaElement
	Container     Container
	Clock         clockwork.Clock
	OnProgress    ProgressSink
	OnComplete    CompletionSink
	OnStateChange StateChangeFunc
	Autoplay      bool
	EmbedHost     string
	DurationHint  float64 // seeds the external-embed duration estimate
}

type transition struct {
	from PlaybackState
	to   PlaybackState
}

// Controller drives one mounted player. It owns the playback state, the
// sampling timer and the media element; instances share nothing.
//
// Observers run on the goroutine that caused the transition, after the
// controller's lock is released. Progress and completion sinks run on the
// sampler goroutine and must not call Unmount or SetReference synchronously.
// A sample taken just as playback pauses may still reach the progress sink;
// only Unmount and SetReference wait for the sampler.
type Controller struct {
	checker       AvailabilityChecker
	media         MediaElement
	container     Container
	onStateChange StateChangeFunc
	autoplay      bool
	embedHost     string
	tracker       *Tracker
	embed         *EmbedEstimator
	log           zerolog.Logger

	mu          sync.Mutex
	ref         Reference
	source      PlaybackSource
	state       PlaybackState
	errKind     ErrorKind
	gen         uint64
	cancelCheck context.CancelFunc
	muted       bool
	fullscreen  bool
	lastTime    float64
	pending     []transition
}

// NewController creates a controller in the idle state. Call Mount to start it.
func NewController(opts Options) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	c := &Controller{
		checker:       opts.Checker,
		media:         opts.Media,
		container:     opts.Container,
		onStateChange: opts.OnStateChange,
		autoplay:      opts.Autoplay,
		embedHost:     opts.EmbedHost,
		tracker:       NewTracker(clock, opts.OnProgress, opts.OnComplete),
		embed:         NewEmbedEstimator(clock, opts.DurationHint),
		log:           logger.Component("player"),
		ref:           opts.Reference,
		state:         StateIdle,
	}
	if c.media != nil {
		c.muted = c.media.Muted()
	}
	return c
}

// Mount resolves the source and brings the player to its first visible state.
// Local sources block on the availability precheck; external sources become
// ready immediately; without a source the controller stays idle.
func (c *Controller) Mount(ctx context.Context) PlaybackState {
	c.mu.Lock()
	c.resetLocked()
	c.source = Resolve(c.ref)

	switch c.source.Kind {
	case SourceNone:
		c.log.Debug().Msg("No renderable source, player not shown")
		c.unlockAndNotify()
		return StateIdle
	case SourceExternal:
		c.embed.Reset()
		c.setStateLocked(StateReady)
		c.log.Debug().
			Str("embed_id", c.source.EmbedID).
			Msg("External embed ready")
		c.unlockAndNotify()
		return StateReady
	}

	return c.checkLocked(ctx)
}

// Retry clears a failure and re-runs the availability precheck
func (c *Controller) Retry(ctx context.Context) (PlaybackState, error) {
	c.mu.Lock()
	if c.state != StateFailed {
		state := c.state
		c.mu.Unlock()
		return state, ErrNotFailed
	}
	return c.checkLocked(ctx), nil
}

// SetReference switches the player to a new reference. Sampling for the old
// source is cancelled and any in-flight precheck result is discarded.
func (c *Controller) SetReference(ctx context.Context, ref Reference) PlaybackState {
	c.mu.Lock()
	c.ref = ref
	c.resetLocked()
	c.unlockAndNotify()

	c.tracker.Close()
	return c.Mount(ctx)
}

// Unmount tears the player down. No sink fires after Unmount returns.
func (c *Controller) Unmount() {
	c.mu.Lock()
	c.resetLocked()
	if c.fullscreen && c.container != nil {
		if err := c.container.ExitFullscreen(); err != nil {
			c.log.Debug().Err(err).Msg("Failed to exit fullscreen on unmount")
		}
	}
	c.fullscreen = false
	c.unlockAndNotify()

	c.tracker.Close()
}

// checkLocked runs the precheck for the current local source. It is entered
// with the lock held and returns with it released.
func (c *Controller) checkLocked(ctx context.Context) PlaybackState {
	c.gen++
	gen := c.gen
	c.errKind = ErrorKindNone
	c.setStateLocked(StateChecking)

	if c.checker == nil {
		c.log.Error().Msg("No availability checker configured for local stream")
		c.errKind = ErrorKindUnknown
		c.setStateLocked(StateFailed)
		c.unlockAndNotify()
		return StateFailed
	}

	checkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.cancelCheck = cancel
	contentID := c.source.ContentID
	c.unlockAndNotify()

	result := c.checker.Check(checkCtx, contentID)

	c.mu.Lock()
	defer c.unlockAndNotify()

	if gen != c.gen {
		c.log.Debug().
			Str("content_id", contentID).
			Str("kind", result.Kind.String()).
			Msg("Discarding stale precheck result")
		return c.state
	}
	c.cancelCheck = nil

	if !result.OK() {
		c.errKind = result.Kind
		c.setStateLocked(StateFailed)
		return c.state
	}

	c.setStateLocked(StateReady)
	if c.autoplay && c.media != nil {
		if err := c.playLocked(); err != nil {
			c.log.Debug().Err(err).Msg("Autoplay was not allowed")
		}
	}
	return c.state
}

// TogglePlay plays when ready, paused or ended, and pauses when playing
func (c *Controller) TogglePlay() (PlaybackState, error) {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if err := c.transportReadyLocked(); err != nil {
		return c.state, err
	}

	if c.state == StatePlaying {
		c.media.Pause()
		c.setStateLocked(StatePaused)
		return c.state, nil
	}

	if err := c.playLocked(); err != nil {
		return c.state, err
	}
	return c.state, nil
}

// ToggleMute flips the mute flag on the media element and returns the new value
func (c *Controller) ToggleMute() (bool, error) {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if err := c.transportReadyLocked(); err != nil {
		return c.muted, err
	}

	c.muted = !c.muted
	c.media.SetMuted(c.muted)
	return c.muted, nil
}

// Seek moves to an absolute time, clamped to [0, duration], and returns the
// time actually sought to. Seeking back from the end re-enters the paused state.
func (c *Controller) Seek(seconds float64) (float64, error) {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if err := c.transportReadyLocked(); err != nil {
		return c.lastTime, err
	}

	duration := c.media.Duration()
	target := clampSeek(seconds, duration)
	c.media.Seek(target)
	c.lastTime = target

	if c.state == StateEnded && (!validDuration(duration) || target < duration) {
		c.setStateLocked(StatePaused)
	}
	return target, nil
}

// ToggleFullscreen requests or leaves fullscreen on the container. A denied
// request is not an error; the visual state simply reverts.
func (c *Controller) ToggleFullscreen() (bool, error) {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if err := c.transportReadyLocked(); err != nil {
		return c.fullscreen, err
	}

	if c.fullscreen {
		if c.container != nil {
			if err := c.container.ExitFullscreen(); err != nil {
				c.log.Debug().Err(err).Msg("Exit fullscreen failed")
			}
		}
		c.fullscreen = false
		return false, nil
	}

	c.fullscreen = true
	if c.container == nil {
		c.fullscreen = false
		return false, nil
	}
	if err := c.container.RequestFullscreen(); err != nil {
		c.log.Debug().Err(err).Msg("Fullscreen request denied, reverting layout")
		c.fullscreen = false
	}
	return c.fullscreen, nil
}

// HandleFullscreenChange records a fullscreen change made outside the
// controller, such as the viewer pressing Escape
func (c *Controller) HandleFullscreenChange(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullscreen = active
}

// HandleMediaEvent reconciles state with a native media event
func (c *Controller) HandleMediaEvent(ev MediaEvent) {
	c.mu.Lock()
	defer c.unlockAndNotify()

	if c.source.Kind != SourceLocal {
		return
	}

	switch ev.Type {
	case EventPlay:
		switch c.state {
		case StateReady, StatePaused, StateEnded:
			c.setStateLocked(StatePlaying)
		}
	case EventPause:
		if c.state == StatePlaying {
			c.setStateLocked(StatePaused)
		}
	case EventEnded:
		if c.state == StatePlaying {
			// ended implies paused on the element
			if c.media != nil {
				c.media.Pause()
			}
			c.setStateLocked(StateEnded)
		}
	case EventTimeUpdate:
		if c.media != nil {
			c.lastTime = c.media.CurrentTime()
		}
	case EventError:
		switch c.state {
		case StateReady, StatePlaying, StatePaused:
		default:
			return
		}
		kind := ErrorKindUnknown
		if ev.Status != 0 {
			kind = ClassifyStatus(ev.Status)
		} else if ev.Err != nil {
			kind = ClassifyError(ev.Err)
		}
		if kind == ErrorKindNone {
			kind = ErrorKindUnknown
		}
		c.log.Warn().
			Err(ev.Err).
			Int("status", ev.Status).
			Str("content_id", c.source.ContentID).
			Str("kind", kind.String()).
			Msg("Media element reported an error")
		c.errKind = kind
		c.setStateLocked(StateFailed)
	}
}

// HandleEmbedMessage folds a postMessage from the embedded player into the
// best-effort playing flag that gates progress estimation
func (c *Controller) HandleEmbedMessage(data []byte) error {
	msg, err := ParseEmbedMessage(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.unlockAndNotify()

	if c.source.Kind != SourceExternal || !c.state.ControlsActive() {
		return nil
	}

	playing, reported := c.embed.Observe(msg)
	if !reported {
		return nil
	}

	switch {
	case playing:
		if c.state != StatePlaying {
			c.setStateLocked(StatePlaying)
		}
	case *msg.PlayerState == embedStateEnded:
		if c.state == StatePlaying {
			c.setStateLocked(StateEnded)
		}
	default:
		if c.state == StatePlaying {
			c.setStateLocked(StatePaused)
		}
	}
	return nil
}

// State returns the current playback state
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Source returns the resolved playback source
func (c *Controller) Source() PlaybackSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Renderable reports whether anything should be rendered for this player
func (c *Controller) Renderable() bool {
	return c.Source().Renderable()
}

// ErrorKind returns the classification of the current failure
func (c *Controller) ErrorKind() ErrorKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errKind
}

// ErrorView returns the presentation of the current failure, if failed
func (c *Controller) ErrorView() (ErrorView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFailed {
		return ErrorView{}, false
	}
	return Present(c.errKind), true
}

// EmbedFrame returns the inline frame description for an external source
func (c *Controller) EmbedFrame() (EmbedFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source.Kind != SourceExternal {
		return EmbedFrame{}, false
	}
	return NewEmbedFrame(c.embedHost, c.source.EmbedID, ""), true
}

// Muted reports the mute flag
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Fullscreen reports the visual fullscreen flag
func (c *Controller) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}

// Completed reports whether the completion sink has fired
func (c *Controller) Completed() bool {
	return c.tracker.Completed()
}

// Position returns the current position and duration in seconds. For
// external embeds this is an estimate.
func (c *Controller) Position() (current, duration float64) {
	c.mu.Lock()
	source := c.source
	media := c.media
	c.mu.Unlock()

	switch {
	case source.Kind == SourceExternal:
		return c.embed.Position()
	case source.Kind == SourceLocal && media != nil:
		return media.CurrentTime(), media.Duration()
	default:
		return 0, 0
	}
}

// transportReadyLocked checks that transport controls may be used (must hold lock)
func (c *Controller) transportReadyLocked() error {
	if c.source.Kind == SourceExternal {
		return ErrNotLocalStream
	}
	if !c.state.ControlsActive() {
		return ErrControlsInert
	}
	if c.media == nil {
		return ErrNoMediaElement
	}
	return nil
}

// playLocked starts the media element and enters the playing state (must hold lock)
func (c *Controller) playLocked() error {
	if err := c.media.Play(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	c.setStateLocked(StatePlaying)
	return nil
}

// resetLocked invalidates in-flight work and returns to idle (must hold lock)
func (c *Controller) resetLocked() {
	c.gen++
	if c.cancelCheck != nil {
		c.cancelCheck()
		c.cancelCheck = nil
	}
	c.errKind = ErrorKindNone
	if c.state != StateIdle {
		c.setStateLocked(StateIdle)
	}
}

// setStateLocked applies a transition and starts or stops sampling to match.
// Invalid transitions are ignored (must hold lock).
func (c *Controller) setStateLocked(to PlaybackState) bool {
	from := c.state
	if from == to {
		return true
	}
	if !from.CanTransitionTo(to) {
		c.log.Debug().
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Ignoring invalid state transition")
		return false
	}

	c.state = to
	c.pending = append(c.pending, transition{from: from, to: to})

	if to == StatePlaying {
		c.tracker.Start(c.positionFuncLocked())
	} else if from == StatePlaying {
		c.tracker.Stop()
	}

	c.log.Debug().
		Str("source", c.source.String()).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Playback state changed")
	return true
}

// positionFuncLocked binds the position reader for the current source (must hold lock)
func (c *Controller) positionFuncLocked() PositionFunc {
	if c.source.Kind == SourceExternal {
		return c.embed.Position
	}
	media := c.media
	return func() (float64, float64) {
		return media.CurrentTime(), media.Duration()
	}
}

// unlockAndNotify releases the lock and then delivers queued transitions
func (c *Controller) unlockAndNotify() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if c.onStateChange == nil {
		return
	}
	for _, t := range pending {
		c.onStateChange(t.from, t.to)
	}
}

func validDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

// clampSeek bounds a seek target to [0, duration]
func clampSeek(target, duration float64) float64 {
	if math.IsNaN(target) || target < 0 {
		return 0
	}
	if validDuration(duration) && target > duration {
		return duration
	}
	if math.IsInf(target, 1) {
		return 0
	}
	return target
}
