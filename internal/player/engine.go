// Package player is the media player interaction engine: playback state,
// scrubbing, keyboard shortcuts, touch gesture disambiguation, and control
// visibility over an abstract media surface.
//
// The engine is a library for an embedding player UI, not a CLI feature:
// the frontend implements Surface, forwards key/click/touch events as they
// arrive, calls Tick on every frame or timer, and renders from State. The
// terminal client ships it for such embedders and exercises it through its
// tests.
package player

import (
	"strings"
	"time"
)

// Engine behavior constants.
const (
	keySeekStep       = 5.0  // seconds, arrow keys
	doubleTapSeekStep = 10.0 // seconds, double-tap
	volumeStep        = 0.1
	swipeSeekRange    = 30.0 // seconds across a full-width swipe
	indicatorDuration = 500 * time.Millisecond
	controlsHideDelay = 3 * time.Second

	defaultViewportWidth = 640.0
)

// Surface abstracts the underlying media element. Implementations never see
// out-of-range values; the engine clamps before calling.
type Surface interface {
	Play()
	Pause()
	CurrentTime() float64
	Seek(seconds float64)
	Duration() float64
	SetVolume(v float64)
	SetMuted(muted bool)
	Ready() bool
	EnterFullscreen() error
	ExitFullscreen() error
}

// Indicator is the transient visual feedback for a double-tap seek.
type Indicator int

const (
	IndicatorNone Indicator = iota
	IndicatorRewind
	IndicatorForward
)

// State is a snapshot of the engine, owned exclusively by the engine
// instance and discarded with it.
type State struct {
	Playing         bool
	CurrentTime     float64
	Duration        float64
	Volume          float64
	Muted           bool
	Fullscreen      bool
	Scrubbing       bool
	ControlsVisible bool
	Indicator       Indicator
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithTouchDevice marks the engine as driving a touch device: click-to-play
// is suppressed and controls auto-hide while playing.
func WithTouchDevice() EngineOption {
	return func(e *Engine) { e.touch = true }
}

// WithViewportWidth sets the viewport width in pixels, used for double-tap
// halves and swipe-to-seek scaling.
func WithViewportWidth(px float64) EngineOption {
	return func(e *Engine) { e.viewportWidth = px }
}

// WithEngineClock overrides the time source for non-touch interactions
// (used in tests; touch events carry their own timestamps).
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// Engine drives a single media surface. It is not safe for concurrent use;
// like the UI it models, all events arrive on one goroutine.
type Engine struct {
	surface       Surface
	touch         bool
	viewportWidth float64
	now           func() time.Time
	rec           *recognizer

	playing         bool
	volume          float64
	muted           bool
	fullscreen      bool
	scrubbing       bool
	controlsVisible bool
	focused         bool

	indicator      Indicator
	indicatorUntil time.Time
	hideAt         time.Time
}

// NewEngine creates an engine around the given surface.
func NewEngine(surface Surface, opts ...EngineOption) *Engine {
	e := &Engine{
		surface:         surface,
		viewportWidth:   defaultViewportWidth,
		now:             time.Now,
		volume:          1,
		controlsVisible: true,
		focused:         true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rec = newRecognizer(e.viewportWidth)
	return e
}

// State returns the current snapshot, with time and duration read live from
// the surface.
func (e *Engine) State() State {
	return State{
		Playing:         e.playing,
		CurrentTime:     e.surface.CurrentTime(),
		Duration:        e.surface.Duration(),
		Volume:          e.volume,
		Muted:           e.muted,
		Fullscreen:      e.fullscreen,
		Scrubbing:       e.scrubbing,
		ControlsVisible: e.controlsVisible,
		Indicator:       e.indicator,
	}
}

// SetFocused gates keyboard handling; keys are ignored while unfocused.
func (e *Engine) SetFocused(focused bool) { e.focused = focused }

// TogglePlay flips playback. A surface that has not loaded metadata yet
// makes this a no-op.
func (e *Engine) TogglePlay() {
	if !e.surface.Ready() {
		return
	}
	if e.playing {
		e.surface.Pause()
		e.playing = false
		e.hideAt = time.Time{}
		return
	}
	e.surface.Play()
	e.playing = true
	e.armAutoHide(e.now())
}

// Click is a pointer-device click on the video area. On touch devices it is
// suppressed so taps are not handled twice.
func (e *Engine) Click() {
	if e.touch {
		return
	}
	e.TogglePlay()
}

// Seek jumps to the given time, clamped to [0, duration].
func (e *Engine) Seek(seconds float64) {
	e.surface.Seek(clamp(seconds, 0, e.surface.Duration()))
}

// SeekBy jumps relative to the current time, clamped.
func (e *Engine) SeekBy(delta float64) {
	e.Seek(e.surface.CurrentTime() + delta)
}

// SetVolume sets the volume, clamped to [0,1]. Dragging the slider to zero
// mutes.
func (e *Engine) SetVolume(v float64) {
	e.volume = clamp(v, 0, 1)
	e.surface.SetVolume(e.volume)
	e.setMuted(e.volume == 0)
}

// AdjustVolume shifts the volume by delta; raising it unmutes.
func (e *Engine) AdjustVolume(delta float64) {
	e.volume = clamp(e.volume+delta, 0, 1)
	e.surface.SetVolume(e.volume)
	if delta > 0 {
		e.setMuted(false)
	} else {
		e.setMuted(e.volume == 0)
	}
}

// ToggleMute flips the muted flag without touching the volume level.
func (e *Engine) ToggleMute() {
	e.setMuted(!e.muted)
}

func (e *Engine) setMuted(muted bool) {
	e.muted = muted
	e.surface.SetMuted(muted)
}

// ToggleFullscreen asks the platform to enter or leave fullscreen. The state
// only flips when the platform call succeeds.
func (e *Engine) ToggleFullscreen() {
	if e.fullscreen {
		if err := e.surface.ExitFullscreen(); err == nil {
			e.fullscreen = false
		}
		return
	}
	if err := e.surface.EnterFullscreen(); err == nil {
		e.fullscreen = true
	}
}

// SyncFullscreen mirrors a fullscreen change initiated outside the engine
// (for example the platform's Esc handling) back into engine state.
func (e *Engine) SyncFullscreen(active bool) {
	e.fullscreen = active
}

// HandleKey processes a keyboard shortcut. Keys are ignored while the
// player is unfocused.
func (e *Engine) HandleKey(key string) {
	if !e.focused {
		return
	}
	switch strings.ToLower(key) {
	case " ", "k":
		e.TogglePlay()
	case "f":
		e.ToggleFullscreen()
	case "m":
		e.ToggleMute()
	case "arrowleft":
		e.SeekBy(-keySeekStep)
	case "arrowright":
		e.SeekBy(keySeekStep)
	case "arrowup":
		e.AdjustVolume(volumeStep)
	case "arrowdown":
		e.AdjustVolume(-volumeStep)
	}
}

// ScrubStart enters scrubbing at the given horizontal track fraction.
func (e *Engine) ScrubStart(fraction float64) {
	e.scrubbing = true
	e.seekToFraction(fraction)
}

// ScrubMove seeks live while scrubbing; it is ignored otherwise.
func (e *Engine) ScrubMove(fraction float64) {
	if !e.scrubbing {
		return
	}
	e.seekToFraction(fraction)
}

// ScrubEnd leaves scrubbing.
func (e *Engine) ScrubEnd() {
	e.scrubbing = false
}

func (e *Engine) seekToFraction(fraction float64) {
	e.surface.Seek(clamp(fraction, 0, 1) * e.surface.Duration())
}

// TouchStart begins a touch sequence at viewport coordinates.
func (e *Engine) TouchStart(x, y float64, now time.Time) {
	e.resolve(e.rec.Expire(now), now)
	e.rec.Begin(x, y, now)
	e.noteInteraction(now)
}

// TouchMove tracks a moving touch point.
func (e *Engine) TouchMove(x, y float64, now time.Time) {
	e.rec.Move(x, y)
	e.noteInteraction(now)
}

// TouchEnd completes a touch sequence and applies whatever gesture resolved.
// Single taps stay pending until the double-tap window closes in Tick.
func (e *Engine) TouchEnd(x, y float64, now time.Time) {
	e.resolve(e.rec.End(x, y, now), now)
	e.noteInteraction(now)
}

// Tick advances time-driven behavior: pending-tap resolution, indicator
// expiry, and control auto-hide. Call it whenever a frame or timer fires.
func (e *Engine) Tick(now time.Time) {
	e.resolve(e.rec.Expire(now), now)

	if e.indicator != IndicatorNone && !now.Before(e.indicatorUntil) {
		e.indicator = IndicatorNone
	}
	if e.touch && e.playing && e.controlsVisible && !e.hideAt.IsZero() && !now.Before(e.hideAt) {
		e.controlsVisible = false
		e.hideAt = time.Time{}
	}
}

func (e *Engine) resolve(g Gesture, now time.Time) {
	switch g.Kind {
	case GestureTap:
		e.controlsVisible = !e.controlsVisible
		e.armAutoHide(now)
	case GestureDoubleTap:
		if g.Left {
			e.SeekBy(-doubleTapSeekStep)
			e.indicator = IndicatorRewind
		} else {
			e.SeekBy(doubleTapSeekStep)
			e.indicator = IndicatorForward
		}
		e.indicatorUntil = now.Add(indicatorDuration)
	case GestureSwipe:
		e.SeekBy(g.DeltaX / e.viewportWidth * swipeSeekRange)
	}
}

// noteInteraction rearms the auto-hide deadline on any touch activity.
func (e *Engine) noteInteraction(now time.Time) {
	e.armAutoHide(now)
}

func (e *Engine) armAutoHide(now time.Time) {
	if e.touch && e.playing && e.controlsVisible {
		e.hideAt = now.Add(controlsHideDelay)
	} else {
		e.hideAt = time.Time{}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
