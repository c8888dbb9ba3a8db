package player

import (
	"math"
	"time"
)

// Gesture classification thresholds.
const (
	tapMaxMovement  = 10.0 // px, per axis
	tapMaxDuration  = 300 * time.Millisecond
	doubleTapWindow = 300 * time.Millisecond
	swipeThreshold  = 30.0 // px, horizontal
)

// GestureKind is the resolved classification of a touch sequence.
type GestureKind int

const (
	// GestureNone means nothing resolved yet; a tap may still be pending.
	GestureNone GestureKind = iota
	// GestureTap is a single tap whose double-tap window expired.
	GestureTap
	// GestureDoubleTap is two quick taps on the same horizontal half.
	GestureDoubleTap
	// GestureSwipe is a horizontal drag.
	GestureSwipe
)

// Gesture is a resolved touch gesture. Left is meaningful for double-taps
// (which screen half was hit); DeltaX for swipes.
type Gesture struct {
	Kind   GestureKind
	Left   bool
	DeltaX float64
}

// recognizer disambiguates tap, double-tap, and swipe from raw touch events.
// It is driven entirely by the timestamps the caller supplies; a pending tap
// resolves either on the second tap or when Expire observes the window has
// closed.
type recognizer struct {
	halfWidth float64

	active  bool
	startX  float64
	startY  float64
	lastX   float64
	lastY   float64
	startAt time.Time

	tapPending bool
	tapX       float64
	tapAt      time.Time
}

func newRecognizer(viewportWidth float64) *recognizer {
	return &recognizer{halfWidth: viewportWidth / 2}
}

// Begin records a touch-down. Any pending tap resolution is left to Expire.
func (r *recognizer) Begin(x, y float64, now time.Time) {
	r.active = true
	r.startX, r.startY = x, y
	r.lastX, r.lastY = x, y
	r.startAt = now
}

// Move tracks the moving touch point.
func (r *recognizer) Move(x, y float64) {
	if !r.active {
		return
	}
	r.lastX, r.lastY = x, y
}

// End classifies the completed touch sequence. A first tap opens the
// double-tap window and reports GestureNone until the window resolves.
func (r *recognizer) End(x, y float64, now time.Time) Gesture {
	if !r.active {
		return Gesture{}
	}
	r.active = false
	r.lastX, r.lastY = x, y

	dx := x - r.startX
	dy := y - r.startY
	duration := now.Sub(r.startAt)

	if math.Abs(dx) > swipeThreshold && math.Abs(dx) > math.Abs(dy) {
		r.tapPending = false
		return Gesture{Kind: GestureSwipe, DeltaX: dx}
	}

	isTap := math.Abs(dx) < tapMaxMovement && math.Abs(dy) < tapMaxMovement && duration < tapMaxDuration
	if !isTap {
		return Gesture{}
	}

	if r.tapPending && now.Sub(r.tapAt) <= doubleTapWindow && r.sameHalf(x, r.tapX) {
		r.tapPending = false
		return Gesture{Kind: GestureDoubleTap, Left: x < r.halfWidth}
	}

	r.tapPending = true
	r.tapX = x
	r.tapAt = now
	return Gesture{}
}

// Expire resolves a pending tap whose double-tap window has closed into a
// single tap. Callers invoke it from their tick.
func (r *recognizer) Expire(now time.Time) Gesture {
	if !r.tapPending || now.Sub(r.tapAt) <= doubleTapWindow {
		return Gesture{}
	}
	r.tapPending = false
	return Gesture{Kind: GestureTap}
}

func (r *recognizer) sameHalf(x1, x2 float64) bool {
	return (x1 < r.halfWidth) == (x2 < r.halfWidth)
}
