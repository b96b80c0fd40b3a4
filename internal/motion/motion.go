// Package motion defines the animation boundary. The core hands it numeric
// targets; interpolation toward those targets is presentation-only and never
// feeds back into lifecycle state.
package motion

import (
	"math"
	"sync"
	"time"
)

// Curve maps normalized progress [0,1] to an eased fraction.
type Curve func(t float64) float64

// Built-in curves.
var (
	Linear Curve = func(t float64) float64 { return t }

	EaseOutCubic Curve = func(t float64) float64 {
		inv := 1 - t
		return 1 - inv*inv*inv
	}

	EaseOutExpo Curve = func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*t)
	}
)

// Profile describes one transition: how long it takes and how it eases.
type Profile struct {
	Duration time.Duration
	Curve    Curve
}

// DefaultProfile matches the stack's standard transition.
func DefaultProfile() Profile {
	return Profile{Duration: 300 * time.Millisecond, Curve: EaseOutCubic}
}

// Animator continuously interpolates a scalar toward a target.
type Animator interface {
	// To retargets the animator; interpolation restarts from the current
	// value.
	To(target float64)
	// Value returns the interpolated value at the current time.
	Value() float64
	// Done reports whether the current transition has finished.
	Done() bool
}

// Tween is a time-based Animator driven by a Profile. It carries no ticker;
// callers sample Value on their own render cadence.
type Tween struct {
	mu      sync.Mutex
	profile Profile
	from    float64
	to      float64
	start   time.Time

	now func() time.Time // overridable for tests
}

// NewTween creates a tween resting at the initial value.
func NewTween(initial float64, profile Profile) *Tween {
	if profile.Curve == nil {
		profile.Curve = EaseOutCubic
	}
	if profile.Duration <= 0 {
		profile.Duration = DefaultProfile().Duration
	}
	return &Tween{
		profile: profile,
		from:    initial,
		to:      initial,
		now:     time.Now,
	}
}

// To retargets the tween, starting from the currently interpolated value.
func (t *Tween) To(target float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if target == t.to {
		return
	}
	t.from = t.valueLocked()
	t.to = target
	t.start = t.now()
}

// Value returns the interpolated value at the current time.
func (t *Tween) Value() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.valueLocked()
}

func (t *Tween) valueLocked() float64 {
	if t.start.IsZero() || t.from == t.to {
		return t.to
	}
	elapsed := t.now().Sub(t.start)
	if elapsed >= t.profile.Duration {
		return t.to
	}
	progress := float64(elapsed) / float64(t.profile.Duration)
	return t.from + (t.to-t.from)*t.profile.Curve(progress)
}

// Done reports whether the tween has reached its target.
func (t *Tween) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() || t.from == t.to {
		return true
	}
	return t.now().Sub(t.start) >= t.profile.Duration
}
