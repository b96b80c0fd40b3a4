// Package gesture turns pointer and drag primitives into pause-toggle and
// dismiss-or-snap-back decisions for one viewer.
package gesture

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastd/internal/store"
)

// Phase is the drag state of one toast instance in a viewer.
type Phase int

const (
	// PhaseIdle means no gesture is in progress.
	PhaseIdle Phase = iota
	// PhaseDragging means the toast is under active drag.
	PhaseDragging
	// PhaseDismissing means the release crossed the dismiss threshold.
	PhaseDismissing
	// PhaseSnappingBack means the release fell short; the drag offset
	// resets to zero and the motion boundary animates the return.
	PhaseSnappingBack
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseDismissing:
		return "dismissing"
	case PhaseSnappingBack:
		return "snapping-back"
	default:
		return "unknown"
	}
}

// Dismiss thresholds along the drag axis, in layout units.
const (
	// VelocityThreshold is the release velocity (units/sec) that dismisses.
	VelocityThreshold = 700.0
	// OffsetThreshold is the fallback displacement that dismisses when no
	// release velocity is available.
	OffsetThreshold = 80.0
)

// Callbacks are the viewer hooks the arbiter drives.
type Callbacks struct {
	// TogglePause flips the viewer's pause flag.
	TogglePause func()
	// Recompute triggers a viewer layout recompute.
	Recompute func()
}

// Arbiter runs the Idle → Dragging → {Dismissing | SnappingBack} state
// machine per toast. Multiple toasts, in the same viewer or across viewers
// sharing the store, may be under drag simultaneously.
type Arbiter struct {
	mu     sync.Mutex
	store  *store.Store
	logger *slog.Logger

	// bottomAnchored decides the dismiss direction: positive (downward)
	// deltas dismiss bottom-anchored viewers, negative dismiss top-anchored.
	bottomAnchored bool

	states map[string]*dragState // keyed by toast ID
	cb     Callbacks
}

type dragState struct {
	index  int // master index captured at drag start
	offset float64
}

// NewArbiter creates an arbiter for one viewer.
func NewArbiter(st *store.Store, bottomAnchored bool, cb Callbacks, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arbiter{
		store:          st,
		logger:         logger,
		bottomAnchored: bottomAnchored,
		states:         make(map[string]*dragState),
		cb:             cb,
	}
}

// Tap handles a tap on the stack. Tapping while not hovered toggles the
// viewer's pause flag; it never transitions drag state.
func (a *Arbiter) Tap(hovered bool) {
	if !hovered && a.cb.TogglePause != nil {
		a.cb.TogglePause()
	}
}

// DragStart enters Dragging for the toast and adds its master index to the
// store's drag set, which alone blocks auto-dismiss. Unknown toasts are a
// no-op and the return value reports whether a drag began.
func (a *Arbiter) DragStart(id string) bool {
	idx, ok := a.store.IndexOf(id)
	if !ok {
		return false
	}

	a.mu.Lock()
	if _, active := a.states[id]; active {
		a.mu.Unlock()
		return false
	}
	a.states[id] = &dragState{index: idx}
	a.mu.Unlock()

	a.store.MarkDragging(idx)
	return true
}

// DragUpdate accumulates a signed pointer delta along the dismiss axis into
// the toast's drag offset.
func (a *Arbiter) DragUpdate(id string, delta float64) {
	a.mu.Lock()
	st, active := a.states[id]
	if !active {
		a.mu.Unlock()
		return
	}
	st.offset += delta
	a.mu.Unlock()

	if a.cb.Recompute != nil {
		a.cb.Recompute()
	}
}

// DragEnd finishes a drag with the released velocity (0 when unavailable)
// and returns the resulting phase. Crossing the threshold away from the
// anchor edge dismisses the toast; anything else snaps it back, resetting
// the drag offset to zero.
func (a *Arbiter) DragEnd(id string, velocity float64) Phase {
	a.mu.Lock()
	st, active := a.states[id]
	if !active {
		a.mu.Unlock()
		return PhaseIdle
	}
	delete(a.states, id)
	offset := st.offset
	index := st.index
	a.mu.Unlock()

	// Re-validate the index before touching the store; the captured value
	// is stale after a purge.
	if current, ok := a.store.IndexOf(id); ok {
		index = current
	} else {
		index = -1
	}
	if index >= 0 {
		a.store.UnmarkDragging(index)
	}

	phase := PhaseSnappingBack
	if a.crossesThreshold(velocity, offset) {
		phase = PhaseDismissing
	}

	switch phase {
	case PhaseDismissing:
		a.logger.Debug("drag dismissed", "toast_id", id, "velocity", velocity, "offset", offset)
		a.store.Hide(id)
	case PhaseSnappingBack:
		a.logger.Debug("drag snapped back", "toast_id", id, "offset", offset)
		if a.cb.Recompute != nil {
			a.cb.Recompute()
		}
	}
	return phase
}

// DragCancel handles an interrupted gesture, identical to a below-threshold
// release.
func (a *Arbiter) DragCancel(id string) {
	a.mu.Lock()
	st, active := a.states[id]
	if !active {
		a.mu.Unlock()
		return
	}
	delete(a.states, id)
	index := st.index
	a.mu.Unlock()

	if current, ok := a.store.IndexOf(id); ok {
		index = current
	} else {
		index = -1
	}
	if index >= 0 {
		a.store.UnmarkDragging(index)
	}

	if a.cb.Recompute != nil {
		a.cb.Recompute()
	}
}

// crossesThreshold decides dismissal from release velocity, falling back to
// the final displacement when no velocity is available. Only movement away
// from the anchor edge counts.
func (a *Arbiter) crossesThreshold(velocity, offset float64) bool {
	if velocity != 0 {
		if a.bottomAnchored {
			return velocity > VelocityThreshold
		}
		return velocity < -VelocityThreshold
	}
	if a.bottomAnchored {
		return offset > OffsetThreshold
	}
	return offset < -OffsetThreshold
}

// Offsets returns the accumulated drag offset per toast ID for every active
// drag.
func (a *Arbiter) Offsets() map[string]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	offsets := make(map[string]float64, len(a.states))
	for id, st := range a.states {
		offsets[id] = st.offset
	}
	return offsets
}

// ActiveCount returns the number of toasts currently under drag in this
// viewer.
func (a *Arbiter) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.states)
}
