package view

import (
	"github.com/jmylchreest/toastd/internal/store"
	"github.com/jmylchreest/toastd/internal/theme"
)

// Layout tuning constants.
const (
	// EntranceOffset is the fixed off-axis offset a toast enters from.
	EntranceOffset = 24.0
	// EntranceScale is the reduced scale a toast enters at.
	EntranceScale = 0.95
	// ScaleStep is how much each older, stacked-behind toast shrinks.
	ScaleStep = 0.03
)

// FrameState carries the per-viewer transient state a layout pass needs.
type FrameState struct {
	// Hovered is the debounced pointer-over state for the whole stack.
	Hovered bool
	// Paused expands the stack exactly like hover does.
	Paused bool
	// FirstAppear holds toast IDs still inside the entrance grace window.
	FirstAppear map[string]bool
	// DragOffsets holds accumulated pointer deltas for toasts under drag,
	// keyed by toast ID.
	DragOffsets map[string]float64
}

// Target is the set of visual targets computed for one projected toast.
// Targets are handed to the motion boundary; the engine never produces
// interpolated frames.
type Target struct {
	// MasterIndex is the toast's position in the canonical store sequence.
	MasterIndex int
	// ID is the toast's identifier, for renderer-side bookkeeping.
	ID string

	// Rank is the 0-based stacking order among visible toasts, newest = 0.
	// Marked-deleted toasts keep the rank current at their slot.
	Rank int
	// ExpandedOffset is the cumulative height+gap of all visible toasts
	// stacked below this one.
	ExpandedOffset float64

	// Offset, Scale and Opacity are the motion targets.
	Offset  float64
	Scale   float64
	Opacity float64

	// DragOffset is the accumulated pointer delta while under drag.
	DragOffset float64

	MarkedDeleted bool
	FirstAppear   bool
}

// ComputeLayout assigns visual targets to every projected toast.
//
// It walks the projection from the most recently added toast to the oldest,
// maintaining a running expanded-offset accumulator. Marked-deleted toasts
// advance neither the rank counter nor the accumulator: they take the values
// current at their slot so they slide out from where they sat while the rest
// of the stack closes up beneath them.
//
// The function is pure: identical inputs yield identical outputs, and it
// holds no state between calls. The returned slice is parallel to the
// projection (targets[k] describes projection[k]).
func ComputeLayout(snap store.Snapshot, projection []int, cfg Config, th theme.Theme, frame FrameState) []Target {
	targets := make([]Target, len(projection))

	visibleCount := cfg.VisibleCount
	if visibleCount < 1 {
		visibleCount = 1
	}

	hovered := frame.Hovered || frame.Paused

	rank := 0
	accum := 0.0
	for k := len(projection) - 1; k >= 0; k-- {
		master := projection[k]
		toast := snap.Toasts[master]
		deleted := snap.IsMarked(master)
		first := frame.FirstAppear[toast.ID]

		t := Target{
			MasterIndex:    master,
			ID:             toast.ID,
			Rank:           rank,
			ExpandedOffset: accum,
			DragOffset:     frame.DragOffsets[toast.ID],
			MarkedDeleted:  deleted,
			FirstAppear:    first,
		}

		base := th.Gap * float64(rank)
		if hovered {
			base = accum
		}

		switch {
		case first:
			t.Offset = EntranceOffset
		case deleted:
			t.Offset = -(toast.Height + 2*th.Gap) + base
		default:
			t.Offset = base
		}

		switch {
		case first:
			t.Scale = EntranceScale
		case hovered:
			t.Scale = 1.0
		default:
			t.Scale = 1.0 - ScaleStep*float64(rank)
			if t.Scale < 0 {
				t.Scale = 0
			}
		}

		if deleted || first || rank >= visibleCount {
			t.Opacity = 0
		} else {
			t.Opacity = 1
		}
		t.Opacity = clamp01(t.Opacity)

		targets[k] = t

		if !deleted {
			accum += toast.Height + th.Gap
			rank++
		}
	}

	return targets
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
