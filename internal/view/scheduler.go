package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/store"
)

// Scheduler timing constants.
const (
	// HoverDebounce smooths hover flicker from fast pointer movement
	// across stacked items.
	HoverDebounce = 200 * time.Millisecond
	// ExitGraceWindow is how long fully-marked toasts keep animating out
	// before the store is purged. Matches the motion system's longest
	// transition.
	ExitGraceWindow = 350 * time.Millisecond
	// FirstAppearGrace is how long a new toast holds its entrance targets.
	FirstAppearGrace = 120 * time.Millisecond
)

// Scheduler owns the per-viewer timers: auto-dismiss of the oldest eligible
// toast, deferred purge of fully-marked stores, hover debounce and the
// first-appear grace per toast.
//
// Every timer callback re-reads the current store snapshot at fire time, so a
// race between "timer armed" and "state changed" produces a no-op, never an
// out-of-range access or a double dismiss.
type Scheduler struct {
	mu     sync.Mutex
	store  *store.Store
	cfg    Config
	logger *slog.Logger

	paused  bool
	hovered bool

	hoverTimer   *time.Timer
	dismissTimer *time.Timer
	purgeTimer   *time.Timer

	firstAppear  map[string]bool
	appearTimers map[string]*time.Timer

	recompute func()
	closed    bool
}

// NewScheduler creates a scheduler for one viewer over the shared store.
func NewScheduler(st *store.Store, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:        st,
		cfg:          cfg,
		logger:       logger,
		firstAppear:  make(map[string]bool),
		appearTimers: make(map[string]*time.Timer),
	}
}

// SetRecomputeFunc registers the callback that triggers a viewer recompute.
// It is invoked outside the scheduler lock.
func (s *Scheduler) SetRecomputeFunc(cb func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute = cb
}

// Evaluate re-arms or cancels the auto-dismiss and purge timers against the
// given snapshot. Viewers call it on every recompute.
func (s *Scheduler) Evaluate(snap store.Snapshot, projection []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	// The purge countdown restarts whenever the trigger condition is
	// re-evaluated while it still holds, and clears as soon as it breaks.
	if snap.AllMarked() {
		if s.purgeTimer != nil {
			s.purgeTimer.Stop()
		}
		s.purgeTimer = time.AfterFunc(ExitGraceWindow, s.firePurge)
	} else if s.purgeTimer != nil {
		s.purgeTimer.Stop()
		s.purgeTimer = nil
	}

	// The dismiss timer keeps running once armed; it is only cancelled
	// when a guard flips to blocking. Firing does not re-arm it, the next
	// recompute does.
	if s.dismissEligibleLocked(snap, projection) {
		if s.dismissTimer == nil {
			s.dismissTimer = time.AfterFunc(*s.cfg.Delay, s.fireDismiss)
		}
	} else if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
}

// dismissEligibleLocked checks the auto-dismiss guards: a non-nil delay, a
// projected not-yet-deleted toast, no active drag anywhere, viewer neither
// paused nor hovered. Caller must hold the lock.
func (s *Scheduler) dismissEligibleLocked(snap store.Snapshot, projection []int) bool {
	if s.cfg.Delay == nil || s.paused || s.hovered || snap.AnyDragging() {
		return false
	}
	for _, idx := range projection {
		if !snap.IsMarked(idx) {
			return true
		}
	}
	return false
}

// fireDismiss hides the oldest not-yet-deleted projected toast. Guards are
// re-checked against the snapshot current at fire time.
func (s *Scheduler) fireDismiss() {
	s.mu.Lock()
	if s.closed || s.dismissTimer == nil {
		s.mu.Unlock()
		return
	}
	s.dismissTimer = nil
	s.mu.Unlock()

	snap := s.store.Snapshot()
	projection := Project(snap.Toasts, s.cfg.Categories)

	s.mu.Lock()
	eligible := s.dismissEligibleLocked(snap, projection)
	s.mu.Unlock()
	if !eligible {
		return
	}

	for _, idx := range projection {
		if !snap.IsMarked(idx) {
			s.logger.Debug("auto-dismiss", "master_index", idx, "toast_id", snap.Toasts[idx].ID)
			s.store.HideIndex(idx)
			return
		}
	}
}

// firePurge clears the store once the exit grace window has elapsed,
// provided every toast is still marked at fire time.
func (s *Scheduler) firePurge() {
	s.mu.Lock()
	if s.closed || s.purgeTimer == nil {
		s.mu.Unlock()
		return
	}
	s.purgeTimer = nil
	s.mu.Unlock()

	snap := s.store.Snapshot()
	if snap.AllMarked() {
		s.logger.Debug("purging store", "count", len(snap.Toasts))
		s.store.PurgeAll()
	}
}

// NoteShown starts the first-appear grace timer for a newly shown toast.
func (s *Scheduler) NoteShown(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.firstAppear[id] = true
	s.appearTimers[id] = time.AfterFunc(FirstAppearGrace, func() {
		s.mu.Lock()
		delete(s.firstAppear, id)
		delete(s.appearTimers, id)
		closed := s.closed
		cb := s.recompute
		s.mu.Unlock()

		if !closed && cb != nil {
			cb()
		}
	})
	s.mu.Unlock()
}

// SetHovered updates the hover target. The effective hover state only flips
// after the debounce window, at which point a recompute is triggered.
func (s *Scheduler) SetHovered(hovered bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.hoverTimer != nil {
		s.hoverTimer.Stop()
	}
	s.hoverTimer = time.AfterFunc(HoverDebounce, func() {
		s.mu.Lock()
		if s.closed || s.hovered == hovered {
			s.mu.Unlock()
			return
		}
		s.hovered = hovered
		cb := s.recompute
		s.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
	s.mu.Unlock()
}

// TogglePause flips the viewer pause flag and returns the new state.
func (s *Scheduler) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

// Paused returns the viewer pause flag.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Hovered returns the debounced hover state.
func (s *Scheduler) Hovered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hovered
}

// Frame assembles the scheduler-owned portion of the layout frame state.
func (s *Scheduler) Frame() FrameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := make(map[string]bool, len(s.firstAppear))
	for id := range s.firstAppear {
		first[id] = true
	}
	return FrameState{
		Hovered:     s.hovered,
		Paused:      s.paused,
		FirstAppear: first,
	}
}

// Close cancels every timer. A timer left running after its owner is gone is
// a leak and a correctness bug.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.hoverTimer != nil {
		s.hoverTimer.Stop()
		s.hoverTimer = nil
	}
	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
	if s.purgeTimer != nil {
		s.purgeTimer.Stop()
		s.purgeTimer = nil
	}
	for id, t := range s.appearTimers {
		t.Stop()
		delete(s.appearTimers, id)
	}
	s.firstAppear = make(map[string]bool)
}
