package view

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastd/internal/gesture"
	"github.com/jmylchreest/toastd/internal/store"
	"github.com/jmylchreest/toastd/internal/theme"
)

// Frame is one recomputed set of visual targets for a viewer, handed to the
// Sink boundary. Targets are parallel to Projection.
type Frame struct {
	Viewer     string
	Config     Config
	Theme      theme.Theme
	Projection []int
	Targets    []Target
	Hovered    bool
	Paused     bool
}

// Sink receives frames at the motion/render boundary. The core supplies only
// targets, never interpolated values.
type Sink interface {
	Apply(Frame)
}

// Viewer is one independent rendering surface over the shared store. It owns
// its projection, layout recompute, lifecycle scheduler and gesture arbiter;
// any number of viewers may share one store and recompute independently,
// each seeing a consistent snapshot per mutation.
type Viewer struct {
	name   string
	cfg    Config
	store  *store.Store
	themes *theme.Provider
	sched  *Scheduler
	arb    *gesture.Arbiter
	sink   Sink
	logger *slog.Logger

	events <-chan store.ChangeEvent
	done   chan struct{}

	// recomputeMu serializes recomputes so sinks observe frames in mutation
	// order.
	recomputeMu sync.Mutex

	mu      sync.Mutex
	running bool
	closed  bool
}

// NewViewer creates a viewer over the shared store. The store and theme
// provider are passed explicitly; there is no ambient lookup.
func NewViewer(name string, cfg Config, st *store.Store, themes *theme.Provider, sink Sink, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("viewer", name)

	v := &Viewer{
		name:   name,
		cfg:    cfg,
		store:  st,
		themes: themes,
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}
	v.sched = NewScheduler(st, cfg, logger)
	v.sched.SetRecomputeFunc(v.Recompute)
	v.arb = gesture.NewArbiter(st, cfg.Alignment.BottomAnchored(), gesture.Callbacks{
		TogglePause: func() { v.TogglePause() },
		Recompute:   v.Recompute,
	}, logger)

	themes.OnChange(func(theme.Theme) { v.Recompute() })
	return v
}

// Start subscribes to store changes and begins recomputing per mutation.
func (v *Viewer) Start() {
	v.mu.Lock()
	if v.running || v.closed {
		v.mu.Unlock()
		return
	}
	v.running = true
	v.events = v.store.Subscribe()
	v.mu.Unlock()

	go v.loop()
	v.Recompute()
}

// loop drives recomputes off store change events.
func (v *Viewer) loop() {
	for {
		select {
		case ev, ok := <-v.events:
			if !ok {
				return
			}
			if ev.Type == store.ChangeTypeShow {
				v.noteShown(ev)
			}
			v.Recompute()
		case <-v.done:
			return
		}
	}
}

// noteShown starts the first-appear grace for toasts this viewer displays.
func (v *Viewer) noteShown(ev store.ChangeEvent) {
	snap := v.store.Snapshot()
	if ev.Index < 0 || ev.Index >= len(snap.Toasts) {
		return
	}
	if v.cfg.Accepts(snap.Toasts[ev.Index].Category) {
		v.sched.NoteShown(ev.ID)
	}
}

// Recompute projects the current snapshot, computes layout targets,
// re-evaluates the scheduler timers and pushes the frame to the sink.
// Repeated recomputes with unchanged inputs yield value-identical frames.
func (v *Viewer) Recompute() {
	v.recomputeMu.Lock()
	defer v.recomputeMu.Unlock()

	snap := v.store.Snapshot()
	projection := Project(snap.Toasts, v.cfg.Categories)

	frameState := v.sched.Frame()
	frameState.DragOffsets = v.arb.Offsets()

	th := v.themes.Current()
	targets := ComputeLayout(snap, projection, v.cfg, th, frameState)

	v.sched.Evaluate(snap, projection)

	if v.sink != nil {
		v.sink.Apply(Frame{
			Viewer:     v.name,
			Config:     v.cfg,
			Theme:      th,
			Projection: projection,
			Targets:    targets,
			Hovered:    frameState.Hovered,
			Paused:     frameState.Paused,
		})
	}
}

// TogglePause flips the pause flag and recomputes. Returns the new state.
func (v *Viewer) TogglePause() bool {
	paused := v.sched.TogglePause()
	v.logger.Debug("pause toggled", "paused", paused)
	v.Recompute()
	return paused
}

// SetHovered updates the hover target; the scheduler debounces the flip and
// triggers the recompute itself.
func (v *Viewer) SetHovered(hovered bool) {
	v.sched.SetHovered(hovered)
}

// Paused returns the viewer pause flag.
func (v *Viewer) Paused() bool { return v.sched.Paused() }

// Arbiter exposes the viewer's gesture arbiter to the input boundary.
func (v *Viewer) Arbiter() *gesture.Arbiter { return v.arb }

// Name returns the viewer name.
func (v *Viewer) Name() string { return v.name }

// Config returns the viewer configuration.
func (v *Viewer) Config() Config { return v.cfg }

// Close cancels the subscription and every scheduler timer.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	running := v.running
	v.running = false
	events := v.events
	v.mu.Unlock()

	close(v.done)
	if running && events != nil {
		v.store.Unsubscribe(events)
	}
	v.sched.Close()
}
