package view

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/store"
	"github.com/jmylchreest/toastd/internal/theme"
)

// captureSink records every frame it receives.
type captureSink struct {
	mu     sync.Mutex
	frames []Frame
}

func (s *captureSink) Apply(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *captureSink) last() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

func newTestViewer(t *testing.T, cfg Config) (*Viewer, *store.Store, *captureSink) {
	t.Helper()
	st := store.NewStore()
	sink := &captureSink{}
	v := NewViewer("test", cfg, st, theme.NewProvider(theme.Default()), sink, nil)
	t.Cleanup(func() {
		v.Close()
		_ = st.Close()
	})
	return v, st, sink
}

func noDismiss() Config {
	cfg := DefaultConfig()
	cfg.Delay = nil
	return cfg
}

func TestViewer_RecomputePushesFrame(t *testing.T) {
	v, st, sink := newTestViewer(t, noDismiss())

	require.NoError(t, st.Show(model.Toast{ID: "a", Height: 3}))
	v.Recompute()

	frame, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, "test", frame.Viewer)
	assert.Equal(t, []int{0}, frame.Projection)
	require.Len(t, frame.Targets, 1)
	assert.Equal(t, "a", frame.Targets[0].ID)
}

func TestViewer_StartFollowsStore(t *testing.T) {
	v, st, sink := newTestViewer(t, noDismiss())
	v.Start()

	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, st.Show(model.Toast{ID: id, Height: 3}))
	}

	// Newest stacks in front: C rank 0, B rank 1, A rank 2
	assert.Eventually(t, func() bool {
		frame, ok := sink.last()
		return ok && len(frame.Targets) == 3 &&
			frame.Targets[2].Rank == 0 &&
			frame.Targets[1].Rank == 1 &&
			frame.Targets[0].Rank == 2
	}, time.Second, 5*time.Millisecond)
}

func TestViewer_CategoryFilter(t *testing.T) {
	cfg := noDismiss()
	cfg.Categories = []model.Category{model.CategoryError}
	v, st, sink := newTestViewer(t, cfg)

	require.NoError(t, st.Show(model.Toast{ID: "a", Height: 3, Category: model.CategoryGeneral}))
	require.NoError(t, st.Show(model.Toast{ID: "b", Height: 3, Category: model.CategoryError}))
	v.Recompute()

	frame, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, []int{1}, frame.Projection)
	require.Len(t, frame.Targets, 1)
	assert.Equal(t, "b", frame.Targets[0].ID)
	assert.Equal(t, 0, frame.Targets[0].Rank)
}

func TestViewer_TogglePause(t *testing.T) {
	v, _, sink := newTestViewer(t, noDismiss())

	assert.True(t, v.TogglePause())
	assert.True(t, v.Paused())

	frame, ok := sink.last()
	require.True(t, ok)
	assert.True(t, frame.Paused)

	assert.False(t, v.TogglePause())
	assert.False(t, v.Paused())
}

func TestViewer_ThemeChangeRecomputes(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	sink := &captureSink{}
	themes := theme.NewProvider(theme.Default())

	v := NewViewer("themed", noDismiss(), st, themes, sink, nil)
	defer v.Close()

	themes.Set(theme.Theme{Gap: 99})

	frame, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, 99.0, frame.Theme.Gap)
}

func TestViewer_AutoDismissThenPurge(t *testing.T) {
	cfg := DefaultConfig()
	delay := 40 * time.Millisecond
	cfg.Delay = &delay
	v, st, _ := newTestViewer(t, cfg)
	v.Start()

	require.NoError(t, st.Show(model.Toast{ID: "only", Height: 3}))

	// Auto-dismiss marks it, then the purge grace window clears the store
	assert.Eventually(t, func() bool {
		return st.Snapshot().IsMarked(0)
	}, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return st.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViewer_DragBlocksAutoDismiss(t *testing.T) {
	cfg := DefaultConfig()
	delay := 50 * time.Millisecond
	cfg.Delay = &delay
	v, st, _ := newTestViewer(t, cfg)
	v.Start()

	require.NoError(t, st.Show(model.Toast{ID: "held", Height: 3}))
	require.True(t, v.Arbiter().DragStart("held"))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, st.Snapshot().MarkedDeleted)

	// Releasing below threshold re-enables auto-dismiss
	v.Arbiter().DragEnd("held", 0)
	assert.Eventually(t, func() bool {
		return st.Snapshot().IsMarked(0)
	}, time.Second, 5*time.Millisecond)
}

func TestViewer_Close(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	sink := &captureSink{}
	v := NewViewer("closing", noDismiss(), st, theme.NewProvider(theme.Default()), sink, nil)

	v.Start()
	v.Close()
	v.Close() // idempotent
}
