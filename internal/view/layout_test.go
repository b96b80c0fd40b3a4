package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/store"
	"github.com/jmylchreest/toastd/internal/theme"
)

// layoutSnapshot builds a snapshot of toasts A, B, C (oldest first) with
// heights 30, 20 and 10.
func layoutSnapshot() store.Snapshot {
	return store.Snapshot{
		Toasts: []model.Toast{
			{ID: "A", Height: 30},
			{ID: "B", Height: 20},
			{ID: "C", Height: 10},
		},
		MarkedDeleted: map[int]bool{},
		Dragging:      map[int]bool{},
	}
}

func layoutTheme() theme.Theme {
	return theme.Theme{Gap: 8}
}

func layoutConfig() Config {
	delay := 4 * time.Second
	return Config{
		Alignment:    AlignBottomRight,
		Delay:        &delay,
		VisibleCount: 3,
	}
}

func TestComputeLayout_Collapsed(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 1, 2}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), FrameState{})
	require.Len(t, targets, 3)

	// Newest toast C is rank 0 at the anchor, older toasts peek behind
	assert.Equal(t, 2, targets[0].Rank) // A
	assert.Equal(t, 1, targets[1].Rank) // B
	assert.Equal(t, 0, targets[2].Rank) // C

	// Expanded offsets accumulate height+gap of everything newer
	assert.Equal(t, 0.0, targets[2].ExpandedOffset)
	assert.Equal(t, 18.0, targets[1].ExpandedOffset) // 10+8
	assert.Equal(t, 46.0, targets[0].ExpandedOffset) // 10+8+20+8

	// Collapsed offsets are gap * rank
	assert.Equal(t, 0.0, targets[2].Offset)
	assert.Equal(t, 8.0, targets[1].Offset)
	assert.Equal(t, 16.0, targets[0].Offset)

	// Scale shrinks by rank
	assert.InDelta(t, 1.00, targets[2].Scale, 1e-9)
	assert.InDelta(t, 0.97, targets[1].Scale, 1e-9)
	assert.InDelta(t, 0.94, targets[0].Scale, 1e-9)

	for _, target := range targets {
		assert.Equal(t, 1.0, target.Opacity)
	}
}

func TestComputeLayout_Hovered(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 1, 2}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(),
		FrameState{Hovered: true})

	// Hover expands the stack to full offsets at full scale
	assert.Equal(t, 0.0, targets[2].Offset)
	assert.Equal(t, 18.0, targets[1].Offset)
	assert.Equal(t, 46.0, targets[0].Offset)
	for _, target := range targets {
		assert.Equal(t, 1.0, target.Scale)
	}
}

func TestComputeLayout_PausedExpandsLikeHover(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 1, 2}

	hovered := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(),
		FrameState{Hovered: true})
	paused := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(),
		FrameState{Paused: true})

	assert.Equal(t, hovered, paused)
}

func TestComputeLayout_MarkedDeleted(t *testing.T) {
	snap := layoutSnapshot()
	snap.MarkedDeleted[1] = true // B is animating out
	projection := []int{0, 1, 2}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), FrameState{})

	// B holds the rank and accumulator current at its slot without
	// advancing either, so A closes up beneath it
	b := targets[1]
	assert.True(t, b.MarkedDeleted)
	assert.Equal(t, 1, b.Rank)
	assert.Equal(t, 18.0, b.ExpandedOffset)
	assert.Equal(t, -(20.0+16.0)+8.0, b.Offset) // slides past the anchor edge
	assert.Equal(t, 0.0, b.Opacity)

	a := targets[0]
	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, 18.0, a.ExpandedOffset)
	assert.Equal(t, 8.0, a.Offset)
	assert.Equal(t, 1.0, a.Opacity)
}

func TestComputeLayout_VisibleCount(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 1, 2}

	cfg := layoutConfig()
	cfg.VisibleCount = 1
	targets := ComputeLayout(snap, projection, cfg, layoutTheme(), FrameState{})

	assert.Equal(t, 1.0, targets[2].Opacity)
	assert.Equal(t, 0.0, targets[1].Opacity)
	assert.Equal(t, 0.0, targets[0].Opacity)

	// A non-positive count still shows the newest toast
	cfg.VisibleCount = 0
	targets = ComputeLayout(snap, projection, cfg, layoutTheme(), FrameState{})
	assert.Equal(t, 1.0, targets[2].Opacity)
	assert.Equal(t, 0.0, targets[1].Opacity)
}

func TestComputeLayout_FirstAppear(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 1, 2}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(),
		FrameState{FirstAppear: map[string]bool{"C": true}})

	c := targets[2]
	assert.True(t, c.FirstAppear)
	assert.Equal(t, EntranceOffset, c.Offset)
	assert.Equal(t, EntranceScale, c.Scale)
	assert.Equal(t, 0.0, c.Opacity)

	// Entrance state of the newest toast does not disturb older ranks
	assert.Equal(t, 1, targets[1].Rank)
	assert.Equal(t, 2, targets[0].Rank)
}

func TestComputeLayout_DragOffsets(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 1, 2}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(),
		FrameState{DragOffsets: map[string]float64{"C": 42.5}})

	assert.Equal(t, 42.5, targets[2].DragOffset)
	assert.Equal(t, 0.0, targets[1].DragOffset)
}

func TestComputeLayout_FilteredProjection(t *testing.T) {
	snap := layoutSnapshot()
	projection := []int{0, 2} // B filtered out

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), FrameState{})
	require.Len(t, targets, 2)

	assert.Equal(t, 2, targets[1].MasterIndex)
	assert.Equal(t, 0, targets[1].Rank)
	assert.Equal(t, 0, targets[0].MasterIndex)
	assert.Equal(t, 1, targets[0].Rank)
	assert.Equal(t, 18.0, targets[0].ExpandedOffset) // only C counts
}

// Unmarked ranks always form a permutation of 0..k-1.
func TestComputeLayout_RankPermutation(t *testing.T) {
	snap := layoutSnapshot()
	snap.MarkedDeleted[0] = true
	projection := []int{0, 1, 2}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), FrameState{})

	seen := map[int]bool{}
	for _, target := range targets {
		if target.MarkedDeleted {
			continue
		}
		assert.False(t, seen[target.Rank], "duplicate rank %d", target.Rank)
		seen[target.Rank] = true
	}
	for r := 0; r < len(seen); r++ {
		assert.True(t, seen[r], "missing rank %d", r)
	}
}

// Identical inputs must yield identical targets.
func TestComputeLayout_Pure(t *testing.T) {
	snap := layoutSnapshot()
	snap.MarkedDeleted[1] = true
	projection := []int{0, 1, 2}
	frame := FrameState{Hovered: true, DragOffsets: map[string]float64{"A": 3}}

	first := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), frame)
	second := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), frame)
	assert.Equal(t, first, second)
}

func TestComputeLayout_Empty(t *testing.T) {
	snap := store.Snapshot{MarkedDeleted: map[int]bool{}, Dragging: map[int]bool{}}
	targets := ComputeLayout(snap, nil, layoutConfig(), layoutTheme(), FrameState{})
	assert.Empty(t, targets)
}

func TestComputeLayout_DeepStackScaleFloor(t *testing.T) {
	toasts := make([]model.Toast, 40)
	projection := make([]int, 40)
	for i := range toasts {
		toasts[i] = model.Toast{ID: string(rune('a' + i%26)), Height: 1}
		projection[i] = i
	}
	snap := store.Snapshot{
		Toasts:        toasts,
		MarkedDeleted: map[int]bool{},
		Dragging:      map[int]bool{},
	}

	targets := ComputeLayout(snap, projection, layoutConfig(), layoutTheme(), FrameState{})
	for _, target := range targets {
		assert.GreaterOrEqual(t, target.Scale, 0.0)
		assert.GreaterOrEqual(t, target.Opacity, 0.0)
		assert.LessOrEqual(t, target.Opacity, 1.0)
	}
}
