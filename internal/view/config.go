// Package view implements toast viewers: per-viewer projection of the shared
// store, the stack layout computation and the lifecycle scheduling that
// drives auto-dismiss and purge.
package view

import (
	"fmt"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// Alignment identifies the screen corner or edge a viewer anchors to.
type Alignment int

const (
	AlignBottomRight Alignment = iota
	AlignBottomLeft
	AlignBottomCenter
	AlignTopRight
	AlignTopLeft
	AlignTopCenter
)

// alignmentNames maps alignment values to their config spelling.
var alignmentNames = map[Alignment]string{
	AlignBottomRight:  "bottom-right",
	AlignBottomLeft:   "bottom-left",
	AlignBottomCenter: "bottom-center",
	AlignTopRight:     "top-right",
	AlignTopLeft:      "top-left",
	AlignTopCenter:    "top-center",
}

// String returns the config spelling of the alignment.
func (a Alignment) String() string {
	if name, ok := alignmentNames[a]; ok {
		return name
	}
	return "unknown"
}

// BottomAnchored reports whether the viewer anchors to the bottom edge.
// The dismiss-drag direction points away from the anchor edge.
func (a Alignment) BottomAnchored() bool {
	switch a {
	case AlignBottomRight, AlignBottomLeft, AlignBottomCenter:
		return true
	}
	return false
}

// ParseAlignment parses a config spelling into an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	for a, name := range alignmentNames {
		if name == s {
			return a, nil
		}
	}
	return AlignBottomRight, fmt.Errorf("unknown alignment %q", s)
}

// Default viewer parameters.
const (
	DefaultVisibleCount = 3
	DefaultDelay        = 4 * time.Second
	DefaultWidth        = 44.0
)

// Config is the immutable per-viewer configuration.
type Config struct {
	// Alignment selects the anchor corner/edge.
	Alignment Alignment

	// Delay is the idle time before the oldest toast auto-dismisses.
	// nil disables auto-dismiss entirely.
	Delay *time.Duration

	// VisibleCount caps how many stacked toasts are visible at once.
	VisibleCount int

	// Categories is the allow-list of toast categories this viewer shows.
	// nil or empty accepts everything.
	Categories []model.Category

	// Width and WidthThreshold are responsive layout parameters handed
	// through to the renderer boundary. Zero means unset.
	Width          float64
	WidthThreshold float64
}

// DefaultConfig returns a bottom-right viewer with the standard delay.
func DefaultConfig() Config {
	delay := DefaultDelay
	return Config{
		Alignment:    AlignBottomRight,
		Delay:        &delay,
		VisibleCount: DefaultVisibleCount,
		Width:        DefaultWidth,
	}
}

// Accepts reports whether this viewer displays toasts of the given category.
func (c Config) Accepts(cat model.Category) bool {
	if len(c.Categories) == 0 {
		return true
	}
	for _, allowed := range c.Categories {
		if allowed == cat {
			return true
		}
	}
	return false
}
