// Package theme provides the shared spacing theme consumed by viewers.
//
// The theme supplies the gap and padding used by the stack layout
// computation. It may change at runtime (see Watcher); every change must
// trigger a layout recompute in all viewers.
package theme

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Default spacing values.
const (
	DefaultGap     = 14.0
	DefaultPadding = 32.0
)

// Insets describes box insets around the viewer edge.
type Insets struct {
	Top    float64 `toml:"top"`
	Right  float64 `toml:"right"`
	Bottom float64 `toml:"bottom"`
	Left   float64 `toml:"left"`
}

// Uniform returns insets with the same value on every edge.
func Uniform(v float64) Insets {
	return Insets{Top: v, Right: v, Bottom: v, Left: v}
}

// Theme holds the spacing parameters shared by all viewers.
type Theme struct {
	// Gap is the vertical spacing between stacked toasts.
	Gap float64 `toml:"gap"`
	// ViewerPadding is the inset between the viewer edge and the stack.
	ViewerPadding Insets `toml:"viewer_padding"`
}

// Default returns the built-in theme.
func Default() Theme {
	return Theme{
		Gap:           DefaultGap,
		ViewerPadding: Uniform(DefaultPadding),
	}
}

// Load reads a theme from a TOML file. A missing file yields the default
// theme; a malformed file is an error.
func Load(path string) (Theme, error) {
	th := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return th, nil
		}
		return th, err
	}

	if err := toml.Unmarshal(data, &th); err != nil {
		return Default(), err
	}
	th.clamp()
	return th, nil
}

// clamp keeps spacing values sane; negative spacing has no meaning.
func (t *Theme) clamp() {
	if t.Gap < 0 {
		t.Gap = 0
	}
	for _, v := range []*float64{
		&t.ViewerPadding.Top, &t.ViewerPadding.Right,
		&t.ViewerPadding.Bottom, &t.ViewerPadding.Left,
	} {
		if *v < 0 {
			*v = 0
		}
	}
}

// Provider hands out the current theme and notifies on change. It is the
// dynamic half of the theme boundary: viewers pull Current on each recompute
// and register for change callbacks to trigger one.
type Provider struct {
	mu       sync.RWMutex
	current  Theme
	onChange []func(Theme)
}

// NewProvider creates a Provider with the given initial theme.
func NewProvider(initial Theme) *Provider {
	return &Provider{current: initial}
}

// Current returns the active theme.
func (p *Provider) Current() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Set replaces the active theme and invokes all change callbacks.
func (p *Provider) Set(th Theme) {
	th.clamp()
	p.mu.Lock()
	p.current = th
	callbacks := make([]func(Theme), len(p.onChange))
	copy(callbacks, p.onChange)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(th)
	}
}

// OnChange registers a callback invoked whenever the theme changes.
func (p *Provider) OnChange(cb func(Theme)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, cb)
}

// ThemePath returns the default theme file location.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ThemePath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastd", "theme.toml")
}
