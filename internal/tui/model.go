// Package tui provides the BubbleTea-based terminal reference renderer.
//
// It sits on the core's Sink boundary: viewers push frames of layout targets
// and the TUI draws them. It never feeds presentation state back into the
// lifecycle machinery except through the same controls a pointer would
// (pause, hover, dismiss).
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/motion"
	"github.com/jmylchreest/toastd/internal/store"
	"github.com/jmylchreest/toastd/internal/view"
)

// frameMsg delivers a recomputed viewer frame into the update loop.
type frameMsg struct {
	frame view.Frame
}

// tickMsg drives animation sampling between frames.
type tickMsg time.Time

// animInterval is the sampling cadence while any tween is in flight.
const animInterval = 50 * time.Millisecond

func animTick() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Sink bridges viewer recomputes into the running BubbleTea program.
// Frames pushed before the program is attached are dropped; the first
// recompute after attach repopulates everything.
type Sink struct {
	mu sync.Mutex
	p  *tea.Program
}

// NewSink creates an unattached sink.
func NewSink() *Sink {
	return &Sink{}
}

// Attach binds the sink to a running program.
func (s *Sink) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

// Apply implements view.Sink.
func (s *Sink) Apply(frame view.Frame) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()

	if p != nil {
		p.Send(frameMsg{frame: frame})
	}
}

// Model is the main TUI model.
type Model struct {
	store   *store.Store
	viewers []*view.Viewer

	// Latest frame per viewer name
	frames map[string]view.Frame
	order  []string

	// Per-toast opacity tweens interpolating toward the latest layout
	// targets; the core only ever hands us endpoints
	anims   map[string]*motion.Tween
	ticking bool

	// Simulated pointer state; a terminal has no hover, so a key stands in
	hovering bool

	width  int
	height int

	keys     KeyMap
	help     help.Model
	showHelp bool

	sampleHeight float64
	sampleCount  int
}

// New creates a new TUI model over the shared store and its viewers.
func New(st *store.Store, viewers []*view.Viewer, sampleHeight float64) Model {
	order := make([]string, 0, len(viewers))
	for _, v := range viewers {
		order = append(order, v.Name())
	}

	return Model{
		store:        st,
		viewers:      viewers,
		frames:       make(map[string]view.Frame),
		order:        order,
		anims:        make(map[string]*motion.Tween),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		sampleHeight: sampleHeight,
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.frames[msg.frame.Viewer] = msg.frame
		m.retarget(msg.frame)
		if m.animating() && !m.ticking {
			m.ticking = true
			return m, animTick()
		}
		return m, nil

	case tickMsg:
		if m.animating() {
			return m, animTick()
		}
		m.ticking = false
		return m, nil
	}

	return m, nil
}

// retarget points each toast's opacity tween at its latest layout target and
// drops tweens for toasts no longer present in any frame.
func (m Model) retarget(frame view.Frame) {
	for _, t := range frame.Targets {
		tw, ok := m.anims[t.ID]
		if !ok {
			// New toasts fade in from fully transparent
			tw = motion.NewTween(0, motion.DefaultProfile())
			m.anims[t.ID] = tw
		}
		tw.To(t.Opacity)
	}

	live := make(map[string]bool)
	for _, f := range m.frames {
		for _, t := range f.Targets {
			live[t.ID] = true
		}
	}
	for id := range m.anims {
		if !live[id] {
			delete(m.anims, id)
		}
	}
}

// animating reports whether any opacity tween is still in flight.
func (m Model) animating() bool {
	for _, tw := range m.anims {
		if !tw.Done() {
			return true
		}
	}
	return false
}

// presentedOpacity samples the animated opacity for a toast, falling back to
// the raw target when no tween exists.
func (m Model) presentedOpacity(id string, target float64) float64 {
	if tw, ok := m.anims[id]; ok {
		return tw.Value()
	}
	return target
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		// A tap outside the hovered stack toggles pause
		for _, v := range m.viewers {
			v.Arbiter().Tap(m.hovering)
		}
		return m, nil

	case key.Matches(msg, m.keys.Hover):
		m.hovering = !m.hovering
		for _, v := range m.viewers {
			v.SetHovered(m.hovering)
		}
		return m, nil

	case key.Matches(msg, m.keys.Sample):
		m.sampleCount++
		m.showSample()
		return m, nil

	case key.Matches(msg, m.keys.DismissOldest):
		m.dismiss(true)
		return m, nil

	case key.Matches(msg, m.keys.DismissNewest):
		m.dismiss(false)
		return m, nil
	}

	return m, nil
}

// sampleCategories cycles the well-known categories for demo toasts.
var sampleCategories = []model.Category{
	model.CategoryGeneral,
	model.CategorySuccess,
	model.CategoryWarning,
	model.CategoryError,
}

// showSample pushes a demo toast into the store.
func (m Model) showSample() {
	cat := sampleCategories[(m.sampleCount-1)%len(sampleCategories)]
	toast, err := model.NewToast(fmt.Sprintf("Sample toast #%d", m.sampleCount), m.sampleHeight)
	if err != nil {
		return
	}
	toast.Category = cat
	toast.Body = fmt.Sprintf("A %s notification for demonstration.", cat)
	_ = m.store.Show(*toast)
}

// dismiss hides the oldest or newest not-yet-deleted toast.
func (m Model) dismiss(oldest bool) {
	snap := m.store.Snapshot()
	if oldest {
		for i := range snap.Toasts {
			if !snap.IsMarked(i) {
				m.store.HideIndex(i)
				return
			}
		}
		return
	}
	for i := len(snap.Toasts) - 1; i >= 0; i-- {
		if !snap.IsMarked(i) {
			m.store.HideIndex(i)
			return
		}
	}
}

// Styles.
var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("3")).
			Padding(0, 1)

	categoryColors = map[model.Category]lipgloss.Color{
		model.CategoryGeneral: lipgloss.Color("4"),
		model.CategorySuccess: lipgloss.Color("2"),
		model.CategoryWarning: lipgloss.Color("3"),
		model.CategoryError:   lipgloss.Color("1"),
	}
)

// View renders every viewer's current stack from one store snapshot.
func (m Model) View() string {
	var b strings.Builder

	snap := m.store.Snapshot()

	b.WriteString(titleStyle.Render("toastd"))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  %d active", len(snap.Toasts))))
	if m.hovering {
		b.WriteString(" " + badgeStyle.Render("hover"))
	}
	b.WriteString("\n\n")

	for _, name := range m.order {
		frame, ok := m.frames[name]
		if !ok {
			continue
		}
		b.WriteString(m.renderViewer(frame, snap))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString("\n" + m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString("\n" + m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return b.String()
}

// renderViewer draws one viewer's stack from its latest frame.
func (m Model) renderViewer(frame view.Frame, snap store.Snapshot) string {
	var b strings.Builder

	header := fmt.Sprintf("%s (%s)", frame.Viewer, frame.Config.Alignment)
	b.WriteString(titleStyle.Render(header))
	if frame.Paused {
		b.WriteString(" " + badgeStyle.Render("paused"))
	}
	b.WriteString("\n")

	// Visible targets ordered by rank, newest (rank 0) first. Animated
	// opacity keeps a toast on screen while it fades out.
	visible := make([]view.Target, 0, len(frame.Targets))
	for _, t := range frame.Targets {
		if m.presentedOpacity(t.ID, t.Opacity) > 0.05 {
			visible = append(visible, t)
		}
	}
	for i := 0; i < len(visible)-1; i++ {
		for j := i + 1; j < len(visible); j++ {
			if visible[j].Rank < visible[i].Rank {
				visible[i], visible[j] = visible[j], visible[i]
			}
		}
	}

	if len(visible) == 0 {
		b.WriteString(statusStyle.Render("  (empty)") + "\n")
		return b.String()
	}

	// Bottom-anchored stacks grow upward: newest at the bottom
	if frame.Config.Alignment.BottomAnchored() {
		for i, j := 0, len(visible)-1; i < j; i, j = i+1, j-1 {
			visible[i], visible[j] = visible[j], visible[i]
		}
	}

	width := int(frame.Config.Width)
	if width <= 0 || width > m.width-4 {
		width = max(20, m.width-4)
	}

	for _, t := range visible {
		b.WriteString(m.renderToast(frame, snap, t, width))
		b.WriteString("\n")
	}

	return b.String()
}

// renderToast draws a single toast box from its layout target.
func (m Model) renderToast(frame view.Frame, snap store.Snapshot, t view.Target, width int) string {
	color := lipgloss.Color("4")
	summary := t.ID
	meta := ""
	if entry, ok := lookupToast(snap, t.ID); ok {
		if c, exists := categoryColors[entry.Category]; exists {
			color = c
		}
		summary = entry.Summary
		meta = fmt.Sprintf("%s · %s", entry.Category, humanize.Time(entry.CreatedAtTime()))
		if entry.Body != "" {
			summary = summary + "\n" + statusStyle.Render(entry.Body)
		}
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(width).
		Padding(0, 1)

	// Faint stands in for partial opacity: toasts stacked behind, and
	// toasts mid-fade in either direction
	dimmed := t.Rank > 0 && !frame.Hovered && !frame.Paused
	if m.presentedOpacity(t.ID, t.Opacity) < 0.95 {
		dimmed = true
	}
	if dimmed {
		boxStyle = boxStyle.Faint(true)
	}

	content := summary
	if meta != "" {
		content += "\n" + statusStyle.Render(meta)
	}

	return boxStyle.Render(content)
}

// lookupToast resolves a toast ID against a store snapshot.
func lookupToast(snap store.Snapshot, id string) (model.Toast, bool) {
	for _, t := range snap.Toasts {
		if t.ID == id {
			return t, true
		}
	}
	return model.Toast{}, false
}
