// Package model defines the core data structures for toastd.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category tags a toast for viewer filtering. It is an opaque,
// equality-comparable identifier; custom categories are permitted.
type Category string

// Well-known categories.
const (
	CategoryGeneral Category = "general"
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// CategoryNames maps the well-known categories to human-readable names.
var CategoryNames = map[Category]string{
	CategoryGeneral: "general",
	CategorySuccess: "success",
	CategoryWarning: "warning",
	CategoryError:   "error",
}

// Toast represents a single active notification entry. A Toast is immutable
// after creation: lifecycle state (marked-deleted, dragging) lives in the
// store's index sets, not on the toast itself.
type Toast struct {
	// ID is a ULID, unique and stable for the toast's lifetime in the store.
	ID string `json:"id" yaml:"id"`

	// Height is the caller-declared layout height used by the stacking
	// offset computation. The core never measures content.
	Height float64 `json:"height" yaml:"height"`

	// Category selects which viewers display this toast.
	Category Category `json:"category" yaml:"category"`

	// CreatedAt is the arrival timestamp (unix seconds).
	CreatedAt int64 `json:"created_at" yaml:"created_at"`

	// Summary and Body are the displayable content. The core treats them
	// as an opaque payload for the renderer boundary.
	Summary string `json:"summary" yaml:"summary"`
	Body    string `json:"body,omitempty" yaml:"body,omitempty"`

	// Render, when set, overrides the renderer's default presentation.
	// The core never inspects it.
	Render any `json:"-" yaml:"-"`
}

// Validation errors.
var (
	ErrEmptyID       = errors.New("toast id cannot be empty")
	ErrInvalidHeight = errors.New("toast height must be greater than 0")
)

// NewToast creates a Toast with a generated ULID, the current timestamp and
// the general category. Height defaults are applied by the caller's config.
func NewToast(summary string, height float64) (*Toast, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Toast{
		ID:        id.String(),
		Height:    height,
		Category:  CategoryGeneral,
		CreatedAt: time.Now().Unix(),
		Summary:   summary,
	}, nil
}

// Validate checks that the toast has the fields the store requires.
func (t *Toast) Validate() error {
	if t.ID == "" {
		return ErrEmptyID
	}
	if t.Height <= 0 {
		return ErrInvalidHeight
	}
	return nil
}

// Normalize fills defaulted fields on a caller-constructed toast.
func (t *Toast) Normalize() {
	if t.Category == "" {
		t.Category = CategoryGeneral
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
}

// CreatedAtTime returns the arrival timestamp as a time.Time.
func (t *Toast) CreatedAtTime() time.Time {
	return time.Unix(t.CreatedAt, 0)
}

// RelativeTime returns a short relative age string, e.g. "just now" or "5m ago".
func (t *Toast) RelativeTime() string {
	diff := time.Now().Unix() - t.CreatedAt
	if diff < 0 {
		return "in the future"
	}
	if diff < 60 {
		return "just now"
	}
	if diff < 3600 {
		return fmt.Sprintf("%dm ago", diff/60)
	}
	if diff < 86400 {
		return fmt.Sprintf("%dh ago", diff/3600)
	}
	return fmt.Sprintf("%dd ago", diff/86400)
}

// Clone returns a copy of the toast.
func (t *Toast) Clone() *Toast {
	clone := *t
	return &clone
}
