package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToast(t *testing.T) {
	toast, err := NewToast("Build finished", 3)
	require.NoError(t, err)

	assert.Len(t, toast.ID, 26) // ULID
	assert.Equal(t, "Build finished", toast.Summary)
	assert.Equal(t, CategoryGeneral, toast.Category)
	assert.InDelta(t, time.Now().Unix(), toast.CreatedAt, 2)
}

func TestNewToast_UniqueIDs(t *testing.T) {
	a, err := NewToast("a", 1)
	require.NoError(t, err)
	b, err := NewToast("b", 1)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestToast_Validate(t *testing.T) {
	tests := []struct {
		name    string
		toast   Toast
		wantErr error
	}{
		{
			name:  "valid",
			toast: Toast{ID: "id-1", Height: 3},
		},
		{
			name:    "empty id",
			toast:   Toast{Height: 3},
			wantErr: ErrEmptyID,
		},
		{
			name:    "zero height",
			toast:   Toast{ID: "id-1"},
			wantErr: ErrInvalidHeight,
		},
		{
			name:    "negative height",
			toast:   Toast{ID: "id-1", Height: -1},
			wantErr: ErrInvalidHeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.toast.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToast_Normalize(t *testing.T) {
	toast := Toast{ID: "id-1", Height: 2}
	toast.Normalize()

	assert.Equal(t, CategoryGeneral, toast.Category)
	assert.NotZero(t, toast.CreatedAt)

	// Existing values are preserved
	custom := Toast{ID: "id-2", Height: 2, Category: Category("deploy"), CreatedAt: 42}
	custom.Normalize()
	assert.Equal(t, Category("deploy"), custom.Category)
	assert.Equal(t, int64(42), custom.CreatedAt)
}

func TestToast_RelativeTime(t *testing.T) {
	now := time.Now().Unix()

	tests := []struct {
		name      string
		createdAt int64
		want      string
	}{
		{"just now", now - 5, "just now"},
		{"minutes", now - 300, "5m ago"},
		{"hours", now - 7200, "2h ago"},
		{"days", now - 172800, "2d ago"},
		{"future", now + 100, "in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toast := Toast{CreatedAt: tt.createdAt}
			assert.Equal(t, tt.want, toast.RelativeTime())
		})
	}
}

func TestToast_Clone(t *testing.T) {
	toast := Toast{ID: "id-1", Height: 3, Summary: "original"}
	clone := toast.Clone()

	clone.Summary = "changed"
	assert.Equal(t, "original", toast.Summary)
	assert.Equal(t, "id-1", clone.ID)
}
