package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	th := Default()
	assert.Equal(t, DefaultGap, th.Gap)
	assert.Equal(t, Uniform(DefaultPadding), th.ViewerPadding)
}

func TestUniform(t *testing.T) {
	in := Uniform(10)
	assert.Equal(t, Insets{Top: 10, Right: 10, Bottom: 10, Left: 10}, in)
}

func TestLoad_MissingFile(t *testing.T) {
	th, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), th)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	content := `
gap = 20

[viewer_padding]
top = 10
right = 12
bottom = 14
left = 16
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, th.Gap)
	assert.Equal(t, Insets{Top: 10, Right: 12, Bottom: 14, Left: 16}, th.ViewerPadding)
}

func TestLoad_ClampsNegatives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	content := `
gap = -5

[viewer_padding]
top = -1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, th.Gap)
	assert.Equal(t, 0.0, th.ViewerPadding.Top)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	require.NoError(t, os.WriteFile(path, []byte("gap = ["), 0644))

	th, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), th)
}

func TestProvider(t *testing.T) {
	p := NewProvider(Default())
	assert.Equal(t, Default(), p.Current())

	var got []Theme
	p.OnChange(func(th Theme) { got = append(got, th) })

	next := Theme{Gap: 5, ViewerPadding: Uniform(1)}
	p.Set(next)

	assert.Equal(t, next, p.Current())
	require.Len(t, got, 1)
	assert.Equal(t, next, got[0])
}

func TestProvider_SetClamps(t *testing.T) {
	p := NewProvider(Default())
	p.Set(Theme{Gap: -3})
	assert.Equal(t, 0.0, p.Current().Gap)
}

func TestThemePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "toastd", "theme.toml"), ThemePath())
}
