package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialModeIsSplit(t *testing.T) {
	c := New(0, 0)
	require.Equal(t, Split, c.Mode())
	require.True(t, c.ShowsEditor())
	require.True(t, c.ShowsPreview())
}

func TestNarrowForcesEditWithoutRestore(t *testing.T) {
	c := New(0, 0)
	require.False(t, c.Resize(1024))
	require.Equal(t, Split, c.Mode())

	require.True(t, c.Resize(767))
	require.Equal(t, Edit, c.Mode())

	require.False(t, c.Resize(1920))
	require.Equal(t, Edit, c.Mode(), "growing back must not restore split")

	c.Select(Split)
	require.Equal(t, Split, c.Mode())
}

func TestResizeAtThresholdKeepsSplit(t *testing.T) {
	c := New(0, 0)
	require.False(t, c.Resize(768))
	require.Equal(t, Split, c.Mode())
}

func TestResizeNeverOverridesExplicitChoice(t *testing.T) {
	c := New(0, 0)
	c.Select(Preview)
	require.False(t, c.Resize(100))
	require.Equal(t, Preview, c.Mode())
	require.False(t, c.ShowsEditor())

	c.Select(Edit)
	require.False(t, c.Resize(100))
	require.Equal(t, Edit, c.Mode())
	require.False(t, c.ShowsPreview())
}

func TestResizeCols(t *testing.T) {
	c := New(0, 0)
	require.False(t, c.ResizeCols(96))
	require.True(t, c.ResizeCols(95))
	require.Equal(t, Edit, c.Mode())
}

func TestPanes(t *testing.T) {
	c := New(0, 0)
	e, p := c.Panes(121)
	require.Equal(t, 60, e)
	require.Equal(t, 61, p)

	c.Select(Edit)
	e, p = c.Panes(80)
	require.Equal(t, 80, e)
	require.Zero(t, p)

	c.Select(Preview)
	e, p = c.Panes(80)
	require.Zero(t, e)
	require.Equal(t, 80, p)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"edit": Edit, " Preview ": Preview, "split": Split, "": Split} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
		if in != "" {
			require.Equal(t, want.String(), got.String())
		}
	}
	_, err := ParseMode("tabs")
	require.Error(t, err)
}
