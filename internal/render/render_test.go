package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlamourRendersHeadingText(t *testing.T) {
	g := NewGlamour("notty")
	out, err := g.Render("# Title\n\nSome *body* text.\n", 40)
	require.NoError(t, err)
	require.Contains(t, out, "Title")
	require.Contains(t, out, "body")

	again, err := g.Render("# Title\n\nSome *body* text.\n", 40)
	require.NoError(t, err)
	require.Equal(t, out, again)
	require.Len(t, g.cache, 1)
}

func TestGlamourDefaultsStyle(t *testing.T) {
	require.Equal(t, DefaultStyle, NewGlamour(" ").Style)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, NewGlamour("ascii"), "hello\r\nworld", 20))
	require.True(t, strings.Contains(buf.String(), "hello"))
}

func TestDeferredOnlyLatestTickRenders(t *testing.T) {
	d := NewDeferred(0)
	require.Equal(t, DefaultDebounce, d.Delay)

	t1 := d.Request()
	t2 := d.Request()
	require.False(t, d.Due(t1))
	require.True(t, d.Due(t2))
	require.True(t, d.Pending())
}

func TestDeferredNeverAcceptsOutOfOrder(t *testing.T) {
	d := NewDeferred(0)
	t1 := d.Request()
	t2 := d.Request()

	require.True(t, d.Accept(t2))
	require.False(t, d.Accept(t1), "older render must not replace a newer one")
	require.False(t, d.Accept(t2))
	require.False(t, d.Pending())

	t3 := d.Request()
	require.True(t, d.Pending())
	require.True(t, d.Accept(t3))
}
