package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marksmart/internal/layout"
)

func loaded(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	require.NoError(t, Load(context.Background(), v))
	return v
}

func TestCheckConfigValidityValid(t *testing.T) {
	v := loaded(t)
	require.NoError(t, CheckConfigValidity(v))
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := loaded(t)
	v.Set("view.mode", "tabs")
	v.Set("view.min_split_width", 0)
	v.Set("view.cell_width", -1)
	v.Set("render.style", "neon")
	v.Set("render.debounce", "soon")
	v.Set("render.word_wrap", 0)
	v.Set("ai.model", "")
	v.Set("ai.timeout", "0s")
	v.Set("log.level", "loud")
	v.Set("files.downloads_dir", "")

	err := CheckConfigValidity(v)
	require.Error(t, err)

	msg := err.Error()
	expected := []string{
		"view.mode",
		"view.min_split_width must be greater than 0",
		"view.cell_width must be greater than 0",
		`render.style "neon"`,
		`render.debounce "soon" is not a duration`,
		"render.word_wrap must be greater than 0",
		"ai.model is required",
		"ai.timeout must be greater than 0",
		`log.level "loud"`,
		"files.downloads_dir is required",
	}
	for _, want := range expected {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected error to contain %q, got %q", want, msg)
		}
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[view]\nmode = \"preview\"\n[render]\nstyle = \"light\"\n"), 0o600))
	t.Setenv("MARKSMART_RENDER_STYLE", "ascii")

	v := viper.New()
	v.SetConfigFile(cfg)
	require.NoError(t, Load(context.Background(), v))

	s := FromViper(v)
	require.Equal(t, layout.Preview, s.ViewMode)
	require.Equal(t, "ascii", s.RenderStyle, "env overrides file")
	require.Equal(t, layout.DefaultMinSplitWidth, s.MinSplitWidth)
	require.Equal(t, 150*time.Millisecond, s.Debounce)
	require.True(t, s.NativePicker)
	require.NotEmpty(t, s.DownloadsDir)
	require.NotEmpty(t, s.LogFile)
}

func TestLoadMalformedFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[view\nmode = "), 0o600))
	v := viper.New()
	v.SetConfigFile(cfg)
	require.Error(t, Load(context.Background(), v))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, Load(context.Background(), v))
}

func TestFromViperFallsBackOnBadDurations(t *testing.T) {
	v := loaded(t)
	v.Set("render.debounce", "nope")
	v.Set("ai.timeout", "-1s")
	s := FromViper(v)
	require.Equal(t, 150*time.Millisecond, s.Debounce)
	require.Equal(t, time.Minute, s.AITimeout)
}

func TestRenderDefaultTOMLRoundTrips(t *testing.T) {
	out := RenderDefaultTOML()
	require.Contains(t, out, "[view]\n")
	require.Contains(t, out, "min_split_width = 768")
	require.Contains(t, out, `style = "dracula"`)

	cfg := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(out), 0o600))
	v := viper.New()
	v.SetConfigFile(cfg)
	require.NoError(t, Load(context.Background(), v))
	require.NoError(t, CheckConfigValidity(v))
}

func TestUpdateTOMLAddsMissingAndCommentsUnknown(t *testing.T) {
	existing := "[view]\nmode = \"edit\"\nlegacy = 1\n"
	updated, changed := UpdateTOML(existing)
	require.True(t, changed)
	require.Contains(t, updated, "mode = \"edit\"")
	require.Contains(t, updated, "# OUTDATED: option removed from config schema")
	require.Contains(t, updated, "# legacy = 1")
	require.Contains(t, updated, "# Added by config update")
	require.Contains(t, updated, "native_picker = true")

	again, changed := UpdateTOML(updated)
	require.False(t, changed)
	require.Equal(t, updated, again)
}
