package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/marksmart/internal/layout"
	"github.com/mithrel/marksmart/internal/render"
	"github.com/mithrel/marksmart/internal/transform"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// If SetConfigFile was provided upstream it takes precedence; these
	// paths are harmless fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "marksmart"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "marksmart"))
		}
	}

	applyDefaults(v)

	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: MARKSMART_* (highest among these sources)
	v.SetEnvPrefix("marksmart")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(v.GetString("files.downloads_dir")) == "" {
		v.Set("files.downloads_dir", defaultDownloadsDir())
	}
	if strings.TrimSpace(v.GetString("log.file")) == "" {
		v.Set("log.file", defaultLogFile())
	}
	return nil
}

// defaultDownloadsDir resolves $XDG_DOWNLOAD_DIR or ~/Downloads.
func defaultDownloadsDir() string {
	if xdg := os.Getenv("XDG_DOWNLOAD_DIR"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Downloads")
}

// defaultLogFile resolves $XDG_STATE_HOME/marksmart/marksmart.log or
// ~/.local/state/marksmart/marksmart.log.
func defaultLogFile() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "marksmart", "marksmart.log")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "marksmart", "marksmart.log")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "marksmart", "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the configuration options and their meanings.
// This is the single source of truth for defaults and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "files.native_picker", Default: true, Comment: "Use in-terminal pickers with live file handles; false forces import/download"},
		{Key: "files.downloads_dir", Default: "", Comment: "Where the download fallback writes files (default ~/Downloads)"},
		{Key: "files.start_dir", Default: "", Comment: "Directory pickers start in (default: working directory)"},

		{Key: "view.mode", Default: "split", Comment: "Initial layout: edit, preview or split"},
		{Key: "view.min_split_width", Default: layout.DefaultMinSplitWidth, Comment: "Viewport width in logical pixels below which split collapses to edit"},
		{Key: "view.cell_width", Default: layout.DefaultCellWidth, Comment: "Logical pixels per terminal column"},

		{Key: "render.style", Default: render.DefaultStyle, Comment: "Glamour style: dracula, dark, light, notty, ascii, pink, tokyo-night, auto"},
		{Key: "render.debounce", Default: render.DefaultDebounce.String(), Comment: "Pause before the preview re-renders"},
		{Key: "render.word_wrap", Default: 80, Comment: "Wrap width for `marksmart render`"},

		{Key: "ai.api_key", Default: "", Comment: "Gemini API key; prefer `marksmart auth set-key` or GEMINI_API_KEY"},
		{Key: "ai.model", Default: transform.DefaultModel, Comment: "Model used by the improve action"},
		{Key: "ai.instruction", Default: transform.DefaultInstruction, Comment: "Instruction sent with the document"},
		{Key: "ai.timeout", Default: transform.DefaultTimeout.String(), Comment: "Upper bound for one improve request"},

		{Key: "log.file", Default: "", Comment: "Log file (default $XDG_STATE_HOME/marksmart/marksmart.log)"},
		{Key: "log.level", Default: "info", Comment: "debug, info, warn or error"},

		{Key: "editor.external", Default: true, Comment: "Allow handing the document to $VISUAL/$EDITOR with ctrl+e"},
	}
}

// Settings is the typed view of a loaded Viper instance.
type Settings struct {
	NativePicker   bool
	DownloadsDir   string
	StartDir       string
	ViewMode       layout.Mode
	MinSplitWidth  int
	CellWidth      int
	RenderStyle    string
	Debounce       time.Duration
	WordWrap       int
	AIModel        string
	AIInstruction  string
	AITimeout      time.Duration
	LogFile        string
	LogLevel       string
	ExternalEditor bool
}

// FromViper reads Settings. Unparseable values fall back to their defaults;
// CheckConfigValidity reports them.
func FromViper(v *viper.Viper) Settings {
	mode, _ := layout.ParseMode(v.GetString("view.mode"))
	return Settings{
		NativePicker:   v.GetBool("files.native_picker"),
		DownloadsDir:   expandHome(v.GetString("files.downloads_dir")),
		StartDir:       expandHome(v.GetString("files.start_dir")),
		ViewMode:       mode,
		MinSplitWidth:  v.GetInt("view.min_split_width"),
		CellWidth:      v.GetInt("view.cell_width"),
		RenderStyle:    v.GetString("render.style"),
		Debounce:       durationOr(v.GetString("render.debounce"), render.DefaultDebounce),
		WordWrap:       v.GetInt("render.word_wrap"),
		AIModel:        v.GetString("ai.model"),
		AIInstruction:  v.GetString("ai.instruction"),
		AITimeout:      durationOr(v.GetString("ai.timeout"), transform.DefaultTimeout),
		LogFile:        expandHome(v.GetString("log.file")),
		LogLevel:       v.GetString("log.level"),
		ExternalEditor: v.GetBool("editor.external"),
	}
}

func durationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// expandHome expands a leading ~ for convenience.
func expandHome(dir string) string {
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, dir[1:])
		}
	}
	return dir
}
