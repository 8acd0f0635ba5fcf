package wire

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mithrel/marksmart/internal/config"
	"github.com/mithrel/marksmart/internal/document"
	"github.com/mithrel/marksmart/internal/filesys"
	"github.com/mithrel/marksmart/internal/keys"
	"github.com/mithrel/marksmart/internal/layout"
	"github.com/mithrel/marksmart/internal/logging"
	"github.com/mithrel/marksmart/internal/present/tui"
	"github.com/mithrel/marksmart/internal/render"
	"github.com/mithrel/marksmart/internal/transform"
)

// App aggregates the major services for easy injection.
type App struct {
	Settings    config.Settings
	Viper       *viper.Viper
	Log         *slog.Logger
	Fs          afero.Fs
	Keys        keys.KeyStore
	Session     *document.Session
	Dialogs     *tui.Dialogs
	Gateway     *document.Gateway
	Layout      *layout.Controller
	Renderer    *render.Glamour
	Transformer *transform.Gemini

	closeLog func() error
}

// Deps overrides pieces of the graph; zero values take production defaults.
type Deps struct {
	Fs          afero.Fs
	Keys        keys.KeyStore
	Log         *slog.Logger
	Interactive *bool
}

// BuildApp wires dependencies from a loaded Viper instance.
func BuildApp(ctx context.Context, v *viper.Viper, deps Deps) (*App, error) {
	st := config.FromViper(v)

	logger, closeLog := deps.Log, func() error { return nil }
	if logger == nil {
		l, c, err := logging.Open(st.LogFile, st.LogLevel)
		if err != nil {
			return nil, err
		}
		logger, closeLog = l, c
	}
	fsys := deps.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	store := deps.Keys
	if store == nil {
		store = &keys.KeyringStore{}
	}
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	if deps.Interactive != nil {
		interactive = *deps.Interactive
	}

	apiKey, source := keys.ResolveAPIKey(v, store)
	logger.Debug("resolved api key", "source", string(source), "present", apiKey != "")

	session := document.NewSession(document.WelcomeContent)
	dialogs := tui.NewDialogs()
	gateway := &document.Gateway{
		Session: session,
		Picker: &filesys.FSPicker{
			Fs:      fsys,
			Chooser: dialogs,
			Enabled: st.NativePicker && interactive,
		},
		Selector:   &filesys.FSSelector{Fs: fsys, Prompt: dialogs},
		Downloader: &filesys.DirDownloader{Fs: fsys, Dir: st.DownloadsDir},
		Confirmer:  dialogs,
		Notifier:   dialogs,
		Log:        logger.With("component", "gateway"),
		StartIn:    st.StartDir,
	}

	lc := layout.New(st.MinSplitWidth, st.CellWidth)
	lc.Select(st.ViewMode)

	logger.Info("app wired", "native_picker", gateway.Picker.Available(), "mode", st.ViewMode.String())
	return &App{
		Settings: st,
		Viper:    v,
		Log:      logger,
		Fs:       fsys,
		Keys:     store,
		Session:  session,
		Dialogs:  dialogs,
		Gateway:  gateway,
		Layout:   lc,
		Renderer: render.NewGlamour(st.RenderStyle),
		Transformer: &transform.Gemini{
			APIKey:  apiKey,
			Model:   st.AIModel,
			Timeout: st.AITimeout,
			Log:     logger.With("component", "transform"),
		},
		closeLog: closeLog,
	}, nil
}

// RunEditor opens path when given and runs the terminal editor until exit.
func (a *App) RunEditor(ctx context.Context, path string) error {
	if path != "" {
		if _, err := a.Gateway.OpenPath(ctx, a.Fs, path); err != nil {
			return err
		}
	}
	wd, _ := os.Getwd()
	if a.Settings.StartDir != "" {
		wd = a.Settings.StartDir
	}
	return tui.Run(ctx, tui.Options{
		Session:        a.Session,
		Gateway:        a.Gateway,
		Dialogs:        a.Dialogs,
		Renderer:       a.Renderer,
		Transformer:    a.Transformer,
		Instruction:    a.Settings.AIInstruction,
		Layout:         a.Layout,
		Debounce:       a.Settings.Debounce,
		ExternalEditor: a.Settings.ExternalEditor,
		Fs:             a.Fs,
		WorkDir:        wd,
		Log:            a.Log.With("component", "tui"),
	})
}

// Headless drops every interactive collaborator so gateway operations never
// wait on dialogs that nothing serves. Saves that cannot write in place go
// to the downloads directory.
func (a *App) Headless() {
	a.Gateway.Picker = nil
	a.Gateway.Selector = nil
	a.Gateway.Confirmer = nil
}

// Close flushes and closes the log file.
func (a *App) Close() error {
	if a == nil || a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}
