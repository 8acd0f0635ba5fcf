package wire

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/marksmart/internal/config"
	"github.com/mithrel/marksmart/internal/document"
	"github.com/mithrel/marksmart/internal/keys"
	"github.com/mithrel/marksmart/internal/layout"
	"github.com/mithrel/marksmart/internal/logging"
)

func testViper(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	v := viper.New()
	require.NoError(t, config.Load(context.Background(), v))
	return v
}

func TestBuildAppWiresFallbackWhenNotInteractive(t *testing.T) {
	v := testViper(t)
	v.Set("view.mode", "preview")
	no := false
	store := &keys.MemStore{}
	require.NoError(t, store.Put(keys.APIKeyID, "from-keyring"))

	app, err := BuildApp(context.Background(), v, Deps{
		Fs:          afero.NewMemMapFs(),
		Keys:        store,
		Log:         logging.Discard(),
		Interactive: &no,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.False(t, app.Gateway.Picker.Available(), "no TTY means no live-handle pickers")
	require.NotNil(t, app.Gateway.Selector)
	require.NotNil(t, app.Gateway.Downloader)
	require.Equal(t, layout.Preview, app.Layout.Mode())
	require.Equal(t, document.WelcomeContent, app.Session.Content())
	require.False(t, app.Session.Dirty())
	require.Equal(t, "from-keyring", app.Transformer.APIKey)
	require.Equal(t, "dracula", app.Renderer.Style)
}

func TestBuildAppEnablesPickerForInteractiveSessions(t *testing.T) {
	v := testViper(t)
	yes := true
	app, err := BuildApp(context.Background(), v, Deps{
		Fs:          afero.NewMemMapFs(),
		Keys:        &keys.MemStore{},
		Log:         logging.Discard(),
		Interactive: &yes,
	})
	require.NoError(t, err)
	require.True(t, app.Gateway.Picker.Available())

	v.Set("files.native_picker", false)
	app, err = BuildApp(context.Background(), v, Deps{
		Fs:          afero.NewMemMapFs(),
		Keys:        &keys.MemStore{},
		Log:         logging.Discard(),
		Interactive: &yes,
	})
	require.NoError(t, err)
	require.False(t, app.Gateway.Picker.Available(), "files.native_picker=false forces the fallback pair")
}
