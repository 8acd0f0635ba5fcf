package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mithrel/marksmart/internal/render"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print a markdown file rendered for the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			data, err := afero.ReadFile(app.Fs, args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return render.WriteMarkdown(cmd.OutOrStdout(), app.Renderer, string(data), app.Settings.WordWrap)
		},
	}
	cmd.Flags().Int("width", 0, "wrap width in columns (overrides render.word_wrap)")
	cmd.Flags().String("style", "", "glamour style (overrides render.style)")
	return cmd
}
