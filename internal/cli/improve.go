package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/marksmart/internal/document"
	"github.com/mithrel/marksmart/internal/filesys"
	"github.com/mithrel/marksmart/internal/transform"
)

var errNoAPIKey = errors.New("no API key configured; run `marksmart auth set-key` or set GEMINI_API_KEY")

func newImproveCmd() *cobra.Command {
	var instruction string
	var out string
	cmd := &cobra.Command{
		Use:   "improve FILE",
		Short: "Polish a markdown file with the AI transform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if !app.Transformer.Configured() {
				return errNoAPIKey
			}
			app.Headless()
			ctx := cmd.Context()
			if _, err := app.Gateway.OpenPath(ctx, app.Fs, args[0]); err != nil {
				return err
			}
			if strings.TrimSpace(instruction) == "" {
				instruction = app.Settings.AIInstruction
			}
			res, err := transform.Improve(ctx, app.Session, app.Transformer, instruction)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res == transform.Skipped {
				_, _ = fmt.Fprintln(w, "Nothing to improve")
				return nil
			}
			if out == "-" {
				_, err := fmt.Fprint(w, app.Session.Content())
				return err
			}
			var outcome document.Outcome
			if out != "" {
				outcome, err = app.Gateway.SaveTo(ctx, filesys.NewHandle(app.Fs, out))
			} else {
				outcome, err = app.Gateway.Save(ctx)
			}
			if err != nil {
				return err
			}
			switch outcome {
			case document.Saved:
				_, _ = fmt.Fprintf(w, "Improved %s\n", app.Session.FileRef().Path())
			case document.Downloaded:
				_, _ = fmt.Fprintf(w, "Could not write %s in place; downloaded an improved copy\n", app.Session.DisplayName())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "instruction sent with the document (default ai.instruction)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of FILE; - prints it")
	return cmd
}
