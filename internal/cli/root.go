package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/marksmart/internal/config"
	"github.com/mithrel/marksmart/internal/layout"
	"github.com/mithrel/marksmart/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// flagKeys maps short flag names to the config keys they override.
var flagKeys = map[string]string{
	"mode":  "view.mode",
	"width": "render.word_wrap",
	"style": "render.style",
}

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command with production dependencies.
func NewRootCmd() *cobra.Command {
	return newRootCmd(wire.Deps{})
}

func newRootCmd(deps wire.Deps) *cobra.Command {
	var cfgPath string
	var mode string

	cmd := &cobra.Command{
		Use:           "marksmart [FILE]",
		Short:         "MarkSmart, a terminal markdown editor with live preview",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			applyConfigFlagOverrides(cmd, v, flagKeys)
			app, err := wire.BuildApp(cmd.Context(), v, deps)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return getApp(cmd).Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mode") {
				if _, err := layout.ParseMode(mode); err != nil {
					return err
				}
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return getApp(cmd).RunEditor(cmd.Context(), path)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (toml|yaml)")
	cmd.Flags().StringVar(&mode, "mode", "", "initial layout: edit, preview or split")

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newImproveCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}
