package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mithrel/marksmart/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(newConfigGenerateCmd())
	cmd.AddCommand(newConfigCheckCmd())
	return cmd
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the loaded configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			if err := config.CheckConfigValidity(app.Viper); err != nil {
				return fmt.Errorf("invalid config:\n%w", err)
			}
			src := app.Viper.ConfigFileUsed()
			if src == "" {
				src = "built-in defaults"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config OK (%s)\n", src)
			return nil
		},
	}
}

func newConfigGenerateCmd() *cobra.Command {
	var out string
	var overwrite bool
	var update bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if overwrite && update {
				return errors.New("choose either --overwrite or --update")
			}
			if out == "" {
				out = config.DefaultConfigPath()
			}
			return writeConfigFile(cmd, getApp(cmd).Fs, out, overwrite, update)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path for config.toml")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing config (keeps a backup)")
	cmd.Flags().BoolVar(&update, "update", false, "merge new defaults into an existing config (keeps a backup)")
	return cmd
}

func writeConfigFile(cmd *cobra.Command, fsys afero.Fs, out string, overwrite, update bool) error {
	exists, err := afero.Exists(fsys, out)
	if err != nil {
		return err
	}
	if exists && !overwrite && !update {
		return fmt.Errorf("config already exists at %s; use --overwrite to replace it or --update to merge new defaults", out)
	}

	content := config.RenderDefaultTOML()
	var current []byte
	if exists {
		if current, err = afero.ReadFile(fsys, out); err != nil {
			return err
		}
	}
	if update && exists {
		updated, changed := config.UpdateTOML(string(current))
		if !changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already up to date: %s\n", out)
			return nil
		}
		content = updated
	}

	backup := ""
	if exists {
		if backup, err = backupConfig(fsys, out, current); err != nil {
			return err
		}
	}
	if err := fsys.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return err
	}
	if err := afero.WriteFile(fsys, out, []byte(content), 0o600); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	if backup != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backup: %s\n", backup)
	}
	return nil
}

// backupConfig copies data next to path, stamping the name when a plain
// .bak already exists.
func backupConfig(fsys afero.Fs, path string, data []byte) (string, error) {
	backup := path + ".bak"
	if ok, _ := afero.Exists(fsys, backup); ok {
		backup = fmt.Sprintf("%s.bak-%s", path, time.Now().Format("20060102-150405"))
	}
	if err := afero.WriteFile(fsys, backup, data, 0o600); err != nil {
		return "", err
	}
	return backup, nil
}
