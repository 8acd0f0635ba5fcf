package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/marksmart/internal/keys"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the AI API key",
	}
	cmd.AddCommand(newAuthSetKeyCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getApp(cmd).Keys.Delete(keys.APIKeyID); err != nil {
				return fmt.Errorf("clear key: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show where the API key comes from",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			w := cmd.OutOrStdout()
			if _, src := keys.ResolveAPIKey(app.Viper, app.Keys); src != keys.SourceNone {
				_, _ = fmt.Fprintf(w, "API key: configured (%s)\n", src)
			} else {
				_, _ = fmt.Fprintln(w, "API key: not configured")
			}
			if _, ok := app.Keys.(*keys.KeyringStore); ok {
				state := "available"
				if !keys.KeyringAvailable() {
					state = "unavailable"
				}
				_, _ = fmt.Fprintf(w, "Keyring: %s\n", state)
			}
			return nil
		},
	})
	return cmd
}

func newAuthSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the API key in the system keyring (reads stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			if err := getApp(cmd).Keys.Put(keys.APIKeyID, secret); err != nil {
				return fmt.Errorf("store key: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
			return nil
		},
	}
}

// readSecret prompts without echo on a terminal and reads all of stdin
// otherwise.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	var raw []byte
	var err error
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
		raw, err = term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	} else {
		raw, err = io.ReadAll(in)
	}
	if err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", errors.New("empty API key")
	}
	return secret, nil
}
