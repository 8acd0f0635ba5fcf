package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mithrel/marksmart/internal/config"
)

// applyConfigFlagOverrides copies flags the user set onto v. A flag named
// after a config key applies to that key; aliases maps the rest.
func applyConfigFlagOverrides(cmd *cobra.Command, v *viper.Viper, aliases map[string]string) {
	targets := make(map[string]string, len(aliases))
	for _, opt := range config.GetConfigOptions() {
		targets[opt.Key] = opt.Key
	}
	for name, key := range aliases {
		targets[name] = key
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := targets[f.Name]; ok {
			setFromFlag(cmd, v, f, key)
		}
	})
}

func setFromFlag(cmd *cobra.Command, v *viper.Viper, f *pflag.Flag, key string) {
	switch f.Value.Type() {
	case "bool":
		if val, err := cmd.Flags().GetBool(f.Name); err == nil {
			v.Set(key, val)
		}
	case "int":
		if val, err := cmd.Flags().GetInt(f.Name); err == nil {
			v.Set(key, val)
		}
	default:
		v.Set(key, f.Value.String())
	}
}
