package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/marksmart/internal/layout"
)

var knownStyles = map[string]bool{
	"ascii": true, "auto": true, "dark": true, "dracula": true,
	"light": true, "notty": true, "pink": true, "tokyo-night": true,
}

var knownLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// CheckConfigValidity reports every invalid option at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	if _, err := layout.ParseMode(v.GetString("view.mode")); err != nil {
		errs = append(errs, fmt.Errorf("view.mode: %w", err))
	}
	if v.GetInt("view.min_split_width") <= 0 {
		errs = append(errs, errors.New("view.min_split_width must be greater than 0"))
	}
	if v.GetInt("view.cell_width") <= 0 {
		errs = append(errs, errors.New("view.cell_width must be greater than 0"))
	}
	if style := v.GetString("render.style"); !knownStyles[style] {
		errs = append(errs, fmt.Errorf("render.style %q is not a known glamour style", style))
	}
	if err := positiveDuration(v, "render.debounce"); err != nil {
		errs = append(errs, err)
	}
	if v.GetInt("render.word_wrap") <= 0 {
		errs = append(errs, errors.New("render.word_wrap must be greater than 0"))
	}
	if strings.TrimSpace(v.GetString("ai.model")) == "" {
		errs = append(errs, errors.New("ai.model is required"))
	}
	if err := positiveDuration(v, "ai.timeout"); err != nil {
		errs = append(errs, err)
	}
	if lvl := strings.ToLower(v.GetString("log.level")); !knownLevels[lvl] {
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", lvl))
	}
	if strings.TrimSpace(v.GetString("files.downloads_dir")) == "" {
		errs = append(errs, errors.New("files.downloads_dir is required"))
	}
	return errors.Join(errs...)
}

func positiveDuration(v *viper.Viper, key string) error {
	raw := v.GetString(key)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s %q is not a duration", key, raw)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be greater than 0", key)
	}
	return nil
}
