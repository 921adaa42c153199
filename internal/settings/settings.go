// Package settings holds the tool-level options that are not part of a
// mission: where runs are stored, logging and integrator defaults. They come
// from rocketsim.yaml, ROCKETSIM_* environment variables and command flags,
// in increasing priority.
package settings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ErrInvalidSetting = errors.New("settings: invalid value")

type Settings struct {
	DataDir    string  `mapstructure:"data_dir"`
	LogLevel   string  `mapstructure:"log_level"`
	PlotDir    string  `mapstructure:"plot_dir"`
	Integrator string  `mapstructure:"integrator"`
	Dt         float64 `mapstructure:"dt"`
}

// New returns a viper instance with defaults, search paths and the
// environment prefix configured. file, when set, replaces the search.
func New(file string) *viper.Viper {
	v := viper.New()
	v.SetDefault("data_dir", ".rocketsim")
	v.SetDefault("log_level", "info")
	v.SetDefault("plot_dir", "plots")
	v.SetDefault("integrator", "rk4")
	v.SetDefault("dt", 0.01)

	v.SetEnvPrefix("rocketsim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v
	}
	v.SetConfigName("rocketsim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "rocketsim"))
	}
	return v
}

// BindFlags binds the named persistent flags of cmd to settings keys. Flag
// names use dashes, keys underscores.
func BindFlags(v *viper.Viper, cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			flag = cmd.Flags().Lookup(name)
		}
		if flag == nil {
			return fmt.Errorf("settings: no flag %q", name)
		}
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the settings file if there is one and decodes everything into
// Settings. A missing file is not an error.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshalling settings: %w", err)
	}
	if s.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt %g", ErrInvalidSetting, s.Dt)
	}
	if _, err := s.Level(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidSetting, s.LogLevel)
	}
	return lvl, nil
}

// Logger builds the text logger every command shares.
func (s *Settings) Logger(w io.Writer) *slog.Logger {
	lvl, err := s.Level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
