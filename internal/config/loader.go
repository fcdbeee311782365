package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDir  = ".wqrun"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "WQRUN"
)

// Load reads the configuration from path, or from ~/.wqrun/config.yaml when
// path is empty. A missing default file yields the built-in defaults; a
// missing explicit file is an error. Environment variables prefixed with
// WQRUN_ override file values (WQRUN_QUERY_TIMEOUT, WQRUN_PLOT_TIME_COLUMN).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := DirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		v.SetConfigName(configFile)
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for i := range cfg.Profiles {
		if cfg.Profiles[i].Driver == "" {
			cfg.Profiles[i].Driver = DefaultDriver
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path, or to ~/.wqrun/config.yaml when
// path is empty. Passwords are never written; they belong in the keyring.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	profiles := make([]Connection, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		p.Password = ""
		profiles[i] = p
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("profiles", profiles)
	v.Set("default_profile", cfg.DefaultProfile)
	v.Set("verbose", cfg.Verbose)
	v.Set("query_timeout", cfg.QueryTimeout.String())
	v.Set("plot", cfg.Plot)

	return v.WriteConfigAs(path)
}

// DefaultPath returns the config file read when no path is given.
func DefaultPath() (string, error) {
	dir, err := DirPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile+"."+configType), nil
}

// DirPath returns the directory holding the default config file.
func DirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

func setDefaults(v *viper.Viper) {
	p := DefaultPlot()
	v.SetDefault("verbose", false)
	v.SetDefault("query_timeout", "0s")
	v.SetDefault("plot.time_column", p.TimeColumn)
	v.SetDefault("plot.station_column", p.StationColumn)
	v.SetDefault("plot.width_in", p.WidthIn)
	v.SetDefault("plot.height_in", p.HeightIn)
}
