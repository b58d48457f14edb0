package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/lepinkainen/cmps/pkg/search"
)

// FileName is the configuration file looked up in the user config directory
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. CMPS_BUILTIN=false
const EnvPrefix = "CMPS"

// Config holds the user's cmps settings
type Config struct {
	TemplateDirs []string `mapstructure:"template_dirs"` // Searched after local .cmps directories
	Local        bool     `mapstructure:"local"`         // Walk up from the working directory for .cmps
	Builtin      bool     `mapstructure:"builtin"`       // Include the templates compiled into the binary
	Verbosity    int      `mapstructure:"verbosity"`     // Added to the -v count
	Format       string   `mapstructure:"format"`        // Default report format
}

// DefaultPath returns <user config dir>/cmps/config.yaml, or "" when the
// config directory is unavailable
func DefaultPath(platform search.PlatformDirs) string {
	dir, err := platform.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, search.AppName, FileName)
}

// LoadConfigFile loads a configuration file the user named explicitly.
// Unlike LoadConfig the file must exist.
func LoadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return LoadConfig(path)
}

// LoadConfig loads the configuration from path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("template_dirs", []string{})
	v.SetDefault("local", true)
	v.SetDefault("builtin", true)
	v.SetDefault("verbosity", 0)
	v.SetDefault("format", string(search.FormatText))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			// A missing config file is fine - we'll use defaults
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if _, err := search.ParseFormat(config.Format); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SearchOptions converts the configuration into resolver discovery options
func (c *Config) SearchOptions(workDir string, platform search.PlatformDirs) search.Options {
	return search.Options{
		WorkDir:     workDir,
		ExtraDirs:   expandHome(c.TemplateDirs),
		SkipLocal:   !c.Local,
		SkipBuiltin: !c.Builtin,
		Platform:    platform,
	}
}

// expandHome rewrites a leading ~ to the user's home directory
func expandHome(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if (d == "~" || strings.HasPrefix(d, "~/")) && xdg.Home != "" {
			d = filepath.Join(xdg.Home, strings.TrimPrefix(d, "~"))
		}
		out = append(out, d)
	}
	return out
}
