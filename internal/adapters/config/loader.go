// Package config provides the configuration loader for augur.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"go.trai.ch/augur/internal/core/domain"
	"go.trai.ch/augur/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// EnvPrefix is the prefix of environment variables that override settings.
	EnvPrefix = "AUGUR_"

	// PathEnvVar names the environment variable that points at a config file.
	PathEnvVar = EnvPrefix + "CONFIG"

	// nestingSeparator separates section and key in environment variable names,
	// e.g. AUGUR_TRAINING__MIN_POINTS -> training.min_points.
	nestingSeparator = "__"
)

// Loader implements ports.ConfigLoader with layered koanf providers:
// struct defaults, then an optional YAML file, then AUGUR_* environment variables.
type Loader struct {
	logger ports.Logger
	path   string
}

// NewLoader creates a Loader. An empty path means the file is discovered
// through AUGUR_CONFIG or augur.yaml in the working directory.
func NewLoader(logger ports.Logger, path string) *Loader {
	return &Loader{logger: logger, path: path}
}

// Load builds and validates the effective settings.
func (l *Loader) Load() (domain.Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(domain.DefaultSettings(), "koanf"), nil); err != nil {
		return domain.Settings{}, zerr.Wrap(err, "failed to load default settings")
	}

	if path := l.configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return domain.Settings{}, zerr.With(
				zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "failed to load config file"),
				"path", path)
		}
		l.logger.Info("loaded config file", "path", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return domain.Settings{}, zerr.Wrap(err, "failed to load environment overrides")
	}

	var settings domain.Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return domain.Settings{}, zerr.Wrap(errors.Join(domain.ErrConfigInvalid, err), "failed to decode settings")
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}

	return settings, nil
}

// configPath returns the file to load, or "" when there is none.
// An explicitly requested file must exist; the default one is optional.
func (l *Loader) configPath() string {
	if l.path != "" {
		return l.path
	}
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(domain.ConfigFileName); err == nil {
		return domain.ConfigFileName
	}
	return ""
}

// envKey maps AUGUR_DATA_DIR to data_dir and AUGUR_SOURCE__BASE_URL to source.base_url.
// AUGUR_CONFIG selects the file and is not a setting.
func envKey(key string) string {
	if key == PathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, nestingSeparator, ".")
}
