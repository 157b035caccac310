// Package config resolves CLI settings from flags, environment variables
// (WIDGETSCHEMA_*) and an optional YAML config file via viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyEvolution = "evolution"
	KeyManifest  = "manifest"
	KeyDev       = "dev"
	KeyLogLevel  = "log-level"
)

const envPrefix = "WIDGETSCHEMA"

// Settings is the resolved CLI configuration.
type Settings struct {
	EvolutionFile string
	ManifestDirs  []string
	DevMode       bool
	LogLevel      slog.Level
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyDev, false)
	return v
}

// ReadFile loads a config file when path is set. A missing file is an error
// because the caller asked for it explicitly.
func ReadFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// Resolve reads the settings out of v.
func Resolve(v *viper.Viper) (Settings, error) {
	level, err := parseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		EvolutionFile: strings.TrimSpace(v.GetString(KeyEvolution)),
		ManifestDirs:  nonEmpty(v.GetStringSlice(KeyManifest)),
		DevMode:       v.GetBool(KeyDev),
		LogLevel:      level,
	}, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return level, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
