package hml

import (
	"strings"

	"github.com/spf13/viper"
)

// Config carries the app-level settings, read from HML_-prefixed
// environment variables (HML_IMAGE, HML_COMMAND, HML_LOG_LEVEL).
type Config struct {
	// ImageURL is the default container image for registered operations.
	ImageURL string
	// Entrypoint is the default container command, normally the installed
	// entrypoint of this application.
	Entrypoint []string
	// LogLevel is the zerolog level name.
	LogLevel string
}

const envPrefix = "HML"

func loadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")

	cfg := &Config{
		ImageURL: v.GetString("image"),
		LogLevel: v.GetString("log_level"),
	}

	if command := v.GetString("command"); command != "" {
		cfg.Entrypoint = strings.Fields(command)
	}

	return cfg
}
