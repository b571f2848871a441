package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"coffee-env/internal/environment"
)

const (
	defaultConfigName = "environment"
	defaultServerAddr = ":8090"
)

// Environment keys use the same names as the serialized Environment, so a
// file written by `envd --print` loads back unchanged.
const (
	keyProduction     = "production"
	keyAPIServerURL   = "apiServerUrl"
	keyProviderDomain = "auth.providerDomain"
	keyAudience       = "auth.audience"
	keyClientID       = "auth.clientId"
	keyCallbackURL    = "auth.callbackUrl"
)

var envNames = map[string]string{
	keyProduction:     "CS_PRODUCTION",
	keyAPIServerURL:   "CS_API_SERVER_URL",
	keyProviderDomain: "CS_AUTH_PROVIDER_DOMAIN",
	keyAudience:       "CS_AUTH_AUDIENCE",
	keyClientID:       "CS_AUTH_CLIENT_ID",
	keyCallbackURL:    "CS_AUTH_CALLBACK_URL",
}

type Config struct {
	// Name is the preset the defaults came from.
	Name string

	Environment environment.Environment

	ServerAddr string

	// AccessLogPath enables NDJSON request logging when set.
	AccessLogPath string

	// File is the config file that was read, if any.
	File string
}

// Load builds the Config. An empty path searches for an optional
// environment.yaml; a non-empty path must exist and parse.
func Load(path string) (Config, error) {
	preset, ok := environment.Preset(environment.Selected)
	if !ok {
		return Config{}, fmt.Errorf("unknown environment %q (known: %s)",
			environment.Selected, strings.Join(environment.PresetNames(), ", "))
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.SetEnvPrefix("CS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range envNames {
		if err := v.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	setDefaults(v, preset)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Name: environment.Selected,
		Environment: environment.Environment{
			Production:   v.GetBool(keyProduction),
			APIServerURL: strings.TrimSpace(v.GetString(keyAPIServerURL)),
			Auth: environment.Auth{
				ProviderDomain: strings.TrimSpace(v.GetString(keyProviderDomain)),
				Audience:       strings.TrimSpace(v.GetString(keyAudience)),
				ClientID:       strings.TrimSpace(v.GetString(keyClientID)),
				CallbackURL:    strings.TrimSpace(v.GetString(keyCallbackURL)),
			},
		},
		ServerAddr:    strings.TrimSpace(v.GetString("server.addr")),
		AccessLogPath: strings.TrimSpace(v.GetString("telemetry.access_log_path")),
		File:          v.ConfigFileUsed(),
	}

	if cfg.ServerAddr == "" {
		return Config{}, fmt.Errorf("server.addr must not be empty")
	}
	if cfg.AccessLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.AccessLogPath), 0o755); err != nil {
			return Config{}, fmt.Errorf("create access log dir: %w", err)
		}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, env environment.Environment) {
	v.SetDefault(keyProduction, env.Production)
	v.SetDefault(keyAPIServerURL, env.APIServerURL)
	v.SetDefault(keyProviderDomain, env.Auth.ProviderDomain)
	v.SetDefault(keyAudience, env.Auth.Audience)
	v.SetDefault(keyClientID, env.Auth.ClientID)
	v.SetDefault(keyCallbackURL, env.Auth.CallbackURL)

	v.SetDefault("server.addr", defaultServerAddr)
	v.SetDefault("telemetry.access_log_path", "")
}
