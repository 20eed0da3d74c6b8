package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
}

// APIConfig points the client at the inventory server.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	TokenEnv string        `mapstructure:"token_env"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// HistoryConfig holds the sqlite path for the local submission log.
type HistoryConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize     int `mapstructure:"page_size" validate:"gte=1,lte=200"`
	HistoryLimit int `mapstructure:"history_limit" validate:"gte=0,lte=100"`
}

const (
	envPrefix     = "STOCKTERM"
	envConfigPath = "STOCKTERM_CONFIG"
)

func defaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("api.base_url", "https://web.zaico.co.jp")
	v.SetDefault("api.token_env", "STOCKTERM_API_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("history.path", filepath.Join(home, ".local", "share", "stockterm", "history.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "stockterm", "stockterm.log"))
	v.SetDefault("ui.page_size", 20)
	v.SetDefault("ui.history_limit", 10)
}

// Load reads configuration from file and env. Env var overrides use prefix STOCKTERM_.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv(envConfigPath)
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "stockterm"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit STOCKTERM_CONFIG must exist
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Path returns the config file location: $STOCKTERM_CONFIG or the default under $HOME.
func Path() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "stockterm", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token is written only when set; prefer the env var or the token store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.token_env", cfg.API.TokenEnv)
	if cfg.API.Token != "" {
		v.Set("api.token", cfg.API.Token)
	}
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("history.path", cfg.History.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("ui.page_size", cfg.UI.PageSize)
	v.Set("ui.history_limit", cfg.UI.HistoryLimit)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
