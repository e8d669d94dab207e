// Package config loads agent configuration from a yaml file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig addresses the game server.
type ServerConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// AccountConfig holds the login credentials.
type AccountConfig struct {
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
}

// GameConfig controls game participation.
type GameConfig struct {
	GameID        string `mapstructure:"game_id"`
	CardLibrary   string `mapstructure:"card_library"`
	MaxIterations int    `mapstructure:"max_iterations"`
	ChatEnabled   bool   `mapstructure:"chat_enabled"`
}

// LoopConfig tunes the repeat-decision thresholds.
type LoopConfig struct {
	MildThreshold     int `mapstructure:"mild_threshold"`
	SevereThreshold   int `mapstructure:"severe_threshold"`
	CriticalThreshold int `mapstructure:"critical_threshold"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig addresses the stats database. An empty URL disables
// persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// AdminConfig controls the observer websocket feed. An empty address
// disables it.
type AdminConfig struct {
	Address string `mapstructure:"address"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Account  AccountConfig  `mapstructure:"account"`
	Game     GameConfig     `mapstructure:"game"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.timeout", 15*time.Second)
	v.SetDefault("server.poll_timeout", 30*time.Second)
	v.SetDefault("game.card_library", "cards.json")
	v.SetDefault("game.max_iterations", 400)
	v.SetDefault("game.chat_enabled", true)
	v.SetDefault("loop.mild_threshold", 4)
	v.SetDefault("loop.severe_threshold", 8)
	v.SetDefault("loop.critical_threshold", 16)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration from the given yaml file, if present, then applies
// RANDO_* environment overrides. A missing file is not an error: everything
// has a default or an env source.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RANDO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults need an explicit binding for env-only setups.
	for _, key := range []string{
		"server.base_url", "account.login", "account.password",
		"game.game_id", "database.url", "admin.address",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			if !notFound && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields without defaults.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if c.Account.Login == "" {
		return fmt.Errorf("account.login is required")
	}
	if c.Game.GameID == "" {
		return fmt.Errorf("game.game_id is required")
	}
	if c.Loop.MildThreshold <= 0 || c.Loop.SevereThreshold <= c.Loop.MildThreshold ||
		c.Loop.CriticalThreshold <= c.Loop.SevereThreshold {
		return fmt.Errorf("loop thresholds must be positive and strictly increasing")
	}
	return nil
}
