// Package config loads service settings from an optional config.yaml with
// environment overrides, SOURCE_DRIVER for source.driver and so on.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Source   SourceConfig  `mapstructure:"source"`
	Catalog  CatalogConfig `mapstructure:"catalog"`
	Redis    RedisConfig   `mapstructure:"redis"`
	Rabbit   RabbitConfig  `mapstructure:"rabbit"`
	Auth     AuthConfig    `mapstructure:"auth"`
	LogLevel string        `mapstructure:"log_level"`
}

type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	Debug           string        `mapstructure:"debug"`
	Profiling       bool          `mapstructure:"profiling"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SourceConfig selects the remote query source. Driver is one of pg, rest or
// memory, memory serving only the embedded datasets.
type SourceConfig struct {
	Driver       string        `mapstructure:"driver"`
	DSN          string        `mapstructure:"dsn"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	TokenURL     string        `mapstructure:"token_url"`
	Scopes       []string      `mapstructure:"scopes"`
}

type CatalogConfig struct {
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	ClientWindow int           `mapstructure:"client_window"`
	SampleWindow int           `mapstructure:"sample_window"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	Database int           `mapstructure:"database"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RabbitConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JwtSecret string `mapstructure:"jwt_secret"`
}

func (c *Config) Validate() error {
	switch c.Source.Driver {
	case "memory":
	case "pg":
		if c.Source.DSN == "" {
			return errors.New("source.dsn is required for the pg driver")
		}
	case "rest":
		if c.Source.BaseURL == "" {
			return errors.New("source.base_url is required for the rest driver")
		}
	default:
		return fmt.Errorf("unknown source driver %q", c.Source.Driver)
	}
	return nil
}

// Load reads config.yaml from the given paths when present. A missing file is
// not an error, defaults and the environment still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.debug", ":8081")
	v.SetDefault("server.profiling", false)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 20*time.Second)

	v.SetDefault("source.driver", "memory")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.api_key", "")
	v.SetDefault("source.timeout", 10*time.Second)
	v.SetDefault("source.client_id", "")
	v.SetDefault("source.client_secret", "")
	v.SetDefault("source.token_url", "")

	v.SetDefault("catalog.stage_timeout", 5*time.Second)
	v.SetDefault("catalog.client_window", 100)
	v.SetDefault("catalog.sample_window", 500)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.ttl", 30*24*time.Hour)

	v.SetDefault("rabbit.url", "")
	v.SetDefault("auth.jwt_secret", "")
}
