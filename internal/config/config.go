// Package config loads the proxy settings from flags, environment and an
// optional configproxy.yaml file, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CONFIGPROXY"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Log      LogConfig      `mapstructure:"log"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries       uint          `mapstructure:"retries" validate:"lte=10"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	Language      string        `mapstructure:"language"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
}

type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults registers the default value of every key on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("upstream.base_url", "http://localhost:8081/api/v1")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.retries", 2)
	v.SetDefault("upstream.retry_interval", 200*time.Millisecond)
	v.SetDefault("upstream.language", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cors.allowed_origin", "*")
	v.SetDefault("tracing.enabled", false)
}

// New returns a viper instance with defaults and environment binding, e.g.
// CONFIGPROXY_UPSTREAM_BASE_URL for upstream.base_url.
func New() *viper.Viper {
	v := viper.New()
	Defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags maps command line flags onto their configuration keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind flag %s", flag)
		}
	}
	return nil
}

// Load reads file (if not empty) and decodes the merged settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}
