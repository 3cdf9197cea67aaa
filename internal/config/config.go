package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"csvdash/internal/classify"
	"csvdash/internal/errors"
)

// EnvPrefix namespaces every environment override, e.g. CSVDASH_SERVER_PORT.
const EnvPrefix = "CSVDASH"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig    `mapstructure:"server" validate:"required"`
	Logging  LoggingConfig   `mapstructure:"logging" validate:"required"`
	Upload   UploadConfig    `mapstructure:"upload" validate:"required"`
	Session  SessionConfig   `mapstructure:"session" validate:"required"`
	Classify classify.Config `mapstructure:"classify" validate:"required"`
	Render   RenderConfig    `mapstructure:"render" validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string        `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" validate:"gt=0"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout" validate:"gt=0"`
	GinMode      string        `mapstructure:"ginMode" validate:"oneof=debug release test"`
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"maxBytes" validate:"gt=0"`
}

// SessionConfig controls how long loaded datasets stay in memory.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	SweepInterval time.Duration `mapstructure:"sweepInterval" validate:"gt=0"`
}

// RenderConfig sets the PNG canvas size.
type RenderConfig struct {
	Width  int `mapstructure:"width" validate:"min=100,max=8192"`
	Height int `mapstructure:"height" validate:"min=100,max=8192"`
}

// Load reads an optional config file, applies CSVDASH_* environment
// overrides over the defaults and validates the result. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read config file: %w", err))
		}
	}

	// Environment variables override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to unmarshal config: %w", err))
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("configuration validation failed: %w", err))
	}
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.ginMode", "release")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("upload.maxBytes", 32<<20)

	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.sweepInterval", "1m")

	// Classification defaults
	def := classify.DefaultConfig()
	v.SetDefault("classify.categoricalCutoff", def.CategoricalCutoff)
	v.SetDefault("classify.numericThreshold", def.NumericThreshold)
	v.SetDefault("classify.temporalThreshold", def.TemporalThreshold)
	v.SetDefault("classify.sampleSize", def.SampleSize)

	v.SetDefault("render.width", 1024)
	v.SetDefault("render.height", 512)
}
