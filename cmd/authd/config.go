package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// appConfig is the binary's environment-driven configuration. A local
// .env file seeds the environment during development; real environment
// variables always win.
type appConfig struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	AccountsTable string `mapstructure:"ACCOUNTS_TABLE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	SessionPrefix string `mapstructure:"SESSION_PREFIX"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTIssuer     string        `mapstructure:"JWT_ISSUER"`
	JWTMethod     string        `mapstructure:"JWT_SIGNING_METHOD"`
	AccessTTL     time.Duration `mapstructure:"JWT_ACCESS_TTL"`
	RefreshTTL    time.Duration `mapstructure:"JWT_REFRESH_TTL"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	ClockLeeway   time.Duration `mapstructure:"JWT_LEEWAY"`
	TrustForwards bool          `mapstructure:"TRUST_FORWARDED_FOR"`
}

func loadConfig() (*appConfig, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ACCOUNTS_TABLE", "accounts")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_PREFIX", "session")
	v.SetDefault("JWT_ISSUER", "authd")
	v.SetDefault("JWT_SIGNING_METHOD", "hs256")
	v.SetDefault("JWT_ACCESS_TTL", "5m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("JWT_LEEWAY", "0s")
	v.SetDefault("TRUST_FORWARDED_FOR", false)

	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	return &cfg, nil
}
