package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings of the API server.
type Config struct {
	AppPort             string
	DatabaseDriver      string
	DatabaseDSN         string
	JWTSecret           string
	JWTIssuer           string
	TokenTTL            time.Duration
	StoreTimeout        time.Duration
	RabbitMQURL         string
	RedisAddr           string
	WeatherAPIURL       string
	WeatherAPIKey       string
	WeatherRefreshEvery int
	WeatherCacheTTL     time.Duration
	AuthRateLimit       int
	CascadeUserDelete   bool
	ShutdownTimeout     time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "grocery.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "grocery-tracker")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("WEATHER_API_URL", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("WEATHER_API_KEY", "")
	v.SetDefault("WEATHER_REFRESH_EVERY", 15)
	v.SetDefault("WEATHER_CACHE_TTL", "30m")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("CASCADE_USER_DELETE", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "30s")
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return FromViper(v)
}

// FromViper builds a validated Config out of v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		DatabaseDriver:      v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		TokenTTL:            v.GetDuration("TOKEN_TTL"),
		StoreTimeout:        v.GetDuration("STORE_TIMEOUT"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		WeatherAPIURL:       v.GetString("WEATHER_API_URL"),
		WeatherAPIKey:       v.GetString("WEATHER_API_KEY"),
		WeatherRefreshEvery: v.GetInt("WEATHER_REFRESH_EVERY"),
		WeatherCacheTTL:     v.GetDuration("WEATHER_CACHE_TTL"),
		AuthRateLimit:       v.GetInt("AUTH_RATE_LIMIT"),
		CascadeUserDelete:   v.GetBool("CASCADE_USER_DELETE"),
		ShutdownTimeout:     v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.WeatherRefreshEvery < 0 {
		return fmt.Errorf("WEATHER_REFRESH_EVERY must not be negative")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}
