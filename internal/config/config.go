package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	AlertSubject        string
	ModelDir            string
	SeedFile            string
	PredictionCacheTTL  time.Duration
	RiskHighThreshold   float64
	RiskMediumThreshold float64
	JWTSecret           string
	OpenAIAPIKey        string
	AIModel             string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DROPOUT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Dropout Risk API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("alert.subject", "dropout.alerts")
	v.SetDefault("model.dir", "model_artifacts")
	v.SetDefault("seed.file", "data/students.json")
	v.SetDefault("prediction.cache_ttl", "300s")
	v.SetDefault("risk.high_threshold", 70.0)
	v.SetDefault("risk.medium_threshold", 40.0)
	v.SetDefault("ai.model", "gpt-4o-mini")

	ttlString := v.GetString("prediction.cache_ttl")
	if ttlString == "" {
		ttlString = "300s"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid prediction cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		AlertSubject:        v.GetString("alert.subject"),
		ModelDir:            v.GetString("model.dir"),
		SeedFile:            v.GetString("seed.file"),
		PredictionCacheTTL:  ttl,
		RiskHighThreshold:   v.GetFloat64("risk.high_threshold"),
		RiskMediumThreshold: v.GetFloat64("risk.medium_threshold"),
		JWTSecret:           v.GetString("jwt.secret"),
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		AIModel:             v.GetString("ai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.RiskHighThreshold <= cfg.RiskMediumThreshold {
		return Config{}, fmt.Errorf("risk thresholds must satisfy high > medium")
	}

	return cfg, nil
}
