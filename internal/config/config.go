package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grades service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	DatabaseDebug  bool
	RedisURL       string
	NATSURL        string
	JWTSecret      string
	CORSOrigins    string
	ReportCacheTTL time.Duration
	WriteRateLimit int
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration from GRADES_* environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Grades API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.debug", false)
	v.SetDefault("cors.origins", "*")
	v.SetDefault("report.cache_ttl", "5m")
	v.SetDefault("rate_limit.writes", 30)
	v.SetDefault("openai.model", "gpt-4o-mini")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	ttl, err := time.ParseDuration(v.GetString("report.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}
	if ttl < 0 {
		return Config{}, fmt.Errorf("report cache ttl must not be negative")
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		DatabaseURL:    v.GetString("database.url"),
		DatabaseDebug:  v.GetBool("database.debug"),
		RedisURL:       v.GetString("redis.url"),
		NATSURL:        v.GetString("nats.url"),
		JWTSecret:      v.GetString("jwt.secret"),
		CORSOrigins:    v.GetString("cors.origins"),
		ReportCacheTTL: ttl,
		WriteRateLimit: v.GetInt("rate_limit.writes"),
		OpenAIAPIKey:   v.GetString("openai.api_key"),
		OpenAIModel:    v.GetString("openai.model"),
		OpenAIBaseURL:  v.GetString("openai.base_url"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.WriteRateLimit <= 0 {
		cfg.WriteRateLimit = 30
	}

	return cfg, nil
}
