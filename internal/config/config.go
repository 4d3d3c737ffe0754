package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nightloom/nightcore/internal/night"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Agora    AgoraConfig
	Night    NightConfig
	Metrics  MetricsConfig
}

// NightConfig carries the env-tunable knobs for the night.Engine, resolving
// spec.md §9's Open Questions to defaults a deployment can override.
type NightConfig struct {
	DrunkSeerThreshold  float64
	WolfVoteCountdownMs int
}

// ToNight converts the env-sourced config into the night package's own
// config struct, the only shape night.Engine accepts.
func (c NightConfig) ToNight() night.NightConfig {
	return night.NightConfig{
		DrunkSeerThreshold:  c.DrunkSeerThreshold,
		WolfVoteCountdownMs: c.WolfVoteCountdownMs,
	}
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Address string
}

type ServerConfig struct {
	Address        string
	Environment    string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	ExpiryHours       int
	RefreshExpiryDays int
}

type AgoraConfig struct {
	AppID          string
	AppCertificate string
	TokenExpiry    uint32
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Address:        getEnv("SERVER_ADDRESS", ":8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "werewolf_voice"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			ExpiryHours:       getEnvAsInt("JWT_EXPIRY_HOURS", 24),
			RefreshExpiryDays: getEnvAsInt("JWT_REFRESH_EXPIRY_DAYS", 7),
		},
		Agora: AgoraConfig{
			AppID:          getEnv("AGORA_APP_ID", ""),
			AppCertificate: getEnv("AGORA_APP_CERTIFICATE", ""),
			TokenExpiry:    uint32(getEnvAsInt("AGORA_TOKEN_EXPIRY", 3600)),
		},
		Night: NightConfig{
			DrunkSeerThreshold:  getEnvAsFloat("NIGHT_DRUNK_SEER_THRESHOLD", 0.5),
			WolfVoteCountdownMs: getEnvAsInt("NIGHT_WOLF_VOTE_COUNTDOWN_MS", 0),
		},
		Metrics: MetricsConfig{
			Enabled: getEnv("METRICS_ENABLED", "true") == "true",
			Address: getEnv("METRICS_ADDRESS", ":9090"),
		},
	}

	// Validate required fields (only in production)
	if cfg.Server.Environment == "production" {
		if cfg.Agora.AppID == "" {
			return nil, fmt.Errorf("AGORA_APP_ID is required in production")
		}
		if cfg.Agora.AppCertificate == "" {
			return nil, fmt.Errorf("AGORA_APP_CERTIFICATE is required in production")
		}
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
