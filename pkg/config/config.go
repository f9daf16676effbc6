package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles Prometheus exposure.
type MetricsConfig struct {
	Enabled bool
}

// SchedulerConfig governs the constraint-based suggestion engine.
type SchedulerConfig struct {
	RecoveryHours  int
	SessionLength  time.Duration
	SolverBudget   time.Duration
	MaxSuggestions int
	MaxFlexibility int
	SessionTTL     time.Duration
	SessionStore   string
	Weights        WeightsConfig
}

// WeightsConfig is the versioned scoring policy for the soft objectives.
type WeightsConfig struct {
	Version             string
	PreferenceMatch     float64
	CoachLoadBalance    float64
	CapacityUtilization float64
	RecoveryTime        float64
	TimeContinuity      float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	cfg.Scheduler = SchedulerConfig{
		RecoveryHours:  v.GetInt("SCHEDULER_RECOVERY_HOURS"),
		SessionLength:  parseDuration(v.GetString("SCHEDULER_SESSION_LENGTH"), time.Hour),
		SolverBudget:   parseDuration(v.GetString("SCHEDULER_SOLVER_BUDGET"), 10*time.Second),
		MaxSuggestions: v.GetInt("SCHEDULER_MAX_SUGGESTIONS"),
		MaxFlexibility: v.GetInt("SCHEDULER_MAX_FLEXIBILITY_DAYS"),
		SessionTTL:     parseDuration(v.GetString("SCHEDULER_SESSION_TTL"), time.Hour),
		SessionStore:   v.GetString("SCHEDULER_SESSION_STORE"),
		Weights: WeightsConfig{
			Version:             v.GetString("SCHEDULER_WEIGHTS_VERSION"),
			PreferenceMatch:     v.GetFloat64("SCHEDULER_WEIGHT_PREFERENCE"),
			CoachLoadBalance:    v.GetFloat64("SCHEDULER_WEIGHT_LOAD_BALANCE"),
			CapacityUtilization: v.GetFloat64("SCHEDULER_WEIGHT_CAPACITY"),
			RecoveryTime:        v.GetFloat64("SCHEDULER_WEIGHT_RECOVERY"),
			TimeContinuity:      v.GetFloat64("SCHEDULER_WEIGHT_CONTINUITY"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "coach_booking")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("SCHEDULER_RECOVERY_HOURS", 24)
	v.SetDefault("SCHEDULER_SESSION_LENGTH", "1h")
	v.SetDefault("SCHEDULER_SOLVER_BUDGET", "10s")
	v.SetDefault("SCHEDULER_MAX_SUGGESTIONS", 5)
	v.SetDefault("SCHEDULER_MAX_FLEXIBILITY_DAYS", 14)
	v.SetDefault("SCHEDULER_SESSION_TTL", "1h")
	v.SetDefault("SCHEDULER_SESSION_STORE", "redis")

	v.SetDefault("SCHEDULER_WEIGHTS_VERSION", "v1")
	v.SetDefault("SCHEDULER_WEIGHT_PREFERENCE", 10.0)
	v.SetDefault("SCHEDULER_WEIGHT_LOAD_BALANCE", 5.0)
	v.SetDefault("SCHEDULER_WEIGHT_CAPACITY", 3.0)
	v.SetDefault("SCHEDULER_WEIGHT_RECOVERY", 8.0)
	v.SetDefault("SCHEDULER_WEIGHT_CONTINUITY", 2.0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
