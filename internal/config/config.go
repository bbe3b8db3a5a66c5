package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Logging  LoggingConfig
	Gemini   GeminiConfig
	Matching MatchingConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiryMin int
}

type LoggingConfig struct {
	Level string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// MatchingConfig tunes the recalculation orchestrator.
type MatchingConfig struct {
	DefaultWeights     domain.MatchWeights
	PoolLimit          int
	ChunkSize          int
	ChunkRetryAttempts int
	ChunkRetryBackoff  time.Duration
	Parallelism        int
}

// JobsConfig controls the nightly taste learning + recompute run.
type JobsConfig struct {
	Enabled  bool
	RunHour  int
	LockTTL  time.Duration
	Interval time.Duration
}

func setDefaults(v *viper.Viper) {
	def := domain.DefaultMatchWeights()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("JWT_ACCESS_EXPIRY_MIN", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")

	v.SetDefault("MATCH_WEIGHT_LIFE_ALIGNMENT", def.LifeAlignment)
	v.SetDefault("MATCH_WEIGHT_PSYCHOLOGICAL", def.Psychological)
	v.SetDefault("MATCH_WEIGHT_CHEMISTRY", def.Chemistry)
	v.SetDefault("MATCH_WEIGHT_TASTE_LEARNING", def.TasteLearning)
	v.SetDefault("MATCH_WEIGHT_PROFILE_COMPLETENESS", def.ProfileCompleteness)
	v.SetDefault("MATCH_POOL_LIMIT", 500)
	v.SetDefault("MATCH_CHUNK_SIZE", 100)
	v.SetDefault("MATCH_CHUNK_RETRY_ATTEMPTS", 3)
	v.SetDefault("MATCH_CHUNK_RETRY_BACKOFF", "500ms")
	v.SetDefault("MATCH_PARALLELISM", 4)

	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("JOBS_RUN_HOUR_UTC", 3)
	v.SetDefault("JOBS_LOCK_TTL", "2h")
	v.SetDefault("JOBS_TICK_INTERVAL", "1m")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := fromViper(v)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			Env:             v.GetString("ENV"),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:    v.GetString("JWT_ACCESS_SECRET"),
			AccessExpiryMin: v.GetInt("JWT_ACCESS_EXPIRY_MIN"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		Matching: MatchingConfig{
			DefaultWeights: domain.MatchWeights{
				LifeAlignment:       v.GetFloat64("MATCH_WEIGHT_LIFE_ALIGNMENT"),
				Psychological:       v.GetFloat64("MATCH_WEIGHT_PSYCHOLOGICAL"),
				Chemistry:           v.GetFloat64("MATCH_WEIGHT_CHEMISTRY"),
				TasteLearning:       v.GetFloat64("MATCH_WEIGHT_TASTE_LEARNING"),
				ProfileCompleteness: v.GetFloat64("MATCH_WEIGHT_PROFILE_COMPLETENESS"),
			},
			PoolLimit:          v.GetInt("MATCH_POOL_LIMIT"),
			ChunkSize:          v.GetInt("MATCH_CHUNK_SIZE"),
			ChunkRetryAttempts: v.GetInt("MATCH_CHUNK_RETRY_ATTEMPTS"),
			ChunkRetryBackoff:  v.GetDuration("MATCH_CHUNK_RETRY_BACKOFF"),
			Parallelism:        v.GetInt("MATCH_PARALLELISM"),
		},
		Jobs: JobsConfig{
			Enabled:  v.GetBool("JOBS_ENABLED"),
			RunHour:  v.GetInt("JOBS_RUN_HOUR_UTC"),
			LockTTL:  v.GetDuration("JOBS_LOCK_TTL"),
			Interval: v.GetDuration("JOBS_TICK_INTERVAL"),
		},
	}
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	return c.Matching.Validate()
}

// Validate checks the matching section, including the default weights.
func (m *MatchingConfig) Validate() error {
	if err := m.DefaultWeights.Validate(); err != nil {
		return fmt.Errorf("default match weights: %w", err)
	}
	if m.PoolLimit <= 0 {
		return fmt.Errorf("match pool limit must be positive")
	}
	if m.ChunkSize <= 0 {
		return fmt.Errorf("match chunk size must be positive")
	}
	if m.ChunkRetryAttempts < 1 {
		return fmt.Errorf("match chunk retry attempts must be at least 1")
	}
	if m.Parallelism < 1 {
		return fmt.Errorf("match parallelism must be at least 1")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr returns the HTTP listen address
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
