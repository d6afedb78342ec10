package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `validate:"required,numeric"`

	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required,numeric"`

	RedisHost     string
	RedisPort     string `validate:"omitempty,numeric"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	JWTSecret   string        `validate:"required,min=16"`
	JWTIssuer   string        `validate:"required"`
	JWTDuration time.Duration `validate:"gt=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string

	ClassifierMinConfidence float64 `validate:"gt=0,lte=1"`
	CheatDaysCount          bool
	CheatDaysPerWeek        int `validate:"gte=0,lte=7"`

	RateLimit       int           `validate:"gte=0"`
	RateLimitWindow time.Duration `validate:"gt=0"`
	AllowedOrigins  []string
}

var validate = validator.New()

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "kanso-accountability-engine"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}
	cfg.AllowedOrigins = []string{getEnv("CORS_ORIGIN", "*")}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.JWTDuration, err = getDuration("JWT_DURATION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ClassifierMinConfidence, err = getFloat("CLASSIFIER_MIN_CONFIDENCE", 0.25); err != nil {
		return nil, err
	}
	if cfg.CheatDaysCount, err = getBool("CHEAT_DAYS_COUNT", true); err != nil {
		return nil, err
	}
	if cfg.CheatDaysPerWeek, err = getInt("CHEAT_DAYS_PER_WEEK", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a number: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration: %w", key, err)
	}
	return d, nil
}
