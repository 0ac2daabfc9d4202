package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string         `validate:"required"`
	DatabaseURL         string         `validate:"required"`
	Env                 string         `validate:"oneof=dev test staging prod production"`
	Timezone            string         `validate:"required"`
	Location            *time.Location `validate:"-"`
	CORSAllowedOrigins  []string       `validate:"dive,url"`
	APIMaxBodyBytes     int64          `validate:"gt=0"`
	ImportMaxFileBytes  int64          `validate:"gt=0"`
	ImportMaxRows       int            `validate:"gte=0"`
	ImportDefaultOrigin string         `validate:"max=120"`
	ReadHeaderTimeout   time.Duration  `validate:"gt=0"`
	ReadTimeout         time.Duration  `validate:"gt=0"`
	WriteTimeout        time.Duration  `validate:"gt=0"`
	IdleTimeout         time.Duration  `validate:"gt=0"`
	RateLimitMaxIPs     int            `validate:"gte=0"`
	RateLimitPerMinute  int            `validate:"gte=0"`
	RedisAddr           string         `validate:"omitempty,hostname_port"`
	RedisPassword       string
	ArchiveEndpoint     string         `validate:"omitempty,hostname_port"`
	ArchiveAccessKey    string         `validate:"required_with=ArchiveEndpoint"`
	ArchiveSecretKey    string         `validate:"required_with=ArchiveEndpoint"`
	ArchiveBucket       string         `validate:"required_with=ArchiveEndpoint"`
	ArchiveUseSSL       bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getEnv("API_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Env:         getEnv("APP_ENV", "dev"),
		Timezone:    getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		CORSAllowedOrigins: getEnvCSV("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),
		APIMaxBodyBytes:     int64(getEnvInt("API_MAX_BODY_MB", 2)) * 1024 * 1024,
		ImportMaxFileBytes:  int64(getEnvInt("IMPORT_MAX_FILE_MB", 10)) * 1024 * 1024,
		ImportMaxRows:       getEnvInt("IMPORT_MAX_ROWS", 20000),
		ImportDefaultOrigin: getEnv("IMPORT_DEFAULT_ORIGIN", "Importação CSV"),
		ReadHeaderTimeout:   time.Duration(getEnvInt("API_READ_HEADER_TIMEOUT_SEC", 5)) * time.Second,
		ReadTimeout:         time.Duration(getEnvInt("API_READ_TIMEOUT_SEC", 30)) * time.Second,
		WriteTimeout:        time.Duration(getEnvInt("API_WRITE_TIMEOUT_SEC", 60)) * time.Second,
		IdleTimeout:         time.Duration(getEnvInt("API_IDLE_TIMEOUT_SEC", 60)) * time.Second,
		RateLimitMaxIPs:     getEnvInt("RATE_LIMIT_MAX_IPS", 10000),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		ArchiveEndpoint:     strings.TrimSpace(os.Getenv("ARCHIVE_ENDPOINT")),
		ArchiveAccessKey:    os.Getenv("ARCHIVE_ACCESS_KEY"),
		ArchiveSecretKey:    os.Getenv("ARCHIVE_SECRET_KEY"),
		ArchiveBucket:       getEnv("ARCHIVE_BUCKET", "contact-imports"),
		ArchiveUseSSL:       getEnvBool("ARCHIVE_USE_SSL", false),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and resolves Location from Timezone.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

func (c Config) ArchiveEnabled() bool {
	return c.ArchiveEndpoint != ""
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvCSV(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
