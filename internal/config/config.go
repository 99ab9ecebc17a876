package config

import (
	"os"
	"strconv"
	"strings"
)

// DefaultJWTSecret is used when JWT_SECRET is not set. It is insecure and only
// meant for local development; main logs a warning when it is in effect.
const DefaultJWTSecret = "fallback-secret-key"

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// Avatar uploads are disabled when Endpoint is empty.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage has been configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret   string
	JWTTTLHours int
	BcryptCost  int
}

// AIConfig holds settings for the OpenAI-compatible chat completion endpoint.
type AIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	TimeoutSec int
}

// Enabled reports whether an API key is present.
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// JobsConfig holds background job schedules.
type JobsConfig struct {
	AbandonSweepSpec string
	AbandonGraceMin  int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env         string
	Port        string
	FrontendDir string
	CORSOrigins []string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Auth        AuthConfig
	AI          AIConfig
	Jobs        JobsConfig
}

// IsProduction reports whether APP_ENV is production.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "5000"),
		FrontendDir: getEnv("FRONTEND_DIR", ""),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5000",
		}),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "avatars"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", DefaultJWTSecret),
			JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 7*24),
			BcryptCost:  getEnvInt("BCRYPT_COST", 10),
		},
		AI: AIConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			TimeoutSec: getEnvInt("OPENAI_TIMEOUT_SEC", 30),
		},
		Jobs: JobsConfig{
			AbandonSweepSpec: getEnv("ABANDON_SWEEP_SPEC", "*/10 * * * *"),
			AbandonGraceMin:  getEnvInt("ABANDON_GRACE_MIN", 30),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
