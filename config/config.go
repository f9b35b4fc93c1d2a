package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// MemoryDSN selects the in-process stores instead of postgres.
const MemoryDSN = "memory://"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Storage  StorageConfig
	AI       AIConfig
	Mail     MailConfig
	Site     SiteConfig
	Log      LogConfig

	// DebugDiagnostics exposes masked secrets and upstream bodies on the admin debug endpoints.
	DebugDiagnostics bool
}

type ServerConfig struct {
	Port            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

type DatabaseConfig struct {
	DSN string
}

func (d DatabaseConfig) InMemory() bool { return d.DSN == MemoryDSN }

type AuthConfig struct {
	JWTSecret              string
	TokenTTL               time.Duration
	GoogleClientID         string
	GoogleClientSecret     string
	GoogleRedirectURL      string
	GoogleFrontendRedirect string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	AppURL        string
	Currency      string
}

func (s StripeConfig) Enabled() bool { return s.SecretKey != "" }

type StorageConfig struct {
	Driver        string `json:"driver"`
	Endpoint      string `json:"endpoint" validate:"required"`
	AccessKey     string `json:"access_key" validate:"required"`
	SecretKey     string `json:"secret_key" validate:"required"`
	Bucket        string `json:"bucket" validate:"required"`
	Region        string `json:"region"`
	UseSSL        bool   `json:"use_ssl"`
	PublicBaseURL string `json:"public_base_url" validate:"omitempty,url"`
}

func (s StorageConfig) Enabled() bool { return s.Endpoint != "" && s.Bucket != "" }

type AIConfig struct {
	BaseURL      string
	DefaultModel string
	FallbackKey  string
	Timeout      time.Duration
}

type MailConfig struct {
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	From           string
	SimulatedDelay time.Duration
}

func (m MailConfig) SMTPEnabled() bool { return m.SMTPHost != "" }

type SiteConfig struct {
	MasterSite  bool
	PartnerID   string
	AnalyticsID string
}

type LogConfig struct {
	Level  string
	Format string
}

var validate = validator.New()

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     splitList(getEnv("CORS_ORIGIN", "http://localhost:3000")),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("JWT_SECRET", ""),
			TokenTTL:               getEnvDuration("TOKEN_TTL", 72*time.Hour),
			GoogleClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:      getEnv("GOOGLE_REDIRECT_URL", ""),
			GoogleFrontendRedirect: getEnv("GOOGLE_FRONTEND_REDIRECT", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			AppURL:        getEnv("APP_URL", "http://localhost:3000"),
			Currency:      getEnv("STRIPE_CURRENCY", "usd"),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "minio"),
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:        getEnv("STORAGE_BUCKET", ""),
			Region:        getEnv("STORAGE_REGION", "us-east-1"),
			UseSSL:        getEnvBool("STORAGE_USE_SSL", false),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_URL", ""),
		},
		AI: AIConfig{
			BaseURL:      getEnv("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			DefaultModel: getEnv("AI_MODEL", "gemini-1.5-flash"),
			FallbackKey:  getEnv("AI_API_KEY", ""),
			Timeout:      getEnvDuration("AI_TIMEOUT", 60*time.Second),
		},
		Mail: MailConfig{
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASS", ""),
			From:           getEnv("EMAIL_FROM", "newsroom@localhost"),
			SimulatedDelay: getEnvDuration("MAIL_SIMULATED_DELAY", 2*time.Second),
		},
		Site: SiteConfig{
			MasterSite:  getEnvBool("MASTER_SITE", false),
			PartnerID:   getEnv("PARTNER_ID", ""),
			AnalyticsID: getEnv("ANALYTICS_ID", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		DebugDiagnostics: getEnvBool("DEBUG_DIAGNOSTICS", false),
	}

	if blob := getEnv("STORAGE_CREDENTIALS", ""); blob != "" {
		creds, err := ParseCredentials(blob)
		if err != nil {
			return nil, err
		}
		if creds.Driver == "" {
			creds.Driver = cfg.Storage.Driver
		}
		if creds.Region == "" {
			creds.Region = cfg.Storage.Region
		}
		cfg.Storage = *creds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.DSN == "" {
		missing = append(missing, "DB_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	switch c.Storage.Driver {
	case "minio", "s3":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

// ParseCredentials decodes a JSON storage credential blob and checks its required fields.
func ParseCredentials(blob string) (*StorageConfig, error) {
	var creds StorageConfig
	if err := json.Unmarshal([]byte(blob), &creds); err != nil {
		return nil, fmt.Errorf("invalid STORAGE_CREDENTIALS: %w", err)
	}
	if err := validate.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, fmt.Errorf("invalid STORAGE_CREDENTIALS: bad fields %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("invalid STORAGE_CREDENTIALS: %w", err)
	}
	return &creds, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
