package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string
	// LogOutput is a zap sink path such as stdout, stderr or a file.
	LogOutput string

	OTLPEndpoint      string
	OTLPProtocol      string
	TracingEnabled    bool
	TraceSampleRatio  float64
	QuietRequestPaths []string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	LedgerDriver  string
	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRateLimit  int
	LoginRateWindow time.Duration

	CORSAllowedOrigins []string

	Bootstrap BootstrapConfig
}

// BootstrapConfig describes the admin account created on startup when no user exists.
// HTTPEnabled exposes POST /api/auth/bootstrap and is off by default.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	HTTPEnabled   bool
}

const (
	LedgerDriverGorm  = "gorm"
	LedgerDriverMongo = "mongo"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "invoicedesk"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          httpAddr(),
		LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		LogOutput:         strings.TrimSpace(getenv("LOG_OUTPUT", "stdout")),
		OTLPEndpoint:      otlpEndpoint(),
		OTLPProtocol:      otlpProtocol(),
		TracingEnabled:    getenvBool("OTEL_ENABLED", false),
		TraceSampleRatio:  getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "sqlite")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "invoice_system"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "invoicedesk.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		LedgerDriver:      normalizeLedgerDriver(getenv("LEDGER_DRIVER", LedgerDriverGorm)),
		MongoURI:          strings.TrimSpace(getenv("MONGODB_URI", "")),
		MongoDatabase:     getenv("MONGODB_DATABASE", "invoice_system"),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
		LoginRateLimit:    getenvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:   time.Duration(getenvInt("LOGIN_RATE_WINDOW_SECONDS", 900)) * time.Second,
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.TrimSpace(getenv("ADMIN_EMAIL", "")),
			AdminPassword: getenv("ADMIN_PASSWORD", ""),
			AdminName:     getenv("ADMIN_NAME", "Administrator"),
			HTTPEnabled:   getenvBool("AUTH_HTTP_BOOTSTRAP", false),
		},
	}
	cfg.CORSAllowedOrigins = splitList(getenv("CORS_ALLOWED_ORIGINS", "*"))
	cfg.QuietRequestPaths = splitList(getenv("LOG_QUIET_PATHS", "/health,/api/debug/health,/metrics"))

	return cfg
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func httpAddr() string {
	if addr := strings.TrimSpace(os.Getenv("HTTP_ADDR")); addr != "" {
		return addr
	}
	return ":" + getenv("PORT", "5000")
}

// otlpEndpoint prefers the standard OTEL variable over the short form.
func otlpEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); v != "" {
		return v
	}
	return getenv("OTLP_ENDPOINT", "localhost:4317")
}

func otlpProtocol() string {
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); v != "" {
		return strings.ToLower(v)
	}
	return strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))
}

func normalizeLedgerDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case LedgerDriverMongo:
		return LedgerDriverMongo
	default:
		return LedgerDriverGorm
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
