package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Canvas    CanvasConfig
	Pen       PenConfig
	Session   SessionConfig
	Ocr       OcrConfig
	Discovery DiscoveryConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	PenLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Driver     string // "postgres", "sqlite" or "memory"
	Connection string
	SqlitePath string
}

type CacheConfig struct {
	PageTTL time.Duration // 0 disables the redis page cache
}

type CanvasConfig struct {
	Width       int
	Height      int
	GridSpacing int
}

type PenConfig struct {
	FlushInterval     time.Duration
	MaxBufferedPoints int
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type OcrConfig struct {
	BaseURL         string
	DefaultLanguage string
	Topic           string
}

type DiscoveryConfig struct {
	Enabled  bool
	Instance string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	hostname, _ := os.Hostname()

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PenLogFilePath:     getEnv("PEN_LOG_FILE_PATH", "logs/pen.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORAGE_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			SqlitePath: getEnv("SQLITE_PATH", "data/econote.db"),
		},
		Cache: CacheConfig{
			PageTTL: getEnvAsDuration("PAGE_CACHE_TTL", 10*time.Minute),
		},
		Canvas: CanvasConfig{
			Width:       getEnvAsInt("CANVAS_WIDTH", 1240),
			Height:      getEnvAsInt("CANVAS_HEIGHT", 1754),
			GridSpacing: getEnvAsInt("CANVAS_GRID_SPACING", 30),
		},
		Pen: PenConfig{
			FlushInterval:     getEnvAsDuration("PEN_FLUSH_INTERVAL", 100*time.Millisecond),
			MaxBufferedPoints: getEnvAsInt("PEN_MAX_BUFFERED_POINTS", 10),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Ocr: OcrConfig{
			BaseURL:         getEnv("OCR_BASE_URL", ""),
			DefaultLanguage: getEnv("OCR_DEFAULT_LANGUAGE", "eng"),
			Topic:           getEnv("OCR_TOPIC", "OCR_PAGE"),
		},
		Discovery: DiscoveryConfig{
			Enabled:  getEnvAsBool("MDNS_ENABLED", false),
			Instance: getEnv("MDNS_INSTANCE", hostname),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "econote-backend"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
