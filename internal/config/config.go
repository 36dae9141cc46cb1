// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage paths, token signing, analyzer
// endpoints, rate limiting, and observability.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-pharmacy-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig defines token signing and credential hashing settings.
//
// SecretGenerated reports whether the signing secret was generated at load
// time because JWT_SECRET was unset. A generated secret invalidates all
// previously issued tokens on restart; deployments should always provide
// externally supplied key material.
type AuthConfig struct {
	JWTSecret       string        // JWT_SECRET (hex or raw; generated when empty)
	SecretGenerated bool          // true when JWTSecret was not supplied
	TokenTTL        time.Duration // TOKEN_TTL, e.g. 24h
	BcryptCost      int           // BCRYPT_COST (bcrypt.DefaultCost when 0)
}

// ObjectStoreConfig defines the MinIO/S3 tagged object store used by the
// analysis result cache. When Endpoint is empty the server falls back to an
// in-process store (useful for dev and tests).
type ObjectStoreConfig struct {
	Endpoint     string // MINIO_ENDPOINT, e.g. "minio:9000"
	AccessKey    string // MINIO_ACCESS_KEY
	SecretKey    string // MINIO_SECRET_KEY
	UseSSL       bool   // MINIO_USE_SSL
	TextBucket   string // CACHE_TEXT_BUCKET (raw analyzed documents)
	EntityBucket string // CACHE_ENTITY_BUCKET (extracted entity sets)
}

// AnalyzerConfig defines the external document-text and healthcare-entity
// analysis services consumed by the extraction gateway.
type AnalyzerConfig struct {
	DocEndpoint    string        // DOC_ANALYZER_ENDPOINT
	DocKey         string        // DOC_ANALYZER_KEY
	EntityEndpoint string        // ENTITY_ANALYZER_ENDPOINT
	EntityKey      string        // ENTITY_ANALYZER_KEY
	Timeout        time.Duration // ANALYZER_TIMEOUT per external call
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBPath        string  // SQLite path for the row store
	MinConfidence float64 // recognition confidence cutoff (0,1]; words at or below are dropped

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Domain collaborators
	Auth        AuthConfig
	ObjectStore ObjectStoreConfig
	Analyzer    AnalyzerConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:        getenv("DB_PATH", "pharmacy.db"),
		MinConfidence: getfloat("MIN_WORD_CONFIDENCE", 0.85),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Token signing
		Auth: AuthConfig{
			JWTSecret:  getenv("JWT_SECRET", ""),
			TokenTTL:   getdur("TOKEN_TTL", 24*time.Hour),
			BcryptCost: getint("BCRYPT_COST", 0),
		},

		// Tagged object store (result cache)
		ObjectStore: ObjectStoreConfig{
			Endpoint:     getenv("MINIO_ENDPOINT", ""),
			AccessKey:    getenv("MINIO_ACCESS_KEY", ""),
			SecretKey:    getenv("MINIO_SECRET_KEY", ""),
			UseSSL:       getbool("MINIO_USE_SSL", false),
			TextBucket:   getenv("CACHE_TEXT_BUCKET", "prescription-text"),
			EntityBucket: getenv("CACHE_ENTITY_BUCKET", "prescription-entities"),
		},

		// External analyzers
		Analyzer: AnalyzerConfig{
			DocEndpoint:    getenv("DOC_ANALYZER_ENDPOINT", ""),
			DocKey:         getenv("DOC_ANALYZER_KEY", ""),
			EntityEndpoint: getenv("ENTITY_ANALYZER_ENDPOINT", ""),
			EntityKey:      getenv("ENTITY_ANALYZER_KEY", ""),
			Timeout:        getdur("ANALYZER_TIMEOUT", 30*time.Second),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-pharmacy-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		// Process-local secret: every restart invalidates outstanding tokens.
		// The caller is expected to log a warning when SecretGenerated is set.
		cfg.Auth.JWTSecret = randomSecret()
		cfg.Auth.SecretGenerated = true
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		return cfg, errors.New("MIN_WORD_CONFIDENCE must be in (0,1]")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("TOKEN_TTL must be > 0")
	}
	if cfg.Auth.BcryptCost < 0 || cfg.Auth.BcryptCost > 31 {
		return cfg, errors.New("BCRYPT_COST must be in [0,31]")
	}
	if strings.TrimSpace(cfg.ObjectStore.TextBucket) == "" || strings.TrimSpace(cfg.ObjectStore.EntityBucket) == "" {
		return cfg, errors.New("cache bucket names must not be empty")
	}
	if cfg.ObjectStore.TextBucket == cfg.ObjectStore.EntityBucket {
		return cfg, errors.New("CACHE_TEXT_BUCKET and CACHE_ENTITY_BUCKET must differ")
	}
	if cfg.Analyzer.Timeout <= 0 {
		return cfg, errors.New("ANALYZER_TIMEOUT must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// randomSecret generates a 32-byte hex signing secret for processes started
// without JWT_SECRET.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back loudly.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
