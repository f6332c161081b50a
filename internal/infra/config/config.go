package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	TimezoneName       string
	Location           *time.Location
	BackendBaseURL     string
	BackendTimeout     time.Duration
	BackendRPS         float64
	BackendBurst       int
	SessionSecret      string
	SessionCookie      string
	SessionTTL         time.Duration
	SessionSecure      bool
	SelectionTTL       time.Duration
	SnapshotTTL        time.Duration
	RateLimitPerSec    float64
	RateLimitBurst     int
	CORSOrigins        []string
	MongoURI           string
	MongoDB            string
	IdempotencyTTL     time.Duration
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaGroupID       string
	InstanceID         string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	S3Endpoint         string
	S3PublicEndpoint   string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
}

// Dev reports whether the process runs in a local development environment.
func (c Config) Dev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "local", "development":
		return true
	}
	return false
}

func (c Config) MongoEnabled() bool { return c.MongoURI != "" }

func (c Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func (c Config) S3Enabled() bool { return c.S3Endpoint != "" }

// MemoryBackend reports whether BACKEND_BASE_URL selects the in-process
// backend used for local runs.
func (c Config) MemoryBackend() bool { return strings.HasPrefix(c.BackendBaseURL, "memory:") }

// Load reads an optional .env file, then an optional YAML file named by
// CONFIG_FILE, then the environment. Real environment variables win over
// .env entries, which win over YAML defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		defaults, err := readYAML(path)
		if err != nil {
			return Config{}, err
		}
		src.defaults = defaults
	}
	return src.load()
}

type source struct {
	defaults map[string]string
}

func readYAML(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch val := v.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func (s source) load() (Config, error) {
	cfg := Config{
		Env:              s.getEnv("APP_ENV", "dev"),
		HTTPAddr:         s.getEnv("HTTP_ADDR", ":8080"),
		TimezoneName:     s.getEnv("APP_TIMEZONE", "Asia/Seoul"),
		BackendBaseURL:   strings.TrimRight(s.getEnv("BACKEND_BASE_URL", ""), "/"),
		SessionSecret:    s.getEnv("SESSION_SECRET", ""),
		SessionCookie:    s.getEnv("SESSION_COOKIE", "roomfront_session"),
		MongoURI:         s.getEnv("MONGO_URI", ""),
		MongoDB:          s.getEnv("MONGO_DB", "roomfront"),
		KafkaTopicPrefix: s.getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:     s.getEnv("KAFKA_GROUP_ID", "roomfront"),
		InstanceID:       s.getEnv("INSTANCE_ID", ""),
		S3Endpoint:       s.getEnv("S3_ENDPOINT", ""),
		S3PublicEndpoint: s.getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:      s.getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      s.getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         s.getEnv("S3_BUCKET", "roomfront-photos"),
	}
	cfg.KafkaBrokers = splitList(s.getEnv("KAFKA_BROKERS", ""))
	cfg.CORSOrigins = splitList(s.getEnv("CORS_ORIGINS", "http://localhost:5173"))

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.TimezoneName, err)
	}
	cfg.Location = loc

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"BACKEND_TIMEOUT", 10 * time.Second, &cfg.BackendTimeout},
		{"SESSION_TTL", 7 * 24 * time.Hour, &cfg.SessionTTL},
		{"SELECTION_TTL", 30 * time.Minute, &cfg.SelectionTTL},
		{"SNAPSHOT_TTL", time.Minute, &cfg.SnapshotTTL},
		{"IDEMP_TTL", 24 * time.Hour, &cfg.IdempotencyTTL},
		{"OUTBOX_POLL_INTERVAL", 500 * time.Millisecond, &cfg.OutboxPollInterval},
	}
	for _, d := range durations {
		v, err := s.parseDurationEnv(d.key, d.def)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	if cfg.BackendRPS, err = s.parseFloatEnv("BACKEND_RPS", 20); err != nil {
		return Config{}, err
	}
	if cfg.BackendBurst, err = s.parseIntEnv("BACKEND_BURST", 40); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerSec, err = s.parseFloatEnv("RATE_LIMIT_PER_SEC", 10); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = s.parseIntEnv("RATE_LIMIT_BURST", 20); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = s.parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}

	retryStr := s.getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}
	if cfg.InstanceID == "" {
		host, _ := os.Hostname()
		cfg.InstanceID = host
	}
	if cfg.SessionSecure, err = s.parseBoolEnv("SESSION_SECURE", !cfg.Dev()); err != nil {
		return Config{}, err
	}

	if cfg.BackendBaseURL == "" {
		return Config{}, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		if !cfg.Dev() {
			return Config{}, fmt.Errorf("SESSION_SECRET is required outside dev")
		}
		cfg.SessionSecret = randomSecret()
	}
	return cfg, nil
}

func (s source) getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := s.defaults[key]; ok && v != "" {
		return v
	}
	return def
}

func (s source) parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func (s source) parseBoolEnv(key string, def bool) (bool, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func (s source) parseFloatEnv(key string, def float64) (float64, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %w", key, err)
	}
	return v, nil
}

func (s source) parseIntEnv(key string, def int) (int, error) {
	raw := s.getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
