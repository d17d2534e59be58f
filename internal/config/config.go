package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAppName          = "RetainDental"
	defaultAppEnv           = "development"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultShutdownDelay    = 10 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultIdentityBackend  = IdentityBackendPostgres
	defaultLoginDomain      = "retain.dental"
	defaultStepTimeout      = 5 * time.Second
	defaultFallbackPIN      = "123456"
	defaultLogoCacheTTL     = time.Hour
	defaultLogoFetchTimeout = 5 * time.Second
	defaultSignupRate       = 10
	idemTTLSecondsEnvVar    = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar        = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar   = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar  = "SHUTDOWN_TIMEOUT"
	configFileEnvVar        = "CONFIG_FILE"
)

// Identity backends selectable through IDENTITY_BACKEND.
const (
	IdentityBackendPostgres = "postgres"
	IdentityBackendHTTP     = "http"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	AutoMigrate    bool

	IdentityBackend    string
	IdentityURL        string
	IdentityServiceKey string

	// Provisioning workflow settings.
	LoginDomain       string
	StepTimeout       time.Duration
	FallbackPIN       string
	RequirePIN        bool
	ConcurrentRecords bool

	LogoCacheTTL        time.Duration
	LogoFetchTimeout    time.Duration
	SignupRatePerMinute int
}

// Load reads configuration values from the environment and populates a Config instance.
// When CONFIG_FILE points at a YAML file of KEY: value pairs, those values act as
// defaults underneath the real environment.
func Load() (Config, error) {
	src, err := newSource(os.Getenv(configFileEnvVar))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:            src.get("APP_NAME", defaultAppName),
		AppEnv:             src.get("APP_ENV", defaultAppEnv),
		Port:               src.get("PORT", defaultPort),
		LogLevel:           strings.ToLower(src.get("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        src.get("DATABASE_URL", ""),
		RedisURL:           src.get("REDIS_URL", ""),
		ShutdownPeriod:     defaultShutdownDelay,
		IdempotencyTTL:     defaultIdempotencyTTL,
		IdentityBackend:    strings.ToLower(src.get("IDENTITY_BACKEND", defaultIdentityBackend)),
		IdentityURL:        strings.TrimRight(src.get("IDENTITY_URL", ""), "/"),
		IdentityServiceKey: src.get("IDENTITY_SERVICE_KEY", ""),
		LoginDomain:        strings.ToLower(src.get("LOGIN_DOMAIN", defaultLoginDomain)),
		FallbackPIN:        src.get("PROVISION_FALLBACK_PIN", defaultFallbackPIN),
	}

	if cfg.ShutdownPeriod, err = src.seconds(shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = src.seconds(idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.StepTimeout, err = src.duration("PROVISION_STEP_TIMEOUT", defaultStepTimeout); err != nil {
		return Config{}, err
	}
	if cfg.LogoCacheTTL, err = src.duration("LOGO_CACHE_TTL", defaultLogoCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.LogoFetchTimeout, err = src.duration("LOGO_FETCH_TIMEOUT", defaultLogoFetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RequirePIN, err = src.boolean("PROVISION_REQUIRE_PIN", false); err != nil {
		return Config{}, err
	}
	if cfg.ConcurrentRecords, err = src.boolean("PROVISION_CONCURRENT_RECORDS", false); err != nil {
		return Config{}, err
	}
	if cfg.AutoMigrate, err = src.boolean("AUTO_MIGRATE", false); err != nil {
		return Config{}, err
	}
	if cfg.SignupRatePerMinute, err = src.integer("SIGNUP_RATE_PER_MINUTE", defaultSignupRate); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.StepTimeout <= 0 {
		return fmt.Errorf("PROVISION_STEP_TIMEOUT must be positive")
	}
	if c.LoginDomain == "" || strings.Contains(c.LoginDomain, "@") {
		return fmt.Errorf("LOGIN_DOMAIN must be a bare domain")
	}

	switch c.IdentityBackend {
	case IdentityBackendPostgres:
	case IdentityBackendHTTP:
		if c.IdentityURL == "" {
			return fmt.Errorf("IDENTITY_URL must be set when IDENTITY_BACKEND=%s", IdentityBackendHTTP)
		}
		if c.IdentityServiceKey == "" {
			return fmt.Errorf("IDENTITY_SERVICE_KEY must be set when IDENTITY_BACKEND=%s", IdentityBackendHTTP)
		}
	default:
		return fmt.Errorf("unknown IDENTITY_BACKEND %q", c.IdentityBackend)
	}

	if c.IsDev() {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set")
	}
	return nil
}

// IsDev reports whether the service runs in a local development environment,
// where Postgres and Redis may be absent and in-memory backends are used.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

type source struct {
	file map[string]string
}

func newSource(path string) (source, error) {
	if path == "" {
		return source{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read %s: %w", configFileEnvVar, err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return source{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return source{file: values}, nil
}

func (s source) get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := s.file[key]; value != "" {
		return value
	}
	return fallback
}

func (s source) duration(key string, fallback time.Duration) (time.Duration, error) {
	v := s.get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// seconds honours an integer seconds variable first and a Go duration variable second.
func (s source) seconds(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := s.get(secondsKey, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(n) * time.Second, nil
	}
	return s.duration(durationKey, fallback)
}

func (s source) boolean(key string, fallback bool) (bool, error) {
	v := s.get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func (s source) integer(key string, fallback int) (int, error) {
	v := s.get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
