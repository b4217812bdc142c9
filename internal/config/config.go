package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"studiofinder/internal/discovery"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "studio.db"
	defaultCatalogTimeout = "5s"
	defaultSessionSecret  = "change-me-session-secret"
	defaultSessionTTL     = "30m"
	defaultLogLevel       = "info"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	CatalogURL         string
	CatalogTimeout     time.Duration
	SessionSecret      string
	SessionTTL         time.Duration
	MapFitPaddingPx    int
	MapAnimation       time.Duration
	MapMaxZoom         float64
	ViewBreakpointPx   int
	CORSAllowedOrigins []string
	LogLevel           string
}

// LoadDotEnv reads .env files into the environment when present. Variables
// already set win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.CatalogURL = strings.TrimSpace(os.Getenv("CATALOG_URL"))
	cfg.SessionSecret = strings.TrimSpace(getEnv("SESSION_SECRET", defaultSessionSecret))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.CatalogTimeout, err = parseDurationEnv("CATALOG_TIMEOUT", defaultCatalogTimeout)
	if err != nil {
		return nil, err
	}

	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	cfg.MapFitPaddingPx, err = parseIntEnv("MAP_FIT_PADDING_PX", discovery.DefaultFitPadding)
	if err != nil {
		return nil, err
	}

	animationMS, err := parseIntEnv("MAP_ANIMATION_MS", int(discovery.DefaultAnimationDuration/time.Millisecond))
	if err != nil {
		return nil, err
	}
	cfg.MapAnimation = time.Duration(animationMS) * time.Millisecond

	cfg.MapMaxZoom, err = parseFloatEnv("MAP_MAX_ZOOM", discovery.DefaultMaxZoom)
	if err != nil {
		return nil, err
	}

	cfg.ViewBreakpointPx, err = parseIntEnv("VIEW_BREAKPOINT_PX", discovery.DefaultBreakpoint)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EngineOptions maps the map and layout settings onto engine options.
func (c *Config) EngineOptions() discovery.Options {
	return discovery.Options{
		Fitter: discovery.FitterOptions{
			PaddingPx:         c.MapFitPaddingPx,
			MaxZoom:           c.MapMaxZoom,
			AnimationDuration: c.MapAnimation,
		},
		Breakpoint:   c.ViewBreakpointPx,
		FetchTimeout: c.CatalogTimeout,
	}
}

func (c *Config) IsProduction() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" && cfg.CatalogURL == "" {
		return fmt.Errorf("one of DATABASE_URL or CATALOG_URL must be set")
	}
	if cfg.CatalogURL != "" && !strings.HasPrefix(cfg.CatalogURL, "http://") && !strings.HasPrefix(cfg.CatalogURL, "https://") {
		return fmt.Errorf("CATALOG_URL must be an http(s) URL")
	}
	if cfg.CatalogTimeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be > 0")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.MapFitPaddingPx < 0 {
		return fmt.Errorf("MAP_FIT_PADDING_PX must be >= 0")
	}
	if cfg.MapAnimation < 0 {
		return fmt.Errorf("MAP_ANIMATION_MS must be >= 0")
	}
	if cfg.MapMaxZoom <= 0 || cfg.MapMaxZoom > 22 {
		return fmt.Errorf("MAP_MAX_ZOOM must be in (0, 22]")
	}
	if cfg.ViewBreakpointPx <= 0 {
		return fmt.Errorf("VIEW_BREAKPOINT_PX must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.SessionSecret, defaultSessionSecret) {
			return fmt.Errorf("in prod/release SESSION_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
