package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Policy    PolicyConfig
	Retention RetentionConfig
}

// AppConfig holds server configuration
type AppConfig struct {
	Port        int
	LogLevel    string
	CORSOrigins []string
}

type StoreConfig struct {
	DBPath string
}

// PolicyConfig selects the payroll policy. File is a JSON policy document;
// the remaining fields override it when set.
type PolicyConfig struct {
	File                  string
	DefaultClassification string
	EveningShiftStart     string
	HalfDayThreshold      int
}

// RetentionConfig controls how long runs are kept.
type RetentionConfig struct {
	RunRetention  time.Duration
	SweepInterval time.Duration
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	return LoadFrom()
}

// LoadFrom is Load with explicit env files. No files means ".env".
func LoadFrom(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:        appPort,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", "*"),
	}

	config.Store = StoreConfig{
		DBPath: getEnv("DB_PATH", "runs.db"),
	}

	threshold := 0
	if v := getEnv("HALF_DAY_THRESHOLD", ""); v != "" {
		if threshold, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid HALF_DAY_THRESHOLD: %w", err)
		}
	}
	config.Policy = PolicyConfig{
		File:                  getEnv("POLICY_FILE", ""),
		DefaultClassification: getEnv("DEFAULT_CLASSIFICATION", ""),
		EveningShiftStart:     getEnv("EVENING_SHIFT_START", ""),
		HalfDayThreshold:      threshold,
	}

	retention, err := time.ParseDuration(getEnv("RUN_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_RETENTION: %w", err)
	}
	sweep, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	config.Retention = RetentionConfig{RunRetention: retention, SweepInterval: sweep}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

// PayrollPolicy builds the effective policy: defaults, then POLICY_FILE,
// then the individual environment overrides.
func (c *Config) PayrollPolicy() (payroll.Policy, error) {
	pf := factory.NewPolicyFactory()
	p := payroll.DefaultPolicy()
	if c.Policy.File != "" {
		loaded, err := pf.LoadFile(c.Policy.File)
		if err != nil {
			return payroll.Policy{}, err
		}
		p = *loaded
	}

	if c.Policy.DefaultClassification != "" {
		cl, err := payroll.ParseClassification(c.Policy.DefaultClassification)
		if err != nil {
			return payroll.Policy{}, fmt.Errorf("DEFAULT_CLASSIFICATION: %w", err)
		}
		p.DefaultClassification = cl
	}
	if c.Policy.EveningShiftStart != "" {
		if !generic.IsPunch(c.Policy.EveningShiftStart) {
			return payroll.Policy{}, fmt.Errorf("%w: EVENING_SHIFT_START %q is not a clock time",
				generic.ErrInvalidPolicy, c.Policy.EveningShiftStart)
		}
		p.EveningStartMinutes = generic.ParseClock(c.Policy.EveningShiftStart)
	}
	if c.Policy.HalfDayThreshold > 0 {
		p.HalfDayThresholdMinutes = c.Policy.HalfDayThreshold
	}

	if err := p.Validate(); err != nil {
		return payroll.Policy{}, err
	}
	return p, nil
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values are info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
