package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string `yaml:"port"`
	DBDSN     string `yaml:"db_dsn"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	AppName   string `yaml:"app_name"`

	// Minutos por defecto de un grant aprobado cuando allow_minutes no viene.
	DefaultGrantMinutes int `yaml:"default_grant_minutes"`

	SwaggerEnabled bool `yaml:"swagger_enabled"`

	LeaveSync          LeaveSyncConfig          `yaml:"leave_sync"`
	SimulatedDecisions SimulatedDecisionsConfig `yaml:"simulated_decisions"`
}

type LeaveSyncConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// SimulatedDecisionsConfig controla el loop que aprueba/rechaza licencias
// pendientes en lugar de un manager real. Apagado por defecto.
type SimulatedDecisionsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	MinAge       time.Duration `yaml:"min_age"`
	ApproveRatio float64       `yaml:"approve_ratio"`
}

func Default() Config {
	return Config{
		Port:                "8080",
		LogLevel:            "info",
		LogFormat:           "text",
		AppName:             "hr-portal",
		DefaultGrantMinutes: 15,
		SwaggerEnabled:      true,
		LeaveSync: LeaveSyncConfig{
			Enabled:  true,
			Interval: time.Minute,
		},
		SimulatedDecisions: SimulatedDecisionsConfig{
			Enabled:      false,
			Interval:     30 * time.Second,
			MinAge:       2 * time.Minute,
			ApproveRatio: 0.7,
		},
	}
}

// Load arma la config en capas:
// 1) defaults
// 2) .env (si existe)
// 3) archivo YAML (path explícito o CONFIG_FILE)
// 4) variables de entorno
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if strings.TrimSpace(path) != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("config: port required")
	}
	if c.DefaultGrantMinutes <= 0 {
		return fmt.Errorf("config: default_grant_minutes must be > 0")
	}
	if c.LeaveSync.Enabled && c.LeaveSync.Interval <= 0 {
		return fmt.Errorf("config: leave_sync.interval must be > 0")
	}
	sd := c.SimulatedDecisions
	if sd.Enabled && sd.Interval <= 0 {
		return fmt.Errorf("config: simulated_decisions.interval must be > 0")
	}
	if sd.ApproveRatio < 0 || sd.ApproveRatio > 1 {
		return fmt.Errorf("config: simulated_decisions.approve_ratio must be within [0,1]")
	}
	return nil
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.AppName = getEnv("APP_NAME", cfg.AppName)
	cfg.DefaultGrantMinutes = getEnvInt("DEFAULT_GRANT_MINUTES", cfg.DefaultGrantMinutes)
	cfg.SwaggerEnabled = getEnvBool("SWAGGER_ENABLED", cfg.SwaggerEnabled)

	cfg.LeaveSync.Enabled = getEnvBool("LEAVE_SYNC_ENABLED", cfg.LeaveSync.Enabled)
	cfg.LeaveSync.Interval = getEnvDuration("LEAVE_SYNC_INTERVAL", cfg.LeaveSync.Interval)

	sd := &cfg.SimulatedDecisions
	sd.Enabled = getEnvBool("SIMULATED_DECISIONS", sd.Enabled)
	sd.Interval = getEnvDuration("SIMULATED_DECISION_INTERVAL", sd.Interval)
	sd.MinAge = getEnvDuration("SIMULATED_DECISION_MIN_AGE", sd.MinAge)
	sd.ApproveRatio = getEnvFloat("SIMULATED_APPROVE_RATIO", sd.ApproveRatio)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
