package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage
	StoreDriver string
	Database    DatabaseConfig
	SQLitePath  string

	// Redis
	Redis RedisConfig

	// External computation
	Compute ComputeConfig

	// Request handling
	UploadLimitBytes int64
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
	SessionTTL       time.Duration

	// Classification bands; empty uses the built-in defaults
	MarkerRangesFile string

	// Maintenance
	TempSweepSchedule string
	TempSweepMaxAge   time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ComputeConfig describes how the external analysis scripts are invoked
type ComputeConfig struct {
	PythonPath string
	ScriptsDir string

	BacktestScript        string
	CompanyMetricsScript  string
	AnalyzeScript         string
	GenerateSignalsScript string

	Timeout time.Duration
	TempDir string
}

// ScriptPath resolves a script name against ScriptsDir
func (c ComputeConfig) ScriptPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ScriptsDir, name)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit .env file. An empty path searches the
// default locations.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		Port: getEnv("PORT", "5001"),
		Env:  getEnv("ENV", "development"),

		StoreDriver: getEnv("STORE_DRIVER", DriverPostgres),
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		SQLitePath: getEnv("SQLITE_PATH", "backtester.db"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Compute: ComputeConfig{
			PythonPath:            getEnv("PYTHON_PATH", "python3"),
			ScriptsDir:            getEnv("SCRIPTS_DIR", "scripts"),
			BacktestScript:        getEnv("BACKTEST_SCRIPT", "backtest.py"),
			CompanyMetricsScript:  getEnv("COMPANY_METRICS_SCRIPT", "company_metrics.py"),
			AnalyzeScript:         getEnv("ANALYZE_SCRIPT", "analyze_stock.py"),
			GenerateSignalsScript: getEnv("GENERATE_SIGNALS_SCRIPT", "generate_signals.py"),
			Timeout:               getEnvAsDuration("COMPUTE_TIMEOUT", "2m"),
			TempDir:               getEnv("COMPUTE_TEMP_DIR", os.TempDir()),
		},

		UploadLimitBytes: int64(getEnvAsInt("UPLOAD_LIMIT_BYTES", 50<<20)),
		SubmitRateLimit:  getEnvAsInt("SUBMIT_RATE_LIMIT", 30),
		SubmitRateWindow: getEnvAsDuration("SUBMIT_RATE_WINDOW", "1m"),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", "24h"),

		MarkerRangesFile: getEnv("MARKER_RANGES_FILE", ""),

		TempSweepSchedule: getEnv("TEMP_SWEEP_SCHEDULE", "0 */15 * * * *"),
		TempSweepMaxAge:   getEnvAsDuration("TEMP_SWEEP_MAX_AGE", "1h"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: postgres, sqlite, memory")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Compute.Timeout <= 0 {
		return fmt.Errorf("COMPUTE_TIMEOUT must be positive")
	}

	// 실행 중인 계산의 입력 파일은 sweep 대상이 아니어야 함
	if c.TempSweepMaxAge <= c.Compute.Timeout {
		return fmt.Errorf("TEMP_SWEEP_MAX_AGE (%s) must exceed COMPUTE_TIMEOUT (%s)", c.TempSweepMaxAge, c.Compute.Timeout)
	}

	if c.SubmitRateLimit <= 0 || c.SubmitRateWindow <= 0 {
		return fmt.Errorf("SUBMIT_RATE_LIMIT and SUBMIT_RATE_WINDOW must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
