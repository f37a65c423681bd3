package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grandcafe/floorplan/utils"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	AppBaseURL string

	// IgnoreInactiveTables leaves inactive tables out of overlap checks.
	IgnoreInactiveTables bool

	ChangeMonitorInterval time.Duration
	RateLimitPerSecond    int
	AllowedOrigin         string
}

// Load reads .env (if any) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf("no .env file loaded: %v", err)
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		DBDriver:              strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:                 getEnv("DB_DSN", "floorplan.db"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AppBaseURL:            strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		IgnoreInactiveTables:  getEnvBool("FLOORPLAN_IGNORE_INACTIVE", false),
		ChangeMonitorInterval: getEnvDuration("CHANGE_MONITOR_INTERVAL", 500*time.Millisecond),
		RateLimitPerSecond:    getEnvInt("RATE_LIMIT_RPS", 50),
		AllowedOrigin:         getEnv("CORS_ALLOWED_ORIGIN", "http://127.0.0.1:5500"),
	}
}

// InitDB opens the database selected by DB_DRIVER.
func InitDB(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
