package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	Environment   string
	HTTPAddr      string
	JWTSecret     string
	MigrationsDir string

	// Telegram staff notifications; disabled when the token is empty
	TelegramToken string
	StaffChatID   int64

	// Civil-time handling of the naive lesson date/time fields
	CivilOffsetHours       int
	EditWindowLeadMinutes  int
	EditWindowTrailMinutes int

	// Ledger policy switches, see service.Policy
	RefundOnAbsent   bool
	RechargeOnReturn bool

	MetricsEnabled bool
}

func Load() (*Config, error) {
	// Load .env if present; ignore the error when the file is missing
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   getEnv("ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.StaffChatID, err = getInt64("STAFF_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.CivilOffsetHours, err = getInt("CIVIL_OFFSET_HOURS", 9); err != nil {
		return nil, err
	}
	if cfg.EditWindowLeadMinutes, err = getInt("EDIT_WINDOW_LEAD_MINUTES", 60); err != nil {
		return nil, err
	}
	if cfg.EditWindowTrailMinutes, err = getInt("EDIT_WINDOW_TRAIL_MINUTES", 60); err != nil {
		return nil, err
	}
	if cfg.RefundOnAbsent, err = getBool("REFUND_ON_ABSENT", false); err != nil {
		return nil, err
	}
	if cfg.RechargeOnReturn, err = getBool("RECHARGE_ON_RETURN", false); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = getBool("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
