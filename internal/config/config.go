// Package config loads process configuration from the environment (and an
// optional .env file) into a typed Config value. Nothing outside cmd/ reads
// the environment directly; components receive the sections they need.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config is the full application configuration.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Oracle   OracleConfig
	Merchant MerchantConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

// DatabaseConfig selects and tunes the gorm store.
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	Path            string // sqlite DSN
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// LedgerConfig holds the wallet engine limits and proof storage settings.
type LedgerConfig struct {
	MaxAmount     decimal.Decimal
	UploadDir     string
	MaxProofBytes int64
}

// OracleConfig describes the slip-verification endpoint and the receiver
// identity the slips are expected to name.
type OracleConfig struct {
	URL                  string
	APIKey               string
	Timeout              time.Duration
	ExpectedReceiverName string
	RequireReceiver      bool
}

type MerchantConfig struct {
	PromptPayID      string
	PromptPayBaseURL string
}

type AuthConfig struct {
	JWTSecret      string
	CheckoutAPIKey string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file found", zap.Error(err))
	}
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	connMaxLifetime, err := GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour)
	if err != nil {
		return nil, err
	}
	connMaxIdleTime, err := GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	redisTTL, err := GetDurationEnv("REDIS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	oracleTimeout, err := GetDurationEnv("EASYSLIP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	maxAmountRaw := GetEnv("WALLET_MAX_AMOUNT", "100000")
	maxAmount, err := decimal.NewFromString(maxAmountRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal for WALLET_MAX_AMOUNT: %q (%w)", maxAmountRaw, err)
	}
	if !maxAmount.IsPositive() {
		return nil, fmt.Errorf("WALLET_MAX_AMOUNT must be positive, got %s", maxAmount)
	}

	return &Config{
		Env: GetEnv("ENV", "development"),
		Server: ServerConfig{
			Port:        GetEnv("PORT", "3000"),
			CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Driver:          GetEnv("DB_DRIVER", "postgres"),
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "walletledger"),
			Path:            GetEnv("DB_PATH", "walletledger.db"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
		},
		Redis: RedisConfig{
			Enabled:  GetBoolEnv("REDIS_ENABLED", true),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			TTL:      redisTTL,
		},
		Ledger: LedgerConfig{
			MaxAmount:     maxAmount,
			UploadDir:     GetEnv("SLIP_UPLOAD_DIR", "uploads/slips"),
			MaxProofBytes: int64(GetIntEnv("SLIP_MAX_BYTES", 5<<20)),
		},
		Oracle: OracleConfig{
			URL:                  GetEnv("EASYSLIP_API_URL", "https://developer.easyslip.com/api/v1/verify"),
			APIKey:               GetEnv("EASYSLIP_API_KEY", ""),
			Timeout:              oracleTimeout,
			ExpectedReceiverName: GetEnv("EASYSLIP_RECEIVER_NAME", ""),
			RequireReceiver:      GetBoolEnv("EASYSLIP_REQUIRE_RECEIVER", false),
		},
		Merchant: MerchantConfig{
			PromptPayID:      GetEnv("PROMPTPAY_ID", ""),
			PromptPayBaseURL: GetEnv("PROMPTPAY_BASE_URL", "https://promptpay.io"),
		},
		Auth: AuthConfig{
			JWTSecret:      GetEnv("JWT_SECRET", ""),
			CheckoutAPIKey: GetEnv("CHECKOUT_API_KEY", ""),
		},
	}, nil
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv parses a duration variable. Unlike the other getters a
// malformed value is an error rather than a silent fallback.
func GetDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, val, err)
		}
		return d, nil
	}
	return defaultVal, nil
}
