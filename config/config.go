// config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Limits   LimitsConfig
	Fees     FeesConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type ProviderConfig struct {
	BaseURL         string
	AuthToken       string
	ChannelID       string
	ProviderName    string
	CallbackBaseURL string
	RequestTimeout  time.Duration

	// Telco network codes accepted on withdrawals.
	MpesaNetworkCode  string
	AirtelNetworkCode string
}

type LimitsConfig struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

type FeesConfig struct {
	Rate  decimal.Decimal
	Floor decimal.Decimal
}

// Load reads configuration from the environment. Missing provider
// credentials are a fatal configuration error; everything else falls
// back to sensible defaults.
func Load(logger *zap.Logger) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8030"),
			Env:  getEnv("ENVIRONMENT", "development"),
		},
		Provider: ProviderConfig{
			BaseURL:           strings.TrimRight(getEnv("PROVIDER_BASE_URL", "https://backend.payhero.co.ke/api/v2"), "/"),
			AuthToken:         getEnv("PROVIDER_AUTH_TOKEN", ""),
			ChannelID:         getEnv("PROVIDER_CHANNEL_ID", ""),
			ProviderName:      getEnv("PROVIDER_NAME", "m-pesa"),
			CallbackBaseURL:   strings.TrimRight(getEnv("CALLBACK_BASE_URL", ""), "/"),
			RequestTimeout:    getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
			MpesaNetworkCode:  getEnv("MPESA_NETWORK_CODE", "63902"),
			AirtelNetworkCode: getEnv("AIRTEL_NETWORK_CODE", "63903"),
		},
		Limits: LimitsConfig{
			MinAmount: getEnvDecimal(logger, "MIN_AMOUNT", decimal.NewFromInt(1)),
			MaxAmount: getEnvDecimal(logger, "MAX_AMOUNT", decimal.NewFromInt(150000)),
		},
		Fees: FeesConfig{
			Rate:  getEnvDecimal(logger, "FEE_RATE", decimal.RequireFromString("0.015")),
			Floor: getEnvDecimal(logger, "FEE_FLOOR", decimal.NewFromInt(10)),
		},
	}

	if cfg.Provider.AuthToken == "" {
		return nil, fmt.Errorf("PROVIDER_AUTH_TOKEN is required")
	}
	if cfg.Provider.ChannelID == "" {
		return nil, fmt.Errorf("PROVIDER_CHANNEL_ID is required")
	}
	if cfg.Limits.MinAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("MIN_AMOUNT must be greater than 0")
	}
	if cfg.Limits.MaxAmount.LessThan(cfg.Limits.MinAmount) {
		return nil, fmt.Errorf("MAX_AMOUNT must not be below MIN_AMOUNT")
	}

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Server.Env),
		zap.String("provider_base_url", cfg.Provider.BaseURL),
		zap.String("provider_name", cfg.Provider.ProviderName),
		zap.String("min_amount", cfg.Limits.MinAmount.String()),
		zap.String("max_amount", cfg.Limits.MaxAmount.String()))

	return cfg, nil
}

// AllowedNetworkCodes returns the withdrawal network code whitelist.
func (p ProviderConfig) AllowedNetworkCodes() []string {
	return []string{p.MpesaNetworkCode, p.AirtelNetworkCode}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(logger *zap.Logger, key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		d, err := decimal.NewFromString(value)
		if err == nil {
			return d
		}
		logger.Warn("invalid decimal in environment, using default",
			zap.String("key", key),
			zap.String("value", value))
	}
	return defaultValue
}
