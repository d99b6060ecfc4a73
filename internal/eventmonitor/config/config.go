package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/env"
)

type Config struct {
	// Service Configuration
	Port string
	Host string

	// Chain Configuration
	RPCURL     string
	WSURL      string
	Commitment string

	// Confirmation / reconnect tuning
	ConfirmTimeout time.Duration
	ReconnectDelay time.Duration

	// Webhook Configuration
	WebhookTimeout    time.Duration
	WebhookMaxRetries int
	WebhookRetryDelay time.Duration

	// Logging
	LogLevel string
	DevMode  bool
}

var cfg Config

// Init initializes the configuration
func Init() error {
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}

	cfg = Config{
		Port:              env.GetEnvString("EVENT_MONITOR_PORT", "9007"),
		Host:              env.GetEnvString("EVENT_MONITOR_HOST", "0.0.0.0"),
		RPCURL:            env.GetEnvString("RPC_URL", "http://127.0.0.1:8899"),
		WSURL:             env.GetEnvString("WS_URL", "ws://127.0.0.1:8900"),
		Commitment:        env.GetEnvString("COMMITMENT", "confirmed"),
		ConfirmTimeout:    env.GetEnvDuration("CONFIRM_TIMEOUT", 60*time.Second),
		ReconnectDelay:    env.GetEnvDuration("RECONNECT_DELAY", time.Second),
		WebhookTimeout:    env.GetEnvDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: env.GetEnvInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookRetryDelay: env.GetEnvDuration("WEBHOOK_RETRY_DELAY", time.Second),
		LogLevel:          env.GetEnvString("LOG_LEVEL", "info"),
		DevMode:           env.GetEnvBool("DEV_MODE", false),
	}

	return validateConfig()
}

func validateConfig() error {
	if !env.IsValidPort(cfg.Port) {
		return fmt.Errorf("invalid port: %s", cfg.Port)
	}
	if !env.IsValidRPCURL(cfg.RPCURL) {
		return fmt.Errorf("invalid RPC URL: %s", cfg.RPCURL)
	}
	if !env.IsValidWSURL(cfg.WSURL) {
		return fmt.Errorf("invalid WS URL: %s", cfg.WSURL)
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment: %s", cfg.Commitment)
	}
	return nil
}

// GetPort returns the service port
func GetPort() string {
	return cfg.Port
}

// GetHost returns the service host
func GetHost() string {
	return cfg.Host
}

// GetRPCURL returns the node HTTP endpoint
func GetRPCURL() string {
	return cfg.RPCURL
}

// GetWSURL returns the node websocket endpoint
func GetWSURL() string {
	return cfg.WSURL
}

// GetCommitment returns the commitment level used for subscriptions
func GetCommitment() string {
	return cfg.Commitment
}

// GetConfirmTimeout returns the transaction confirmation timeout
func GetConfirmTimeout() time.Duration {
	return cfg.ConfirmTimeout
}

// GetReconnectDelay returns the initial websocket reconnect delay
func GetReconnectDelay() time.Duration {
	return cfg.ReconnectDelay
}

// GetWebhookTimeout returns the webhook timeout
func GetWebhookTimeout() time.Duration {
	return cfg.WebhookTimeout
}

// GetWebhookMaxRetries returns the maximum webhook retries
func GetWebhookMaxRetries() int {
	return cfg.WebhookMaxRetries
}

// GetWebhookRetryDelay returns the webhook retry delay
func GetWebhookRetryDelay() time.Duration {
	return cfg.WebhookRetryDelay
}

// GetLogLevel returns the log level
func GetLogLevel() string {
	return cfg.LogLevel
}

// IsDevMode returns whether the service is in dev mode
func IsDevMode() bool {
	return cfg.DevMode
}
