package chainclient

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/env"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/retry"
)

// Config holds the chain client configuration.
type Config struct {
	// RPCURL is the HTTP JSON-RPC endpoint of the node.
	RPCURL string
	// WSURL is the websocket endpoint used for log subscriptions. Optional;
	// clients that only submit transactions can leave it empty.
	WSURL string
	// Commitment used for submission, confirmation and subscriptions.
	Commitment rpc.CommitmentType
	// ConfirmTimeout bounds the wait for a transaction to reach Commitment.
	ConfirmTimeout time.Duration
	// ConfirmRetry drives the confirmation polling backoff. Nil uses defaults.
	ConfirmRetry *retry.RetryConfig
	// Logger for client diagnostics.
	Logger logging.Logger
}

// DefaultConfig returns a configuration for a local test validator.
func DefaultConfig(logger logging.Logger) Config {
	return Config{
		RPCURL:         rpc.LocalNet_RPC,
		WSURL:          rpc.LocalNet_WS,
		Commitment:     rpc.CommitmentConfirmed,
		ConfirmTimeout: 60 * time.Second,
		Logger:         logger,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !env.IsValidRPCURL(c.RPCURL) {
		return errors.New("RPCURL must be an http(s) endpoint")
	}
	if c.WSURL != "" && !env.IsValidWSURL(c.WSURL) {
		return errors.New("WSURL must be a ws(s) endpoint")
	}
	if c.Commitment == "" {
		return errors.New("Commitment must be set")
	}
	if c.ConfirmTimeout <= 0 {
		return errors.New("ConfirmTimeout must be positive")
	}
	if c.Logger == nil {
		return errors.New("Logger must be set")
	}
	return nil
}

func (c *Config) confirmRetryConfig() *retry.RetryConfig {
	if c.ConfirmRetry != nil {
		return c.ConfirmRetry
	}
	return &retry.RetryConfig{
		MaxRetries:      30,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		BackoffFactor:   1.5,
		JitterFactor:    0.1,
		LogRetryAttempt: false,
	}
}
