// Package chainclient wraps the solana-go RPC and websocket clients behind
// one configured client used by the trigger commands, the event monitor and
// the contract driver.
package chainclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"golang.org/x/sync/singleflight"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/retry"
)

var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid client configuration")
	// ErrTransactionFailed is returned when a confirmed transaction carries an error
	ErrTransactionFailed = errors.New("transaction failed on chain")
	// ErrNotConfirmed is returned while a signature has not reached the configured commitment
	ErrNotConfirmed = errors.New("transaction not confirmed yet")
)

// RPCClient is the subset of the solana-go RPC surface the toolkit uses.
// It exists so tests can substitute a mock.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransaction(ctx context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)
}

// Client handles communication with a Solana node.
type Client struct {
	cfg     Config
	rpc     RPCClient
	ws      *ws.Client
	logger  logging.Logger
	txGroup singleflight.Group
}

// New creates a client from the configuration, dialing the websocket
// endpoint when one is configured.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		cfg:    cfg,
		rpc:    rpc.New(cfg.RPCURL),
		logger: cfg.Logger,
	}

	if cfg.WSURL != "" {
		wsClient, err := ws.Connect(ctx, cfg.WSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect websocket %s: %w", cfg.WSURL, err)
		}
		c.ws = wsClient
	}

	return c, nil
}

// NewWithRPC creates a client around an existing RPC implementation.
// Used by tests; no websocket connection is made.
func NewWithRPC(cfg Config, rpcClient RPCClient) *Client {
	return &Client{
		cfg:    cfg,
		rpc:    rpcClient,
		logger: cfg.Logger,
	}
}

// Commitment returns the commitment level the client operates at.
func (c *Client) Commitment() rpc.CommitmentType {
	return c.cfg.Commitment
}

// SendInstructions signs the instructions with the payer, submits the
// transaction, and blocks until it reaches the configured commitment.
func (c *Client) SendInstructions(ctx context.Context, payer solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, c.cfg.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to fetch latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.cfg.Commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Debug("Transaction submitted", "signature", sig.String())

	if err := c.ConfirmSignature(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// ConfirmSignature polls signature statuses with backoff until the signature
// reaches the configured commitment, the transaction fails, or the confirm
// timeout elapses.
func (c *Client) ConfirmSignature(ctx context.Context, sig solana.Signature) error {
	confirmCtx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmTimeout)
	defer cancel()

	retryCfg := c.cfg.confirmRetryConfig()
	if retryCfg.ShouldRetry == nil {
		retryCfg.ShouldRetry = func(err error, _ int) bool {
			// A failed transaction never becomes confirmed
			return !errors.Is(err, ErrTransactionFailed)
		}
	}

	return retry.RetryFunc(confirmCtx, func() error {
		statuses, err := c.rpc.GetSignatureStatuses(confirmCtx, true, sig)
		if err != nil {
			return fmt.Errorf("failed to fetch signature status: %w", err)
		}
		if len(statuses.Value) == 0 || statuses.Value[0] == nil {
			return ErrNotConfirmed
		}

		status := statuses.Value[0]
		if status.Err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
		}
		if !commitmentReached(status.ConfirmationStatus, c.cfg.Commitment) {
			return ErrNotConfirmed
		}
		return nil
	}, retryCfg, c.logger)
}

// Balance returns the lamport balance of the account at the configured commitment.
func (c *Client) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, c.cfg.Commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balance of %s: %w", account, err)
	}
	return out.Value, nil
}

// SignaturesForAddress lists up to limit recent transaction signatures that
// mention the address, newest first.
func (c *Client) SignaturesForAddress(ctx context.Context, address solana.PublicKey, limit int) ([]*rpc.TransactionSignature, error) {
	opts := &rpc.GetSignaturesForAddressOpts{
		Commitment: c.cfg.Commitment,
	}
	if limit > 0 {
		opts.Limit = &limit
	}

	sigs, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, address, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures for %s: %w", address, err)
	}
	return sigs, nil
}

// Transaction fetches a confirmed transaction. Concurrent fetches of the same
// signature are collapsed into one RPC call.
func (c *Client) Transaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	result, err, _ := c.txGroup.Do(sig.String(), func() (interface{}, error) {
		maxVersion := uint64(0)
		return c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     c.cfg.Commitment,
			MaxSupportedTransactionVersion: &maxVersion,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", sig, err)
	}
	return result.(*rpc.GetTransactionResult), nil
}

// RequestAirdrop requests lamports for the account and returns the airdrop
// transaction signature without waiting for confirmation.
func (c *Client) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, account, lamports, c.cfg.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to request airdrop: %w", err)
	}
	return sig, nil
}

// SubscribeLogs opens a log subscription for transactions mentioning the
// program. The client must have been created with a websocket URL.
func (c *Client) SubscribeLogs(program solana.PublicKey) (*ws.LogSubscription, error) {
	if c.ws == nil {
		return nil, errors.New("websocket endpoint not configured")
	}
	sub, err := c.ws.LogsSubscribeMentions(program, c.cfg.Commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to logs of %s: %w", program, err)
	}
	return sub, nil
}

// Close tears down the websocket connection, if any.
func (c *Client) Close() {
	if c.ws != nil {
		c.ws.Close()
	}
}

func commitmentReached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentConfirmed:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	default:
		return status != ""
	}
}
