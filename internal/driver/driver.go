package driver

import (
	"context"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/client/chainclient"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

// LogStream is one live log subscription.
type LogStream interface {
	Recv(ctx context.Context) (*ws.LogResult, error)
	Unsubscribe()
}

// Chain is the node surface the driver needs. *chainclient.Client provides
// it through the adapter in New.
type Chain interface {
	SendInstructions(ctx context.Context, payer solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error)
	SubscribeLogs(program solana.PublicKey) (LogStream, error)
	Transaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error)
}

type chainAdapter struct {
	*chainclient.Client
}

func (a chainAdapter) SubscribeLogs(program solana.PublicKey) (LogStream, error) {
	return a.Client.SubscribeLogs(program)
}

// Driver drives one deployed program: it submits instructions and verifies
// event delivery through log subscriptions.
type Driver struct {
	chain   Chain
	program solana.PublicKey
	payer   solana.PrivateKey
	logger  logging.Logger

	registered   atomic.Uint64
	unregistered atomic.Uint64
}

// New creates a driver bound to a deployed program.
func New(client *chainclient.Client, program solana.PublicKey, payer solana.PrivateKey, logger logging.Logger) *Driver {
	return NewWithChain(chainAdapter{client}, program, payer, logger)
}

// NewWithChain creates a driver around an existing chain implementation.
// Used by tests to substitute a fake node.
func NewWithChain(chain Chain, program solana.PublicKey, payer solana.PrivateKey, logger logging.Logger) *Driver {
	return &Driver{
		chain:   chain,
		program: program,
		payer:   payer,
		logger:  logger,
	}
}

// Program returns the bound program address.
func (d *Driver) Program() solana.PublicKey {
	return d.program
}

// Initialize invokes the program's initialize instruction and blocks until
// the transaction is confirmed.
func (d *Driver) Initialize(ctx context.Context) (solana.Signature, error) {
	sig, err := d.chain.SendInstructions(ctx, d.payer, gateway.NewInitializeInstruction(d.program))
	if err != nil {
		return solana.Signature{}, &TransactionError{Op: "initialize", Err: err}
	}
	d.logger.Info("Initialized program", "program", d.program, "signature", sig)
	return sig, nil
}

// EmitReceived invokes emit_received with the given value and blocks until
// the transaction is confirmed.
func (d *Driver) EmitReceived(ctx context.Context, value uint64) (solana.Signature, error) {
	sig, err := d.chain.SendInstructions(ctx, d.payer, gateway.NewEmitReceivedInstruction(d.program, value))
	if err != nil {
		return solana.Signature{}, &TransactionError{Op: "emit_received", Err: err}
	}
	d.logger.Info("Emitted received event", "value", value, "signature", sig)
	return sig, nil
}

// RegisteredCount returns the lifetime number of successful registrations.
func (d *Driver) RegisteredCount() uint64 {
	return d.registered.Load()
}

// UnregisteredCount returns the lifetime number of deregistrations.
func (d *Driver) UnregisteredCount() uint64 {
	return d.unregistered.Load()
}
