package chainclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/retry"
)

type mockRPCClient struct {
	GetLatestBlockhashFunc              func(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOptsFunc         func(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatusesFunc            func(ctx context.Context, searchHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalanceFunc                      func(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetSignaturesForAddressWithOptsFunc func(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetTransactionFunc                  func(ctx context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	RequestAirdropFunc                  func(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)

	txCalls int
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return m.GetLatestBlockhashFunc(ctx, commitment)
}

func (m *mockRPCClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	return m.SendTransactionWithOptsFunc(ctx, tx, opts)
}

func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, searchHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return m.GetSignatureStatusesFunc(ctx, searchHistory, sigs...)
}

func (m *mockRPCClient) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return m.GetBalanceFunc(ctx, account, commitment)
}

func (m *mockRPCClient) GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	return m.GetSignaturesForAddressWithOptsFunc(ctx, account, opts)
}

func (m *mockRPCClient) GetTransaction(ctx context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
	m.txCalls++
	return m.GetTransactionFunc(ctx, sig, opts)
}

func (m *mockRPCClient) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	return m.RequestAirdropFunc(ctx, account, lamports, commitment)
}

func testConfig() Config {
	cfg := DefaultConfig(logging.NoopLogger{})
	cfg.ConfirmTimeout = 2 * time.Second
	cfg.ConfirmRetry = &retry.RetryConfig{
		MaxRetries:      5,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffFactor:   1.5,
		JitterFactor:    0,
		LogRetryAttempt: false,
	}
	return cfg
}

func confirmedStatuses() *rpc.GetSignatureStatusesResult {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{
			{ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
		},
	}
}

func TestSendInstructionsConfirmed(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	wantSig := solana.Signature{1, 2, 3}

	mock := &mockRPCClient{
		GetLatestBlockhashFunc: func(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return &rpc.GetLatestBlockhashResult{
				Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{9}},
			}, nil
		},
		SendTransactionWithOptsFunc: func(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
			require.NotEmpty(t, tx.Signatures)
			return wantSig, nil
		},
		GetSignatureStatusesFunc: func(_ context.Context, _ bool, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			return confirmedStatuses(), nil
		},
	}

	client := NewWithRPC(testConfig(), mock)
	sig, err := client.SendInstructions(context.Background(),
		payer, gateway.NewEmitReceivedInstruction(gateway.DefaultProgramID, 42))

	require.NoError(t, err)
	assert.Equal(t, wantSig, sig)
	assert.NotEmpty(t, sig.String())
}

func TestSendInstructionsConfirmsAfterRetries(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	statusCalls := 0

	mock := &mockRPCClient{
		GetLatestBlockhashFunc: func(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return &rpc.GetLatestBlockhashResult{
				Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{9}},
			}, nil
		},
		SendTransactionWithOptsFunc: func(_ context.Context, _ *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
			return solana.Signature{7}, nil
		},
		GetSignatureStatusesFunc: func(_ context.Context, _ bool, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			statusCalls++
			if statusCalls < 3 {
				return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
			}
			return confirmedStatuses(), nil
		},
	}

	client := NewWithRPC(testConfig(), mock)
	_, err := client.SendInstructions(context.Background(),
		payer, gateway.NewInitializeInstruction(gateway.DefaultProgramID))

	require.NoError(t, err)
	assert.Equal(t, 3, statusCalls)
}

func TestSendInstructionsFailedOnChain(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	statusCalls := 0

	mock := &mockRPCClient{
		GetLatestBlockhashFunc: func(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return &rpc.GetLatestBlockhashResult{
				Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{9}},
			}, nil
		},
		SendTransactionWithOptsFunc: func(_ context.Context, _ *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
			return solana.Signature{7}, nil
		},
		GetSignatureStatusesFunc: func(_ context.Context, _ bool, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
			statusCalls++
			return &rpc.GetSignatureStatusesResult{
				Value: []*rpc.SignatureStatusesResult{
					{Err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}},
				},
			}, nil
		},
	}

	client := NewWithRPC(testConfig(), mock)
	_, err := client.SendInstructions(context.Background(),
		payer, gateway.NewInitializeInstruction(gateway.DefaultProgramID))

	require.ErrorIs(t, err, ErrTransactionFailed)
	// A failed transaction is not retried
	assert.Equal(t, 1, statusCalls)
}

func TestSendInstructionsSubmitError(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	mock := &mockRPCClient{
		GetLatestBlockhashFunc: func(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
			return &rpc.GetLatestBlockhashResult{
				Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{9}},
			}, nil
		},
		SendTransactionWithOptsFunc: func(_ context.Context, _ *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
			return solana.Signature{}, errors.New("node rejected transaction")
		},
	}

	client := NewWithRPC(testConfig(), mock)
	_, err := client.SendInstructions(context.Background(),
		payer, gateway.NewInitializeInstruction(gateway.DefaultProgramID))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send transaction")
}

func TestBalance(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	mock := &mockRPCClient{
		GetBalanceFunc: func(_ context.Context, got solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
			assert.Equal(t, account, got)
			return &rpc.GetBalanceResult{Value: 123456}, nil
		},
	}

	client := NewWithRPC(testConfig(), mock)
	balance, err := client.Balance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), balance)
}

func TestSignaturesForAddressPassesLimit(t *testing.T) {
	mock := &mockRPCClient{
		GetSignaturesForAddressWithOptsFunc: func(_ context.Context, _ solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
			require.NotNil(t, opts.Limit)
			assert.Equal(t, 2, *opts.Limit)
			return []*rpc.TransactionSignature{{Slot: 10}, {Slot: 9}}, nil
		},
	}

	client := NewWithRPC(testConfig(), mock)
	sigs, err := client.SignaturesForAddress(context.Background(), gateway.DefaultProgramID, 2)
	require.NoError(t, err)
	assert.Len(t, sigs, 2)
}

func TestTransactionDedupesConcurrentFetches(t *testing.T) {
	block := make(chan struct{})
	mock := &mockRPCClient{
		GetTransactionFunc: func(_ context.Context, _ solana.Signature, _ *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error) {
			<-block
			return &rpc.GetTransactionResult{Slot: 42}, nil
		},
	}

	client := NewWithRPC(testConfig(), mock)
	sig := solana.Signature{5}

	results := make(chan *rpc.GetTransactionResult, 2)
	for i := 0; i < 2; i++ {
		go func() {
			out, err := client.Transaction(context.Background(), sig)
			require.NoError(t, err)
			results <- out
		}()
	}

	// Give both goroutines time to join the flight before releasing it
	time.Sleep(50 * time.Millisecond)
	close(block)

	first, second := <-results, <-results
	assert.Equal(t, uint64(42), first.Slot)
	assert.Equal(t, uint64(42), second.Slot)
	assert.Equal(t, 1, mock.txCalls)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad rpc url", func(c *Config) { c.RPCURL = "ftp://nope" }, "RPCURL"},
		{"bad ws url", func(c *Config) { c.WSURL = "http://nope" }, "WSURL"},
		{"missing commitment", func(c *Config) { c.Commitment = "" }, "Commitment"},
		{"missing logger", func(c *Config) { c.Logger = nil }, "Logger"},
		{"zero timeout", func(c *Config) { c.ConfirmTimeout = 0 }, "ConfirmTimeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig(logging.NoopLogger{})
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
