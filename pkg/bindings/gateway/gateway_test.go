package gateway

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
)

func TestNewInitializeInstruction(t *testing.T) {
	ix := NewInitializeInstruction(DefaultProgramID)

	assert.Equal(t, DefaultProgramID, ix.ProgramID())
	assert.Empty(t, ix.Accounts())

	data, err := ix.Data()
	require.NoError(t, err)
	sighash := anchor.InstructionSighash("initialize")
	assert.Equal(t, sighash[:], data)
}

func TestNewEmitReceivedInstruction(t *testing.T) {
	ix := NewEmitReceivedInstruction(DefaultProgramID, 42)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, anchor.DiscriminatorLength+8)

	sighash := anchor.InstructionSighash("emit_received")
	assert.Equal(t, sighash[:], data[:anchor.DiscriminatorLength])
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(data[anchor.DiscriminatorLength:]))
}

func TestNewInitGatewayRootInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	ix, err := NewInitGatewayRootInstruction(DefaultProgramID, payer)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)

	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)

	rootPDA, _, err := FindGatewayRootPDA(DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, rootPDA, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
	assert.False(t, accounts[1].IsSigner)

	assert.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)
}

func TestNewCallContractInstruction(t *testing.T) {
	var payloadHash [32]byte
	payloadHash[0] = 0xff

	ix, err := NewCallContractInstruction(DefaultProgramID, "ethereum", "0xdead", payloadHash, []byte("ping"))
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 5)
	assert.Equal(t, solana.SystemProgramID, accounts[0].PublicKey)
	assert.Equal(t, DefaultProgramID, accounts[4].PublicKey)
	for _, acc := range accounts {
		assert.False(t, acc.IsSigner)
		assert.False(t, acc.IsWritable)
	}

	data, err := ix.Data()
	require.NoError(t, err)
	sighash := anchor.InstructionSighash("call_contract")
	assert.Equal(t, sighash[:], data[:anchor.DiscriminatorLength])
}

func TestNewRefundNativeFeesInstructionLayout(t *testing.T) {
	configPDA := solana.NewWallet().PublicKey()
	receiver := solana.NewWallet().PublicKey()
	var txHash [64]byte
	for i := range txHash {
		txHash[i] = byte(i)
	}

	ix, err := NewRefundNativeFeesInstruction(DefaultProgramID, configPDA, receiver, txHash, 3, 500)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)

	// sighash + tx_hash[64] + log_index u64 + fees u64
	require.Len(t, data, anchor.DiscriminatorLength+64+8+8)
	assert.Equal(t, txHash[:], data[anchor.DiscriminatorLength:anchor.DiscriminatorLength+64])
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[anchor.DiscriminatorLength+64:]))
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[anchor.DiscriminatorLength+72:]))
}

func TestPDADerivationIsDeterministic(t *testing.T) {
	a1, bump1, err := FindGatewayRootPDA(DefaultProgramID)
	require.NoError(t, err)
	a2, bump2, err := FindGatewayRootPDA(DefaultProgramID)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, bump1, bump2)
	assert.False(t, a1.IsZero())
}
