package gasservice

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
)

func TestNewPayNativeForContractCallInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	refund := solana.NewWallet().PublicKey()
	var payloadHash [32]byte

	ix, err := NewPayNativeForContractCallInstruction(
		DefaultProgramID, payer, "ethereum", "0xdead", payloadHash, 1000, refund)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 5)

	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)

	configPDA, _, err := FindConfigPDA(DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, configPDA, accounts[1].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)
	assert.Equal(t, DefaultProgramID, accounts[4].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	sighash := anchor.InstructionSighash("pay_native_for_contract_call")
	assert.Equal(t, sighash[:], data[:anchor.DiscriminatorLength])
}

func TestNewAddNativeGasInstruction(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	refund := solana.NewWallet().PublicKey()

	ix, err := NewAddNativeGasInstruction(DefaultProgramID, sender, "0xabc", 250, refund)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)

	sighash := anchor.InstructionSighash("add_native_gas")
	assert.Equal(t, sighash[:], data[:anchor.DiscriminatorLength])
	// message_id borsh string: u32 length prefix then bytes
	assert.Equal(t, []byte{0x05, 0x00, 0x00, 0x00}, data[anchor.DiscriminatorLength:anchor.DiscriminatorLength+4])
	assert.Equal(t, []byte("0xabc"), data[anchor.DiscriminatorLength+4:anchor.DiscriminatorLength+9])
}

func TestNewRefundNativeFeesInstruction(t *testing.T) {
	receiver := solana.NewWallet().PublicKey()

	ix, err := NewRefundNativeFeesInstruction(DefaultProgramID, receiver, "0xabc", 500)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, receiver, accounts[1].PublicKey)
	for _, acc := range accounts {
		assert.False(t, acc.IsSigner)
	}
}

func TestNewCpiCallContractInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	var payloadHash [32]byte

	ix, err := NewCpiCallContractInstruction(
		DefaultProgramID, gateway.DefaultProgramID, payer,
		"ethereum", "0xdead", payloadHash, []byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 7)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.Equal(t, gateway.DefaultProgramID, accounts[1].PublicKey)
	assert.Equal(t, DefaultProgramID, accounts[2].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[6].PublicKey)

	// Event authority must be the gateway's, not the gas service's
	gwAuthority, _, err := gateway.FindEventAuthorityPDA(gateway.DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, gwAuthority, accounts[5].PublicKey)
}

func TestEventDiscriminatorsDiffer(t *testing.T) {
	assert.NotEqual(t, GasPaidDiscriminator, GasAddedDiscriminator)
	assert.NotEqual(t, GasAddedDiscriminator, GasRefundedDiscriminator)
	assert.NotEqual(t, GasPaidDiscriminator, gateway.ReceivedDiscriminator)
}
