package anchor

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borshString(s string) []byte {
	out := make([]byte, 4, 4+len(s))
	binary.LittleEndian.PutUint32(out, uint32(len(s)))
	return append(out, s...)
}

func TestEncodeInstructionNoArgs(t *testing.T) {
	data, err := EncodeInstruction("emit_received")
	require.NoError(t, err)

	sighash := InstructionSighash("emit_received")
	assert.Equal(t, sighash[:], data)
}

func TestEncodeInstructionPayNativeLayout(t *testing.T) {
	// Mirrors the byte layout the gas-service trigger produces:
	// sighash + string + string + [32]byte + pubkey + vec<u8> + u64.
	refund := solana.MustPublicKeyFromBase58("7RdSDLUUy37Wqc6s9ebgo52AwhGiw4XbJWZJgidQ1fJc")
	var payloadHash [32]byte
	copy(payloadHash[:8], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	params := []byte{0xaa, 0xbb}

	data, err := EncodeInstruction("pay_native_for_contract_call",
		"ethereum",
		"0xdead",
		payloadHash,
		refund,
		params,
		uint64(1000),
	)
	require.NoError(t, err)

	sighash := InstructionSighash("pay_native_for_contract_call")
	expected := append([]byte{}, sighash[:]...)
	expected = append(expected, borshString("ethereum")...)
	expected = append(expected, borshString("0xdead")...)
	expected = append(expected, payloadHash[:]...)
	expected = append(expected, refund.Bytes()...)
	expected = append(expected, 0x02, 0x00, 0x00, 0x00, 0xaa, 0xbb)
	expected = append(expected, 0xe8, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

	assert.Equal(t, expected, data)
}

func TestEncodeInstructionU64Arg(t *testing.T) {
	data, err := EncodeInstruction("emit_received", uint64(42))
	require.NoError(t, err)

	require.Len(t, data, DiscriminatorLength+8)
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(data[DiscriminatorLength:]))
}

func TestMustEncodeInstructionPanicsOnBadArg(t *testing.T) {
	assert.Panics(t, func() {
		MustEncodeInstruction("emit_received", make(chan int))
	})
}
