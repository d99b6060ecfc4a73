package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidSolanaAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"program id", "7RdSDLUUy37Wqc6s9ebgo52AwhGiw4XbJWZJgidQ1fJc", true},
		{"system program", "11111111111111111111111111111111", true},
		{"empty", "", false},
		{"contains zero", "0RdSDLUUy37Wqc6s9ebgo52AwhGiw4XbJWZJgidQ1fJc", false},
		{"too short", "abc", false},
		{"hex address", "0x7f268357a8c2552623316e2562d90e642bb538e5", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidSolanaAddress(tc.address))
		})
	}
}

func TestIsValidPort(t *testing.T) {
	assert.True(t, IsValidPort("9007"))
	assert.True(t, IsValidPort("65535"))
	assert.False(t, IsValidPort("80"))
	assert.False(t, IsValidPort("65536"))
	assert.False(t, IsValidPort("abc"))
}

func TestIsValidRPCURL(t *testing.T) {
	assert.True(t, IsValidRPCURL("http://127.0.0.1:8899"))
	assert.True(t, IsValidRPCURL("https://api.devnet.solana.com"))
	assert.False(t, IsValidRPCURL("ws://127.0.0.1:8900"))
	assert.False(t, IsValidRPCURL(""))
}

func TestIsValidWSURL(t *testing.T) {
	assert.True(t, IsValidWSURL("ws://127.0.0.1:8900"))
	assert.True(t, IsValidWSURL("wss://api.devnet.solana.com"))
	assert.False(t, IsValidWSURL("http://127.0.0.1:8899"))
}
