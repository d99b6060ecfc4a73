// Package gasservice builds instructions for the gas-service test program:
// native gas payment, top-up, refund, and the CPI call into the gateway.
package gasservice

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
)

// DefaultProgramID is where the gas-service program is deployed on the
// local validator.
var DefaultProgramID = solana.MustPublicKeyFromBase58("CJ9f8WFdm3q38pmg426xQf7uum7RqvrmS9R58usHwNX7")

// ConfigSeed derives the gas-service config PDA.
const ConfigSeed = "config"

// FindConfigPDA derives the gas-service config PDA.
func FindConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(ConfigSeed)}, programID)
}

// FindEventAuthorityPDA derives the Anchor event-CPI authority PDA.
func FindEventAuthorityPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(gateway.EventAuthSeed)}, programID)
}

// NewPayNativeForContractCallInstruction builds pay_native_for_contract_call,
// emitting GasPaidEvent.
func NewPayNativeForContractCallInstruction(
	programID, payer solana.PublicKey,
	destinationChain string,
	destinationAddress string,
	payloadHash [32]byte,
	amount uint64,
	refundAddress solana.PublicKey,
) (*solana.GenericInstruction, error) {
	configPDA, _, err := FindConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive config PDA: %w", err)
	}
	eventAuthority, _, err := FindEventAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("pay_native_for_contract_call",
		destinationChain,
		destinationAddress,
		payloadHash,
		amount,
		refundAddress,
	)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(configPDA),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewAddNativeGasInstruction builds add_native_gas, emitting GasAddedEvent.
func NewAddNativeGasInstruction(
	programID, sender solana.PublicKey,
	messageID string,
	amount uint64,
	refundAddress solana.PublicKey,
) (*solana.GenericInstruction, error) {
	configPDA, _, err := FindConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive config PDA: %w", err)
	}
	eventAuthority, _, err := FindEventAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("add_native_gas", messageID, amount, refundAddress)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(sender).WRITE().SIGNER(),
		solana.Meta(configPDA),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewRefundNativeFeesInstruction builds refund_native_fees, emitting
// GasRefundedEvent to the receiver.
func NewRefundNativeFeesInstruction(
	programID, receiver solana.PublicKey,
	messageID string,
	amount uint64,
) (*solana.GenericInstruction, error) {
	configPDA, _, err := FindConfigPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive config PDA: %w", err)
	}
	eventAuthority, _, err := FindEventAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("refund_native_fees", messageID, amount)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(configPDA),
		solana.Meta(receiver),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewCpiCallContractInstruction builds cpi_call_contract: the gas service
// CPIs into the gateway, whose call_contract emits the event via event-CPI.
func NewCpiCallContractInstruction(
	programID, gatewayProgramID, payer solana.PublicKey,
	destinationChain string,
	destinationContractAddress string,
	payloadHash [32]byte,
	payload []byte,
) (*solana.GenericInstruction, error) {
	signingPDA, _, err := gateway.FindCallContractSigningPDA(gatewayProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing PDA: %w", err)
	}
	rootPDA, _, err := gateway.FindGatewayRootPDA(gatewayProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive gateway root PDA: %w", err)
	}
	gatewayEventAuthority, _, err := gateway.FindEventAuthorityPDA(gatewayProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("cpi_call_contract",
		destinationChain,
		destinationContractAddress,
		payloadHash,
		payload,
	)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(gatewayProgramID),
		solana.Meta(programID),
		solana.Meta(signingPDA),
		solana.Meta(rootPDA),
		solana.Meta(gatewayEventAuthority),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}
