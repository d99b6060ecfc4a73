// Package gateway builds instructions for the gateway test program
// (program_tester): the dummy initialize/emit_received pair plus the
// call-contract and native-gas entry points it mocks.
package gateway

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
)

// DefaultProgramID is where the dummy gateway program is deployed on the
// local validator.
var DefaultProgramID = solana.MustPublicKeyFromBase58("7RdSDLUUy37Wqc6s9ebgo52AwhGiw4XbJWZJgidQ1fJc")

// PDA seeds used by the program.
const (
	GatewayRootSeed  = "gateway"
	EventAuthSeed    = "__event_authority"
	CallContractSeed = "gtw-call-contract"
)

// FindGatewayRootPDA derives the gateway root config PDA.
func FindGatewayRootPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(GatewayRootSeed)}, programID)
}

// FindEventAuthorityPDA derives the Anchor event-CPI authority PDA.
func FindEventAuthorityPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(EventAuthSeed)}, programID)
}

// FindCallContractSigningPDA derives the signing PDA used by call_contract.
func FindCallContractSigningPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(CallContractSeed)}, programID)
}

// NewInitializeInstruction builds the no-argument initialize instruction of
// the dummy program.
func NewInitializeInstruction(programID solana.PublicKey) *solana.GenericInstruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{},
		anchor.MustEncodeInstruction("initialize"),
	)
}

// NewEmitReceivedInstruction builds emit_received carrying the given value.
// The program answers with a Received event.
func NewEmitReceivedInstruction(programID solana.PublicKey, value uint64) *solana.GenericInstruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{},
		anchor.MustEncodeInstruction("emit_received", value),
	)
}

// NewInitGatewayRootInstruction creates the gateway root PDA.
func NewInitGatewayRootInstruction(programID, payer solana.PublicKey) (*solana.GenericInstruction, error) {
	rootPDA, _, err := FindGatewayRootPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive gateway root PDA: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(rootPDA).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(
		programID,
		accounts,
		anchor.MustEncodeInstruction("init_gateway_root"),
	), nil
}

// NewCallContractInstruction builds call_contract, which emits a
// CallContractEvent via event-CPI.
func NewCallContractInstruction(
	programID solana.PublicKey,
	destinationChain string,
	destinationContractAddress string,
	payloadHash [32]byte,
	payload []byte,
) (*solana.GenericInstruction, error) {
	rootPDA, _, err := FindGatewayRootPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive gateway root PDA: %w", err)
	}
	signingPDA, _, err := FindCallContractSigningPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing PDA: %w", err)
	}
	eventAuthority, _, err := FindEventAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("call_contract",
		destinationChain,
		destinationContractAddress,
		payloadHash,
		payload,
	)
	if err != nil {
		return nil, err
	}

	// The calling_program slot accepts any executable program; the scripts
	// pass the system program when calling directly.
	accounts := solana.AccountMetaSlice{
		solana.Meta(solana.SystemProgramID),
		solana.Meta(signingPDA),
		solana.Meta(rootPDA),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// NewPayNativeForContractCallInstruction builds the gateway-side
// pay_native_for_contract_call, emitting NativeGasPaidForContractCallEvent.
func NewPayNativeForContractCallInstruction(
	programID, payer, configPDA solana.PublicKey,
	destinationChain string,
	destinationAddress string,
	payloadHash [32]byte,
	refundAddress solana.PublicKey,
	params []byte,
	gasFeeAmount uint64,
) (*solana.GenericInstruction, error) {
	eventAuthority, _, err := FindEventAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("pay_native_for_contract_call",
		destinationChain,
		destinationAddress,
		payloadHash,
		refundAddress,
		params,
		gasFeeAmount,
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

// NewRefundNativeFeesInstruction builds the gateway-side refund_native_fees,
// emitting NativeGasRefundedEvent.
func NewRefundNativeFeesInstruction(
	programID, configPDA, receiver solana.PublicKey,
	txHash [64]byte,
	logIndex uint64,
	fees uint64,
) (*solana.GenericInstruction, error) {
	eventAuthority, _, err := FindEventAuthorityPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority PDA: %w", err)
	}

	data, err := anchor.EncodeInstruction("refund_native_fees", txHash, logIndex, fees)
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
