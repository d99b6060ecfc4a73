package gateway

import (
	"github.com/gagliardetto/solana-go"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
)

// Event names as they appear in the program IDL.
const (
	ReceivedEventName          = "received"
	CallContractEventName      = "call_contract"
	NativeGasPaidEventName     = "native_gas_paid_for_contract_call"
	NativeGasRefundedEventName = "native_gas_refunded"
)

// Event discriminators, sha256("event:<StructName>")[..8].
var (
	ReceivedDiscriminator          = anchor.EventDiscriminator("Received")
	CallContractDiscriminator      = anchor.EventDiscriminator("CallContractEvent")
	NativeGasPaidDiscriminator     = anchor.EventDiscriminator("NativeGasPaidForContractCallEvent")
	NativeGasRefundedDiscriminator = anchor.EventDiscriminator("NativeGasRefundedEvent")
)

// Received is emitted by emit_received. Field order matches the on-chain
// struct; borsh decoding depends on it.
type Received struct {
	Value uint64
}

// CallContractEvent is emitted by call_contract.
type CallContractEvent struct {
	SenderKey                  solana.PublicKey
	PayloadHash                [32]byte
	DestinationChain           string
	DestinationContractAddress string
	Payload                    []byte
}

// NativeGasPaidForContractCallEvent is emitted by pay_native_for_contract_call.
type NativeGasPaidForContractCallEvent struct {
	ConfigPDA          solana.PublicKey
	DestinationChain   string
	DestinationAddress string
	PayloadHash        [32]byte
	RefundAddress      solana.PublicKey
	Params             []byte
	GasFeeAmount       uint64
}

// NativeGasRefundedEvent is emitted by refund_native_fees.
type NativeGasRefundedEvent struct {
	TxHash    [64]byte
	ConfigPDA solana.PublicKey
	LogIndex  uint64
	Receiver  solana.PublicKey
	Fees      uint64
}

// DecodeEvent decodes a raw Anchor event into its typed struct if the
// discriminator belongs to this program. Returns false for foreign events.
func DecodeEvent(ev anchor.Event) (string, interface{}, bool) {
	switch {
	case ev.Is(ReceivedDiscriminator):
		var out Received
		if err := ev.Unmarshal(&out); err != nil {
			return ReceivedEventName, nil, false
		}
		return ReceivedEventName, out, true
	case ev.Is(CallContractDiscriminator):
		var out CallContractEvent
		if err := ev.Unmarshal(&out); err != nil {
			return CallContractEventName, nil, false
		}
		return CallContractEventName, out, true
	case ev.Is(NativeGasPaidDiscriminator):
		var out NativeGasPaidForContractCallEvent
		if err := ev.Unmarshal(&out); err != nil {
			return NativeGasPaidEventName, nil, false
		}
		return NativeGasPaidEventName, out, true
	case ev.Is(NativeGasRefundedDiscriminator):
		var out NativeGasRefundedEvent
		if err := ev.Unmarshal(&out); err != nil {
			return NativeGasRefundedEventName, nil, false
		}
		return NativeGasRefundedEventName, out, true
	}
	return "", nil, false
}
