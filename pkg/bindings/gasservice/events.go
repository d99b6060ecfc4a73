package gasservice

import (
	"github.com/gagliardetto/solana-go"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
)

// Event names as they appear in the program IDL.
const (
	GasPaidEventName     = "gas_paid"
	GasAddedEventName    = "gas_added"
	GasRefundedEventName = "gas_refunded"
)

// Event discriminators, sha256("event:<StructName>")[..8].
var (
	GasPaidDiscriminator     = anchor.EventDiscriminator("GasPaidEvent")
	GasAddedDiscriminator    = anchor.EventDiscriminator("GasAddedEvent")
	GasRefundedDiscriminator = anchor.EventDiscriminator("GasRefundedEvent")
)

// GasPaidEvent is emitted when native gas is paid for a contract call.
type GasPaidEvent struct {
	Sender             solana.PublicKey
	DestinationChain   string
	DestinationAddress string
	PayloadHash        [32]byte
	Amount             uint64
	RefundAddress      solana.PublicKey
	SplTokenAccount    *solana.PublicKey `bin:"optional"`
}

// GasAddedEvent is emitted when native gas is topped up for a message.
type GasAddedEvent struct {
	Sender          solana.PublicKey
	MessageID       string
	Amount          uint64
	RefundAddress   solana.PublicKey
	SplTokenAccount *solana.PublicKey `bin:"optional"`
}

// GasRefundedEvent is emitted when native gas is refunded.
type GasRefundedEvent struct {
	Receiver        solana.PublicKey
	MessageID       string
	Amount          uint64
	SplTokenAccount *solana.PublicKey `bin:"optional"`
}

// DecodeEvent decodes a raw Anchor event into its typed struct if the
// discriminator belongs to this program. Returns false for foreign events.
func DecodeEvent(ev anchor.Event) (string, interface{}, bool) {
	switch {
	case ev.Is(GasPaidDiscriminator):
		var out GasPaidEvent
		if err := ev.Unmarshal(&out); err != nil {
			return GasPaidEventName, nil, false
		}
		return GasPaidEventName, out, true
	case ev.Is(GasAddedDiscriminator):
		var out GasAddedEvent
		if err := ev.Unmarshal(&out); err != nil {
			return GasAddedEventName, nil, false
		}
		return GasAddedEventName, out, true
	case ev.Is(GasRefundedDiscriminator):
		var out GasRefundedEvent
		if err := ev.Unmarshal(&out); err != nil {
			return GasRefundedEventName, nil, false
		}
		return GasRefundedEventName, out, true
	}
	return "", nil, false
}
