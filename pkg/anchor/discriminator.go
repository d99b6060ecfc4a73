// Package anchor implements the Anchor wire conventions needed to drive
// and observe Anchor programs without their IDL: instruction sighashes,
// event discriminators and event extraction from transaction metadata.
package anchor

import "crypto/sha256"

// DiscriminatorLength is the length of Anchor instruction and event discriminators.
const DiscriminatorLength = 8

// EventCPIDiscriminator is the fixed instruction discriminator Anchor uses for
// self-CPI event emission (emit_cpi!). Inner instructions carrying events are
// prefixed with these 8 bytes, followed by the event discriminator and the
// borsh-encoded payload.
var EventCPIDiscriminator = [DiscriminatorLength]byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}

// InstructionSighash returns the 8-byte discriminator for a global instruction,
// sha256("global:<name>")[..8].
func InstructionSighash(name string) [DiscriminatorLength]byte {
	return sighash("global:" + name)
}

// EventDiscriminator returns the 8-byte discriminator for an event struct,
// sha256("event:<StructName>")[..8].
func EventDiscriminator(structName string) [DiscriminatorLength]byte {
	return sighash("event:" + structName)
}

func sighash(preimage string) [DiscriminatorLength]byte {
	digest := sha256.Sum256([]byte(preimage))
	var out [DiscriminatorLength]byte
	copy(out[:], digest[:DiscriminatorLength])
	return out
}
