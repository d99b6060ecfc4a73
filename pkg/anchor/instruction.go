package anchor

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// EncodeInstruction builds Anchor instruction data: the sighash of the
// instruction name followed by each argument borsh-encoded in order.
func EncodeInstruction(name string, args ...interface{}) ([]byte, error) {
	sighash := InstructionSighash(name)
	data := make([]byte, 0, DiscriminatorLength+16*len(args))
	data = append(data, sighash[:]...)

	for i, arg := range args {
		encoded, err := bin.MarshalBorsh(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode arg %d of %s: %w", i, name, err)
		}
		data = append(data, encoded...)
	}

	return data, nil
}

// MustEncodeInstruction is EncodeInstruction for arguments known to be encodable.
func MustEncodeInstruction(name string, args ...interface{}) []byte {
	data, err := EncodeInstruction(name, args...)
	if err != nil {
		panic(err)
	}
	return data
}
