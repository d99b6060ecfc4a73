package anchor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// programDataPrefix marks log lines carrying emit!-style events.
const programDataPrefix = "Program data: "

// Event is a raw Anchor event pulled out of transaction metadata:
// the 8-byte discriminator and the borsh payload that follows it.
type Event struct {
	Discriminator [DiscriminatorLength]byte
	Data          []byte
}

// Is reports whether the event carries the given discriminator.
func (e Event) Is(disc [DiscriminatorLength]byte) bool {
	return e.Discriminator == disc
}

// Unmarshal borsh-decodes the event payload into out.
func (e Event) Unmarshal(out interface{}) error {
	if err := bin.UnmarshalBorsh(out, e.Data); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}
	return nil
}

// EventsFromLogs extracts events from "Program data:" log lines. Lines that
// do not decode as base64 or are shorter than a discriminator are skipped.
func EventsFromLogs(logs []string) []Event {
	var events []Event
	for _, line := range logs {
		if !strings.HasPrefix(line, programDataPrefix) {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, programDataPrefix))
		if err != nil || len(raw) < DiscriminatorLength {
			continue
		}
		events = append(events, eventFromBytes(raw))
	}
	return events
}

// EventsFromInnerInstructions extracts emit_cpi! events: inner instructions
// executed by programID whose data starts with the event-CPI discriminator.
func EventsFromInnerInstructions(tx *solana.Transaction, meta *rpc.TransactionMeta, programID solana.PublicKey) []Event {
	if tx == nil || meta == nil {
		return nil
	}

	keys := tx.Message.AccountKeys

	var events []Event
	for _, group := range meta.InnerInstructions {
		for _, inst := range group.Instructions {
			if int(inst.ProgramIDIndex) >= len(keys) || !keys[inst.ProgramIDIndex].Equals(programID) {
				continue
			}
			data := []byte(inst.Data)
			if len(data) < 2*DiscriminatorLength {
				continue
			}
			if !bytes.Equal(data[:DiscriminatorLength], EventCPIDiscriminator[:]) {
				continue
			}
			events = append(events, eventFromBytes(data[DiscriminatorLength:]))
		}
	}
	return events
}

// ExtractEvents returns all events observable in a confirmed transaction,
// from log lines and from event-CPI inner instructions.
func ExtractEvents(tx *solana.Transaction, meta *rpc.TransactionMeta, programID solana.PublicKey) []Event {
	var events []Event
	if meta != nil {
		events = append(events, EventsFromLogs(meta.LogMessages)...)
	}
	events = append(events, EventsFromInnerInstructions(tx, meta, programID)...)
	return events
}

func eventFromBytes(raw []byte) Event {
	var ev Event
	copy(ev.Discriminator[:], raw[:DiscriminatorLength])
	ev.Data = raw[DiscriminatorLength:]
	return ev
}
