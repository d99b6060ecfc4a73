package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/anchor"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gasservice"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
)

func initializeProgramsCommand() *cli.Command {
	return &cli.Command{
		Name:  "initialize-programs",
		Usage: "initialize the gateway program and its root PDA",
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			sig, err := t.client.SendInstructions(c.Context, t.payer, gateway.NewInitializeInstruction(t.program))
			if err != nil {
				return fmt.Errorf("initialize failed: %w", err)
			}
			fmt.Println("Initialized program:", sig)

			rootIx, err := gateway.NewInitGatewayRootInstruction(t.program, t.payer.PublicKey())
			if err != nil {
				return err
			}
			sig, err = t.client.SendInstructions(c.Context, t.payer, rootIx)
			if err != nil {
				return fmt.Errorf("init_gateway_root failed: %w", err)
			}

			rootPDA, _, _ := gateway.FindGatewayRootPDA(t.program)
			fmt.Printf("Initialized gateway root PDA %s (tx %s)\n", rootPDA, sig)
			return nil
		},
	}
}

func emitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "invoke emit_received with a value",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "value", Usage: "value carried by the event", Value: 42},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			value := c.Uint64("value")
			sig, err := t.client.SendInstructions(c.Context, t.payer,
				gateway.NewEmitReceivedInstruction(t.program, value))
			if err != nil {
				return fmt.Errorf("emit_received failed: %w", err)
			}

			fmt.Printf("Sent emit_received(%d): %s\n", value, sig)
			return nil
		},
	}
}

func destinationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "dest-chain", Usage: "destination chain name", Value: "ethereum"},
		&cli.StringFlag{
			Name:  "dest-address",
			Usage: "destination contract address",
			Value: "0x0000000000000000000000000000000000000000",
		},
		&cli.StringFlag{Name: "payload", Usage: "payload bytes", Value: "\x01\x02\x03\x04\x05"},
	}
}

func callContractCommand() *cli.Command {
	return &cli.Command{
		Name:  "call-contract",
		Usage: "invoke call_contract on the gateway",
		Flags: destinationFlags(),
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			payload := []byte(c.String("payload"))
			ix, err := gateway.NewCallContractInstruction(
				t.program,
				c.String("dest-chain"),
				c.String("dest-address"),
				sha256.Sum256(payload),
				payload,
			)
			if err != nil {
				return err
			}

			sig, err := t.client.SendInstructions(c.Context, t.payer, ix)
			if err != nil {
				return fmt.Errorf("call_contract failed: %w", err)
			}

			fmt.Println("Sent call_contract tx:", sig)
			fmt.Println("Destination chain:", c.String("dest-chain"))
			fmt.Println("Destination address:", c.String("dest-address"))
			fmt.Printf("Payload length: %d bytes\n", len(payload))
			return nil
		},
	}
}

func cpiCallContractCommand() *cli.Command {
	return &cli.Command{
		Name:  "cpi-call-contract",
		Usage: "invoke the gateway's call_contract through the gas-service CPI",
		Flags: destinationFlags(),
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			payload := []byte(c.String("payload"))
			ix, err := gasservice.NewCpiCallContractInstruction(
				t.gasProg,
				t.program,
				t.payer.PublicKey(),
				c.String("dest-chain"),
				c.String("dest-address"),
				sha256.Sum256(payload),
				payload,
			)
			if err != nil {
				return err
			}

			sig, err := t.client.SendInstructions(c.Context, t.payer, ix)
			if err != nil {
				return fmt.Errorf("cpi_call_contract failed: %w", err)
			}

			fmt.Println("Sent cpi_call_contract tx:", sig)
			return nil
		},
	}
}

func payGasCommand() *cli.Command {
	return &cli.Command{
		Name:  "pay-gas",
		Usage: "pay native gas for a contract call on the gas service",
		Flags: append(destinationFlags(),
			&cli.Uint64Flag{Name: "amount", Usage: "gas fee in lamports", Value: solana.LAMPORTS_PER_SOL / 100},
		),
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			payload := []byte(c.String("payload"))
			ix, err := gasservice.NewPayNativeForContractCallInstruction(
				t.gasProg,
				t.payer.PublicKey(),
				c.String("dest-chain"),
				c.String("dest-address"),
				sha256.Sum256(payload),
				c.Uint64("amount"),
				t.payer.PublicKey(),
			)
			if err != nil {
				return err
			}

			sig, err := t.client.SendInstructions(c.Context, t.payer, ix)
			if err != nil {
				return fmt.Errorf("pay_native_for_contract_call failed: %w", err)
			}

			fmt.Println("Sent pay_native_for_contract_call tx:", sig)
			return nil
		},
	}
}

func addGasCommand() *cli.Command {
	return &cli.Command{
		Name:  "add-gas",
		Usage: "top up native gas for a message",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message-id", Usage: "message identifier", Required: true},
			&cli.Uint64Flag{Name: "amount", Usage: "lamports to add", Value: solana.LAMPORTS_PER_SOL / 100},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			ix, err := gasservice.NewAddNativeGasInstruction(
				t.gasProg,
				t.payer.PublicKey(),
				c.String("message-id"),
				c.Uint64("amount"),
				t.payer.PublicKey(),
			)
			if err != nil {
				return err
			}

			sig, err := t.client.SendInstructions(c.Context, t.payer, ix)
			if err != nil {
				return fmt.Errorf("add_native_gas failed: %w", err)
			}

			fmt.Println("Sent add_native_gas tx:", sig)
			return nil
		},
	}
}

func refundGasCommand() *cli.Command {
	return &cli.Command{
		Name:  "refund-gas",
		Usage: "refund native gas fees for a message",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message-id", Usage: "message identifier", Required: true},
			&cli.Uint64Flag{Name: "amount", Usage: "lamports to refund", Value: solana.LAMPORTS_PER_SOL / 100},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			ix, err := gasservice.NewRefundNativeFeesInstruction(
				t.gasProg,
				t.payer.PublicKey(),
				c.String("message-id"),
				c.Uint64("amount"),
			)
			if err != nil {
				return err
			}

			sig, err := t.client.SendInstructions(c.Context, t.payer, ix)
			if err != nil {
				return fmt.Errorf("refund_native_fees failed: %w", err)
			}

			fmt.Println("Sent refund_native_fees tx:", sig)
			return nil
		},
	}
}

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "send a hand-encoded system-program transfer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "recipient address (default: a fresh wallet)"},
			&cli.Uint64Flag{Name: "lamports", Usage: "amount to transfer", Value: solana.LAMPORTS_PER_SOL / 100},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			recipient := solana.NewWallet().PublicKey()
			if c.String("to") != "" {
				recipient, err = solana.PublicKeyFromBase58(c.String("to"))
				if err != nil {
					return fmt.Errorf("invalid recipient: %w", err)
				}
			}

			sender := t.payer.PublicKey()
			preSender, err := t.client.Balance(c.Context, sender)
			if err != nil {
				return err
			}
			preRecipient, err := t.client.Balance(c.Context, recipient)
			if err != nil {
				return err
			}

			// System-program transfer encoded by hand: instruction index 2
			// followed by the lamport amount, both little endian.
			amount := c.Uint64("lamports")
			data := make([]byte, 12)
			binary.LittleEndian.PutUint32(data[:4], 2)
			binary.LittleEndian.PutUint64(data[4:], amount)

			ix := solana.NewInstruction(
				solana.SystemProgramID,
				solana.AccountMetaSlice{
					solana.Meta(sender).WRITE().SIGNER(),
					solana.Meta(recipient).WRITE(),
				},
				data,
			)

			sig, err := t.client.SendInstructions(c.Context, t.payer, ix)
			if err != nil {
				return fmt.Errorf("transfer failed: %w", err)
			}

			postSender, err := t.client.Balance(c.Context, sender)
			if err != nil {
				return err
			}
			postRecipient, err := t.client.Balance(c.Context, recipient)
			if err != nil {
				return err
			}

			sol := float64(solana.LAMPORTS_PER_SOL)
			fmt.Printf("Sender prebalance: %f\n", float64(preSender)/sol)
			fmt.Printf("Recipient prebalance: %f\n", float64(preRecipient)/sol)
			fmt.Printf("Sender postbalance: %f\n", float64(postSender)/sol)
			fmt.Printf("Recipient postbalance: %f\n", float64(postRecipient)/sol)
			fmt.Println("Transaction Signature:", sig)
			return nil
		},
	}
}

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "list recent program transactions and fetch them concurrently",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "number of signatures to fetch", Value: 2},
		},
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			sigs, err := t.client.SignaturesForAddress(c.Context, t.program, c.Int("limit"))
			if err != nil {
				return fmt.Errorf("failed to list signatures: %w", err)
			}

			g, ctx := errgroup.WithContext(c.Context)
			for _, s := range sigs {
				s := s
				g.Go(func() error {
					fmt.Println("Signature:", s.Signature)
					out, err := t.client.Transaction(ctx, s.Signature)
					if err != nil {
						fmt.Println("Error:", err)
						return nil
					}
					fmt.Printf("Transaction got (slot %d)\n", out.Slot)
					return nil
				})
			}
			return g.Wait()
		},
	}
}

func listenCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "subscribe to the program's logs and print decoded events",
		Action: func(c *cli.Context) error {
			t, err := newToolkit(c)
			if err != nil {
				return err
			}
			defer t.close()

			sub, err := t.client.SubscribeLogs(t.program)
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}
			defer sub.Unsubscribe()

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Println("Listening for events on", t.program)
			for {
				result, err := sub.Recv(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("subscription stream failed: %w", err)
				}
				if result.Value.Err != nil {
					continue
				}

				for _, ev := range anchor.EventsFromLogs(result.Value.Logs) {
					name, payload := decodeKnownEvent(ev)
					line := map[string]interface{}{
						"event":     name,
						"payload":   payload,
						"slot":      result.Context.Slot,
						"signature": result.Value.Signature.String(),
					}
					enc, _ := json.Marshal(line)
					fmt.Println(string(enc))
				}
			}
		},
	}
}

func decodeKnownEvent(ev anchor.Event) (string, interface{}) {
	if name, payload, ok := gateway.DecodeEvent(ev); ok {
		return name, payload
	}
	if name, payload, ok := gasservice.DecodeEvent(ev); ok {
		return name, payload
	}
	return "unknown", nil
}
