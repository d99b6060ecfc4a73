package main

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/urfave/cli/v2"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gasservice"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/client/chainclient"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

func main() {
	app := &cli.App{
		Name:  "triggers",
		Usage: "drive the dummy gateway and gas-service programs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "node HTTP endpoint",
				Value:   rpc.LocalNet_RPC,
				EnvVars: []string{"RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "ws-url",
				Usage:   "node websocket endpoint",
				Value:   rpc.LocalNet_WS,
				EnvVars: []string{"WS_URL"},
			},
			&cli.StringFlag{
				Name:    "keypair",
				Usage:   "path to the payer keypair file",
				Value:   defaultKeypairPath(),
				EnvVars: []string{"PAYER"},
			},
			&cli.StringFlag{
				Name:    "program",
				Usage:   "gateway program address",
				Value:   gateway.DefaultProgramID.String(),
				EnvVars: []string{"PROGRAM_ID"},
			},
			&cli.StringFlag{
				Name:    "gas-program",
				Usage:   "gas-service program address",
				Value:   gasservice.DefaultProgramID.String(),
				EnvVars: []string{"GAS_PROGRAM_ID"},
			},
			&cli.StringFlag{
				Name:    "commitment",
				Usage:   "commitment level (processed, confirmed, finalized)",
				Value:   "confirmed",
				EnvVars: []string{"COMMITMENT"},
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "verbose development logging",
				EnvVars: []string{"DEV_MODE"},
			},
		},
		Commands: []*cli.Command{
			initializeProgramsCommand(),
			emitCommand(),
			callContractCommand(),
			cpiCallContractCommand(),
			payGasCommand(),
			addGasCommand(),
			refundGasCommand(),
			transferCommand(),
			logsCommand(),
			listenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "id.json"
	}
	return home + "/.config/solana/id.json"
}

// toolkit bundles what every command needs.
type toolkit struct {
	client  *chainclient.Client
	payer   solana.PrivateKey
	program solana.PublicKey
	gasProg solana.PublicKey
	logger  logging.Logger
}

func newToolkit(c *cli.Context) (*toolkit, error) {
	logCfg := logging.NewDefaultConfig(logging.TriggersProcess)
	if !c.Bool("dev") {
		logCfg.Environment = logging.Production
		logCfg.UseColors = false
	}
	logger, err := logging.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	payer, err := solana.PrivateKeyFromSolanaKeygenFile(c.String("keypair"))
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair %s: %w", c.String("keypair"), err)
	}

	program, err := solana.PublicKeyFromBase58(c.String("program"))
	if err != nil {
		return nil, fmt.Errorf("invalid program address: %w", err)
	}
	gasProg, err := solana.PublicKeyFromBase58(c.String("gas-program"))
	if err != nil {
		return nil, fmt.Errorf("invalid gas-program address: %w", err)
	}

	cfg := chainclient.DefaultConfig(logger)
	cfg.RPCURL = c.String("rpc-url")
	cfg.WSURL = c.String("ws-url")
	cfg.Commitment = rpc.CommitmentType(c.String("commitment"))

	client, err := chainclient.New(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chain client: %w", err)
	}

	return &toolkit{
		client:  client,
		payer:   payer,
		program: program,
		gasProg: gasProg,
		logger:  logger,
	}, nil
}

func (t *toolkit) close() {
	t.client.Close()
}
