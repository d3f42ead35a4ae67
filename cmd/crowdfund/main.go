package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "crowdfund",
		Short:        "CrowdFundChain campaign client",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", "", "Ethereum RPC URL (empty shows demo data)")
	flags.String("contract", "", "CrowdFundChain contract address")
	flags.String("keystore", "./data/keystore", "keystore directory")
	flags.String("passphrase", "", "keystore passphrase")
	flags.String("session-file", "./data/session.json", "file holding the connected account")
	flags.String("pg-dsn", "", "Postgres DSN (stores the session, snapshots and activity)")
	flags.String("fallback", "mock", "read fallback when the contract is unreachable (mock, none)")
	flags.Duration("chain-poll-interval", 4*time.Second, "wallet chain id poll interval")
	flags.String("snapshot-out", "", "optional JSONL file receiving campaign snapshots")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newHomeCmd(),
		newCampaignsCmd(),
		newCampaignCmd(),
		newCreateCmd(),
		newContributeCmd(),
		newWithdrawCmd(),
		newConnectCmd(),
		newDisconnectCmd(),
		newStatusCmd(),
		newProfileCmd(),
		newWatchCmd(),
		newExportCmd(),
		newActivityCmd(),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
