package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crowdfundChain/internal/campaign"
	"crowdfundChain/internal/chain"
	"crowdfundChain/internal/config"
	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/notify"
	"crowdfundChain/internal/session"
	"crowdfundChain/internal/storage"
	"crowdfundChain/internal/storage/postgres"
	"crowdfundChain/internal/wallet"
)

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	out      io.Writer
	notifier notify.Notifier

	chain    *chain.Client
	contract *contract.CrowdFund
	provider *wallet.KeystoreProvider
	pg       *postgres.Store

	campaigns *campaign.Service
	session   *session.Coordinator
}

func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cmd, cfg)
}

func newApp(ctx context.Context, cmd *cobra.Command, cfg config.Config) (*app, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	policy, err := campaign.ParseFallbackPolicy(cfg.Fallback)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("invalid contract address: %s", cfg.Contract)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
	}
	a.notifier = notify.Multi{notify.NewTerminalNotifier(cmd.ErrOrStderr()), notify.LogNotifier{Logger: logger}}

	if cfg.RPCURL != "" {
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			// Without a client every read takes the fallback path.
			logger.Warn("connect rpc failed", zap.String("rpc", cfg.RPCURL), zap.Error(err))
		} else {
			a.chain = client
		}
	}

	if a.chain != nil {
		cf, err := contract.NewCrowdFund(common.HexToAddress(cfg.Contract), a.chain, a.chain.Backend())
		if err != nil {
			a.close()
			return nil, err
		}
		a.contract = cf

		provider, err := wallet.NewKeystoreProvider(wallet.KeystoreConfig{
			Dir:               cfg.Keystore,
			Passphrase:        cfg.Passphrase,
			ChainPollInterval: cfg.ChainPollInterval,
		}, a.chain, logger)
		if err != nil {
			logger.Warn("keystore unavailable", zap.Error(err))
		} else {
			a.provider = provider
		}
	}

	var accountStore storage.AccountStore = &storage.FileAccountStore{Path: cfg.SessionFile}
	var snapshots storage.CampaignSink
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.Contract)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			a.close()
			return nil, err
		}
		a.pg = pg
		accountStore = &postgres.AccountStore{Store: pg, Name: storage.ConnectedAccountKey}
		snapshots = pg
	}
	if cfg.SnapshotOut != "" {
		snapshots = storage.NewJsonlStorage(cfg.SnapshotOut)
	}

	var binding campaign.Contract
	if a.contract != nil {
		binding = a.contract
	}
	a.campaigns = campaign.NewService(binding, campaign.Config{Policy: policy}, a.notifier, logger)

	var provider wallet.Provider
	if a.provider != nil {
		provider = a.provider
	}
	a.session = session.New(session.Options{
		Provider:  provider,
		Campaigns: a.campaigns,
		Store:     accountStore,
		Notifier:  a.notifier,
		Logger:    logger,
		Snapshots: snapshots,
	})

	return a, nil
}

// restore reconnects the persisted account and waits for it to finish.
func (a *app) restore(ctx context.Context) {
	select {
	case <-a.session.Start(ctx):
	case <-ctx.Done():
	}
}

// signer returns signing options for the restored session.
func (a *app) signer(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := a.session.Signer(ctx)
	if err != nil {
		a.notifier.Error(campaign.ErrNoSigner.Error())
		return nil, fmt.Errorf("%w: %w", campaign.ErrNoSigner, err)
	}
	return opts, nil
}

func (a *app) close() {
	if a.session != nil {
		a.session.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.chain != nil {
		a.chain.Close()
	}
	_ = a.logger.Sync()
}
