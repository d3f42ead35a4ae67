package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crowdfundChain/internal/model"
	"crowdfundChain/internal/view"
	"crowdfundChain/internal/wallet"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect [keystore|metamask|walletconnect|coinbase]",
		Short: "Connect a wallet and remember the account",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			kind, err := wallet.ParseKind(input)
			if err != nil {
				return err
			}

			if st := a.session.State(); st.IsConnected {
				fmt.Fprintln(a.out, view.SessionStatus(st))
				return nil
			}
			if err := a.session.Connect(ctx, kind); err != nil {
				return err
			}
			fmt.Fprintln(a.out, view.SessionStatus(a.session.State()))
			return nil
		}),
	}
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			a.session.Disconnect(ctx)
			fmt.Fprintln(a.out, view.SessionStatus(a.session.State()))
			return nil
		}),
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the wallet session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			fmt.Fprintln(a.out, view.SessionStatus(a.session.State()))
			return nil
		}),
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your account and the campaigns you created",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			fmt.Fprintln(a.out, view.Profile(a.session.State(), time.Now()))
			return nil
		}),
	}
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow wallet account and network changes",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Duration("refresh", time.Second, "status refresh interval")

	cmd.RunE = withApp(func(ctx context.Context, a *app, _ []string) error {
		if a.provider == nil {
			a.notifier.Error("No wallet found! Please install MetaMask or another web3 wallet.")
			return wallet.ErrNoWallet
		}
		interval, _ := cmd.Flags().GetDuration("refresh")
		if interval <= 0 {
			interval = time.Second
		}

		go func() {
			if err := a.provider.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("wallet watcher stopped", zap.Error(err))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last model.Session
		printed := false
		for {
			st := a.session.State()
			if !printed || changed(last, st) {
				fmt.Fprintln(a.out, view.SessionStatus(st))
				fmt.Fprintln(a.out)
				last, printed = st, true
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	return cmd
}

func changed(a, b model.Session) bool {
	return a.Account != b.Account ||
		a.Network != b.Network ||
		a.Balance != b.Balance ||
		a.IsConnected != b.IsConnected ||
		len(a.UserCampaigns) != len(b.UserCampaigns)
}
