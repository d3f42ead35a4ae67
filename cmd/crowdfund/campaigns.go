package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crowdfundChain/internal/campaign"
	"crowdfundChain/internal/view"
)

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withApp wires the app, restores the session and runs fn.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext()
		defer stop()

		a, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.close()

		a.restore(ctx)
		return fn(ctx, a, args)
	}
}

func parseCampaignID(input string) (uint64, error) {
	id, err := strconv.ParseUint(input, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid campaign id: %s", input)
	}
	return id, nil
}

func newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show featured campaigns",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			fmt.Fprintln(a.out, view.SessionStatus(a.session.State()))
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, view.CampaignGrid(a.campaigns.Featured(), time.Now()))
			return nil
		}),
	}
}

func newCampaignsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "campaigns",
		Short: "List all campaigns",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			st := a.session.State()
			if st.IsConnected {
				fmt.Fprintln(a.out, view.CampaignGrid(st.Campaigns, time.Now()))
				return nil
			}

			res := a.campaigns.GetAllCampaigns(ctx)
			if banner := view.SourceBanner(res); banner != "" {
				fmt.Fprintln(a.out, banner)
			}
			fmt.Fprintln(a.out, view.CampaignGrid(res.Campaigns, time.Now()))
			return nil
		}),
	}
}

func newCampaignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "campaign <id>",
		Short: "Show campaign details",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			c, source, err := a.campaigns.FindCampaign(ctx, id)
			if err != nil {
				return err
			}
			if source != campaign.SourceChain {
				fmt.Fprintln(a.out, view.SourceBanner(campaign.ListResult{Source: source}))
			}
			fmt.Fprintln(a.out, view.CampaignDetail(c, a.session.State().Account, time.Now()))
			return nil
		}),
	}
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("title", "", "campaign title")
	cmd.Flags().String("description", "", "campaign description")
	cmd.Flags().String("goal", "", "funding goal in ETH")
	cmd.Flags().Int("days", 30, "campaign duration in days")

	cmd.RunE = withApp(func(ctx context.Context, a *app, _ []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		goal, _ := cmd.Flags().GetString("goal")
		days, _ := cmd.Flags().GetInt("days")

		opts, err := a.signer(ctx)
		if err != nil {
			return err
		}
		res := a.campaigns.CreateCampaign(ctx, opts, title, description, goal, days)
		fmt.Fprintln(a.out, view.TxSummary("Create campaign", res))
		if !res.Success {
			return res.Err
		}
		a.session.RefreshCampaigns(ctx)
		return nil
	})
	return cmd
}

func newContributeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <id> <amount>",
		Short: "Contribute ETH to a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			opts, err := a.signer(ctx)
			if err != nil {
				return err
			}
			res := a.campaigns.ContributeToCampaign(ctx, opts, id, args[1])
			fmt.Fprintln(a.out, view.TxSummary("Contribution", res))
			if !res.Success {
				return res.Err
			}
			a.session.RefreshCampaigns(ctx)
			return showCampaign(ctx, a, id)
		}),
	}
}

func newWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Withdraw the funds of a finished campaign you created",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			opts, err := a.signer(ctx)
			if err != nil {
				return err
			}

			c, source, err := a.campaigns.FindCampaign(ctx, id)
			if err != nil {
				return err
			}
			if source == campaign.SourceChain && !c.CanWithdraw(opts.From.Hex(), time.Now()) {
				return errors.New("only the creator can withdraw, after the campaign has ended and raised funds")
			}

			res := a.campaigns.WithdrawFunds(ctx, opts, id)
			fmt.Fprintln(a.out, view.TxSummary("Withdrawal", res))
			if !res.Success {
				return res.Err
			}
			a.session.RefreshCampaigns(ctx)
			return nil
		}),
	}
}

func showCampaign(ctx context.Context, a *app, id uint64) error {
	c, err := a.campaigns.GetCampaign(ctx, id)
	if err != nil {
		a.logger.Warn("reload campaign failed", zap.Uint64("campaign_id", id), zap.Error(err))
		return nil
	}
	fmt.Fprintln(a.out, view.CampaignDetail(c, a.session.State().Account, time.Now()))
	return nil
}
