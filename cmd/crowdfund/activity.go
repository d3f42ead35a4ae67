package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crowdfundChain/internal/aggregate"
	"crowdfundChain/internal/config"
	"crowdfundChain/internal/indexer"
	"crowdfundChain/internal/model"
	"crowdfundChain/internal/storage"
	"crowdfundChain/internal/view"
)

func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Index CampaignCreated, ContributionMade and FundsWithdrawn events",
		Args:  cobra.NoArgs,
		RunE:  runActivity,
	}

	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().StringSlice("event", nil, "events to keep (comma-separated, default all)")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	cmd.Flags().String("out", "./data/activity.jsonl", "output JSONL path")
	cmd.Flags().String("checkpoint", "./data/activity_checkpoint.json", "checkpoint file path")
	cmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Bool("show", true, "print indexed events")
	cmd.Flags().Bool("summary", false, "print per-campaign totals of the output file")
	return cmd
}

// teeSink forwards activity to a sink and keeps a copy for display.
type teeSink struct {
	next    storage.ActivitySink
	records []model.ActivityRecord
}

func (t *teeSink) PutActivity(ctx context.Context, records []model.ActivityRecord) error {
	if err := t.next.PutActivity(ctx, records); err != nil {
		return err
	}
	t.records = append(t.records, records...)
	return nil
}

func runActivity(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadActivity(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	events, err := indexer.ParseEvents(cfg.Events)
	if err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()

	a, err := newApp(ctx, cmd, cfg.Config)
	if err != nil {
		return err
	}
	defer a.close()

	if a.chain == nil || a.contract == nil {
		return fmt.Errorf("rpc unavailable: %s", cfg.RPCURL)
	}

	var sink storage.ActivitySink = storage.NewJsonlStorage(cfg.Out)
	var checkpoint indexer.Checkpointer = indexer.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
	if a.pg != nil {
		sink = a.pg
		if cfg.CheckpointEnabled {
			checkpoint = indexer.DBCheckpoint{Store: a.pg, Name: "activity:" + a.contract.Address().Hex()}
		}
	}
	tee := &teeSink{next: sink}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Events:       events,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, a.chain, a.contract, tee, checkpoint, a.logger)

	a.logger.Info("activity indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", a.contract.Address().Hex()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("events", len(events)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", a.pg != nil),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if show, _ := cmd.Flags().GetBool("show"); show {
		fmt.Fprintln(a.out, view.ActivityTable(tee.records))
	}
	fmt.Fprintf(a.out, "indexed blocks %d-%d: %d events, %d skipped\n", stats.From, stats.To, stats.Records, stats.Skipped)

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		agg := aggregate.NewAggregator(a.logger)
		if a.pg != nil {
			err = agg.Add(tee.records)
		} else {
			err = agg.ReadFile(ctx, cfg.Out)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, view.SummaryTable(agg.Summaries()))
	}
	return nil
}
