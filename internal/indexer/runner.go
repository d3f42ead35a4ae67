package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/model"
	"crowdfundChain/internal/storage"
)

// Chain is the RPC surface the indexer reads from.
type Chain interface {
	ChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, address common.Address) ([]types.Log, error)
}

// Decoder turns contract logs into named events.
type Decoder interface {
	Address() common.Address
	DecodeLog(log types.Log) (*contract.Event, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Events       map[string]struct{}
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Stats summarizes a run.
type Stats struct {
	Batches  int
	Records  int
	Skipped  int
	From, To uint64
}

// Runner streams CrowdFundChain logs and writes activity records to a sink.
type Runner struct {
	cfg        RunConfig
	chain      Chain
	decoder    Decoder
	sink       storage.ActivitySink
	checkpoint Checkpointer
	logger     *zap.Logger
	seen       map[string]struct{}
	now        func() time.Time
}

// NewRunner builds a Runner. checkpoint may be nil.
func NewRunner(cfg RunConfig, chainClient Chain, decoder Decoder, sink storage.ActivitySink, checkpoint Checkpointer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		decoder:    decoder,
		sink:       sink,
		checkpoint: checkpoint,
		logger:     logger,
		seen:       make(map[string]struct{}),
		now:        time.Now,
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	if r.chain == nil {
		return stats, fmt.Errorf("chain client is nil")
	}
	if r.decoder == nil {
		return stats, fmt.Errorf("decoder is nil")
	}
	if r.sink == nil {
		return stats, fmt.Errorf("activity sink is nil")
	}
	if r.cfg.BatchSize == 0 {
		return stats, fmt.Errorf("batch size must be greater than zero")
	}

	var chainID *big.Int
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		chainID, err = r.chain.ChainID(ctx)
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return stats, fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return stats, fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return stats, err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}
	stats.From, stats.To = from, to

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return stats, nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return stats, err
	}

	address := r.decoder.Address()
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		r.logger.Info("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To), zap.Uint64("blocks", blockRange.Len()))

		logs, err := r.filterLogsWithRetry(ctx, address, blockRange.From, blockRange.To)
		if err != nil {
			return stats, fmt.Errorf("filter logs: %w", err)
		}

		ingestedAt := r.now().UTC()
		records := make([]model.ActivityRecord, 0, len(logs))
		for _, log := range logs {
			if log.Removed || r.isDuplicate(log) {
				continue
			}

			ev, err := r.decoder.DecodeLog(log)
			if err != nil {
				stats.Skipped++
				r.logger.Debug("skip undecodable log", zap.String("tx_hash", log.TxHash.Hex()), zap.Uint("log_index", log.Index), zap.Error(err))
				continue
			}
			if !r.wants(ev.Name) {
				continue
			}

			ts, err := r.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return stats, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}
			rec, err := buildActivityRecord(chainIDValue, ev, ts, ingestedAt)
			if err != nil {
				stats.Skipped++
				r.logger.Warn("skip malformed event", zap.String("event", ev.Name), zap.String("tx_hash", log.TxHash.Hex()), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}

		if err := r.sink.PutActivity(ctx, records); err != nil {
			return stats, fmt.Errorf("store activity: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return stats, err
			}
		}

		stats.Batches++
		stats.Records += len(records)
		r.logger.Info("batch complete", zap.Int("records", len(records)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return stats, nil
}

func (r *Runner) wants(name string) bool {
	if len(r.cfg.Events) == 0 {
		return true
	}
	_, ok := r.cfg.Events[name]
	return ok
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, address common.Address, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, address)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
