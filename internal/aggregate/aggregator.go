package aggregate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"crowdfundChain/internal/model"
)

// Aggregator folds activity records into per-campaign totals.
type Aggregator struct {
	logger       *zap.Logger
	accumulators map[string]*Accumulator
}

func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Add folds records into the running totals.
func (a *Aggregator) Add(records []model.ActivityRecord) error {
	for _, record := range records {
		key := fmt.Sprintf("%d:%d", record.ChainID, record.CampaignID)
		acc, ok := a.accumulators[key]
		if !ok {
			acc = NewAccumulator(record)
			a.accumulators[key] = acc
		}
		if err := acc.AddEvent(record); err != nil {
			return err
		}
	}
	return nil
}

// Summaries returns totals ordered by chain and campaign id.
func (a *Aggregator) Summaries() []Summary {
	out := make([]Summary, 0, len(a.accumulators))
	for _, acc := range a.accumulators {
		out = append(out, acc.ToSummary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChainID != out[j].ChainID {
			return out[i].ChainID < out[j].ChainID
		}
		return out[i].CampaignID < out[j].CampaignID
	})
	return out
}

// ReadFile folds every record of an activity JSONL file. A missing file
// contributes nothing.
func (a *Aggregator) ReadFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record model.ActivityRecord
		if err := json.Unmarshal(line, &record); err != nil {
			a.logger.Warn("skip invalid activity line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if err := a.Add([]model.ActivityRecord{record}); err != nil {
			a.logger.Warn("skip activity record", zap.Int("line", lineNo), zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

func normalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}
