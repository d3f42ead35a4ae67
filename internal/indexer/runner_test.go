package indexer

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/model"
)

var (
	testContract    = common.HexToAddress(contract.DefaultAddress)
	testCreator     = common.HexToAddress("0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199")
	testContributor = common.HexToAddress("0x1234567890123456789012345678901234567890")
)

type noCalls struct{}

func (noCalls) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, errors.New("unexpected call")
}

type fakeChain struct {
	latest      uint64
	logs        []types.Log
	filterFails int
	calls       [][2]uint64
}

func (c *fakeChain) ChainID(ctx context.Context) (*big.Int, error) { return big.NewInt(11155111), nil }

func (c *fakeChain) LatestBlockNumber(ctx context.Context) (uint64, error) { return c.latest, nil }

func (c *fakeChain) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	return 1_700_000_000 + number, nil
}

func (c *fakeChain) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, address common.Address) ([]types.Log, error) {
	if c.filterFails > 0 {
		c.filterFails--
		return nil, errors.New("rpc unavailable")
	}
	c.calls = append(c.calls, [2]uint64{fromBlock, toBlock})
	var out []types.Log
	for _, log := range c.logs {
		if log.Address == address && log.BlockNumber >= fromBlock && log.BlockNumber <= toBlock {
			out = append(out, log)
		}
	}
	return out, nil
}

type memorySink struct {
	records []model.ActivityRecord
}

func (s *memorySink) PutActivity(ctx context.Context, records []model.ActivityRecord) error {
	s.records = append(s.records, records...)
	return nil
}

type memoryState struct {
	blocks map[string]uint64
}

func (m *memoryState) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	b, ok := m.blocks[name]
	return b, ok, nil
}

func (m *memoryState) SaveState(ctx context.Context, name string, block uint64) error {
	m.blocks[name] = block
	return nil
}

func newDecoder(t *testing.T) *contract.CrowdFund {
	t.Helper()
	cf, err := contract.NewCrowdFund(testContract, noCalls{}, nil)
	if err != nil {
		t.Fatalf("new crowdfund: %v", err)
	}
	return cf
}

func eventLog(t *testing.T, name string, block uint64, index uint, topics []common.Hash, values ...interface{}) types.Log {
	t.Helper()
	parsed, err := contract.CrowdFundABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	ev := parsed.Events[name]
	data, err := ev.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		t.Fatalf("pack %s: %v", name, err)
	}
	return types.Log{
		Address:     testContract,
		Topics:      append([]common.Hash{ev.ID}, topics...),
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
		Index:       index,
	}
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func sampleLogs(t *testing.T) []types.Log {
	wei := func(s string) *big.Int {
		v, _ := new(big.Int).SetString(s, 10)
		return v
	}
	created := eventLog(t, contract.EventCampaignCreated, 10, 0,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(testCreator)},
		"Ocean Cleanup", wei("4000000000000000000"), big.NewInt(1_800_000_000),
	)
	contributed := eventLog(t, contract.EventContributionMade, 12, 1,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(testContributor)},
		wei("500000000000000000"),
	)
	withdrawn := eventLog(t, contract.EventFundsWithdrawn, 15, 0,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(testCreator)},
		wei("500000000000000000"),
	)
	foreign := types.Log{
		Address:     testContract,
		Topics:      []common.Hash{common.HexToHash("0xdeadbeef")},
		BlockNumber: 13,
		TxHash:      common.HexToHash("0x13"),
	}
	return []types.Log{created, contributed, foreign, withdrawn}
}

func TestRunnerWritesActivity(t *testing.T) {
	chain := &fakeChain{latest: 20, logs: sampleLogs(t)}
	sink := &memorySink{}
	runner := NewRunner(RunConfig{FromBlock: 1, BatchSize: 5}, chain, newDecoder(t), sink, nil, nil)

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Batches != 4 || stats.Records != 3 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(sink.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(sink.records))
	}

	created := sink.records[0]
	if created.Event != contract.EventCampaignCreated || created.CampaignID != 1 {
		t.Fatalf("unexpected created record: %+v", created)
	}
	if created.Account != testCreator.Hex() || created.Title != "Ocean Cleanup" || created.Amount != "4.0" {
		t.Fatalf("unexpected created fields: %+v", created)
	}
	if created.ChainID != 11155111 || created.Timestamp != 1_700_000_010 {
		t.Fatalf("unexpected created metadata: %+v", created)
	}

	contributed := sink.records[1]
	if contributed.Account != testContributor.Hex() || contributed.Amount != "0.5" || contributed.LogIndex != 1 {
		t.Fatalf("unexpected contribution record: %+v", contributed)
	}
}

func TestRunnerEventFilter(t *testing.T) {
	chain := &fakeChain{latest: 20, logs: sampleLogs(t)}
	sink := &memorySink{}
	events, err := ParseEvents([]string{"contributionmade"})
	if err != nil {
		t.Fatalf("parse events: %v", err)
	}
	runner := NewRunner(RunConfig{FromBlock: 1, BatchSize: 100, Events: events}, chain, newDecoder(t), sink, nil, nil)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].Event != contract.EventContributionMade {
		t.Fatalf("unexpected records: %+v", sink.records)
	}
}

func TestParseEventsRejectsUnknown(t *testing.T) {
	if _, err := ParseEvents([]string{"Transfer"}); err == nil {
		t.Fatalf("expected error for unknown event")
	}
	all, err := ParseEvents(nil)
	if err != nil {
		t.Fatalf("parse events: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all events, got %v", all)
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	chain := &fakeChain{latest: 20, logs: sampleLogs(t)}
	sink := &memorySink{}
	state := &memoryState{blocks: map[string]uint64{"activity": 12}}
	cp := DBCheckpoint{Store: state, Name: "activity"}
	runner := NewRunner(RunConfig{FromBlock: 1, BatchSize: 100}, chain, newDecoder(t), sink, cp, nil)

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.From != 13 || stats.To != 20 {
		t.Fatalf("unexpected range: %+v", stats)
	}
	if len(sink.records) != 1 || sink.records[0].Event != contract.EventFundsWithdrawn {
		t.Fatalf("unexpected records: %+v", sink.records)
	}
	if state.blocks["activity"] != 20 {
		t.Fatalf("checkpoint not advanced: %d", state.blocks["activity"])
	}
}

func TestRunnerNothingToSync(t *testing.T) {
	chain := &fakeChain{latest: 20}
	state := &memoryState{blocks: map[string]uint64{"activity": 20}}
	runner := NewRunner(RunConfig{FromBlock: 1, BatchSize: 10}, chain, newDecoder(t), &memorySink{}, DBCheckpoint{Store: state, Name: "activity"}, nil)

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Batches != 0 || len(chain.calls) != 0 {
		t.Fatalf("expected no work, got %+v", stats)
	}
}

func TestRunnerRetriesFilterLogs(t *testing.T) {
	chain := &fakeChain{latest: 20, logs: sampleLogs(t), filterFails: 2}
	sink := &memorySink{}
	cfg := RunConfig{FromBlock: 1, BatchSize: 100, MaxRetries: 2, RetryBackoff: time.Millisecond}
	runner := NewRunner(cfg, chain, newDecoder(t), sink, nil, nil)

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.records) != 3 {
		t.Fatalf("expected 3 records after retries, got %d", len(sink.records))
	}
}

func TestRunnerGivesUpAfterRetries(t *testing.T) {
	chain := &fakeChain{latest: 20, filterFails: 5}
	cfg := RunConfig{FromBlock: 1, BatchSize: 100, MaxRetries: 1, RetryBackoff: time.Millisecond}
	runner := NewRunner(cfg, chain, newDecoder(t), &memorySink{}, nil, nil)

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFileCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "checkpoint.json")
	store := NewCheckpointStore(path, true)

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty checkpoint, ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, 42); err != nil {
		t.Fatalf("save: %v", err)
	}
	block, ok, err := store.Load(ctx)
	if err != nil || !ok || block != 42 {
		t.Fatalf("unexpected checkpoint: %d %v %v", block, ok, err)
	}

	disabled := NewCheckpointStore(path, false)
	if _, ok, _ := disabled.Load(ctx); ok {
		t.Fatalf("disabled store should not load")
	}
}
