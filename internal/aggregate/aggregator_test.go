package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/model"
)

const (
	creator = "0x1234567890123456789012345678901234567890"
	alice   = "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199"
	bob     = "0x9876543210987654321098765432109876543210"
)

func sampleRecords() []model.ActivityRecord {
	return []model.ActivityRecord{
		{ChainID: 1, CampaignID: 2, BlockNumber: 10, Timestamp: 100, Event: contract.EventCampaignCreated, Account: creator, Amount: "2.0", Title: "Solar Panels"},
		{ChainID: 1, CampaignID: 2, BlockNumber: 12, Timestamp: 120, Event: contract.EventContributionMade, Account: alice, Amount: "0.5"},
		{ChainID: 1, CampaignID: 2, BlockNumber: 13, Timestamp: 130, Event: contract.EventContributionMade, Account: "0x8626F6940E2EB28930EFB4CEF49B2D1F2C9C1199", Amount: "0.25"},
		{ChainID: 1, CampaignID: 2, BlockNumber: 15, Timestamp: 150, Event: contract.EventContributionMade, Account: bob, Amount: "1.25"},
		{ChainID: 1, CampaignID: 1, BlockNumber: 20, Timestamp: 200, Event: contract.EventContributionMade, Account: bob, Amount: "1"},
		{ChainID: 1, CampaignID: 2, BlockNumber: 30, Timestamp: 300, Event: contract.EventFundsWithdrawn, Account: creator, Amount: "2.0"},
	}
}

func TestAggregatorSummaries(t *testing.T) {
	agg := NewAggregator(nil)
	if err := agg.Add(sampleRecords()); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := agg.Summaries()
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].CampaignID != 1 || got[1].CampaignID != 2 {
		t.Fatalf("unexpected order: %d, %d", got[0].CampaignID, got[1].CampaignID)
	}

	first := got[0]
	if first.FundingGoal != "" || first.Progress != 0 {
		t.Fatalf("campaign without creation event should have no goal: %+v", first)
	}
	if first.Contributed != "1.0" || first.Contributors != 1 {
		t.Fatalf("unexpected campaign 1 totals: %+v", first)
	}

	s := got[1]
	if s.Title != "Solar Panels" || s.Creator != creator {
		t.Fatalf("unexpected metadata: %+v", s)
	}
	if s.Contributed != "2.0" || s.Withdrawn != "2.0" {
		t.Fatalf("unexpected amounts: contributed=%s withdrawn=%s", s.Contributed, s.Withdrawn)
	}
	if s.Contributions != 3 || s.Contributors != 2 {
		t.Fatalf("expected 3 contributions from 2 backers, got %d/%d", s.Contributions, s.Contributors)
	}
	if s.Progress != 100 {
		t.Fatalf("expected 100 progress, got %v", s.Progress)
	}
	if s.FirstBlock != 10 || s.LastBlock != 30 {
		t.Fatalf("unexpected block span %d-%d", s.FirstBlock, s.LastBlock)
	}
}

func TestAggregatorRejectsBadAmount(t *testing.T) {
	agg := NewAggregator(nil)
	err := agg.Add([]model.ActivityRecord{{CampaignID: 1, Event: contract.EventContributionMade, Amount: "lots"}})
	if err == nil {
		t.Fatalf("expected amount error")
	}
}

func TestAggregatorReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.jsonl")
	content := `{"chain_id":1,"block_number":10,"event":"CampaignCreated","campaign_id":3,"account":"` + creator + `","amount":"4.0","title":"Library","timestamp":100}

not json
{"chain_id":1,"block_number":11,"event":"ContributionMade","campaign_id":3,"account":"` + alice + `","amount":"1.0","timestamp":110}
{"chain_id":1,"block_number":12,"event":"ContributionMade","campaign_id":3,"account":"` + bob + `","amount":"bad","timestamp":120}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	agg := NewAggregator(nil)
	if err := agg.ReadFile(context.Background(), path); err != nil {
		t.Fatalf("read file: %v", err)
	}
	got := agg.Summaries()
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if got[0].Contributed != "1.0" || got[0].Contributions != 1 || got[0].Progress != 25 {
		t.Fatalf("unexpected summary: %+v", got[0])
	}
}

func TestAggregatorReadMissingFile(t *testing.T) {
	agg := NewAggregator(nil)
	if err := agg.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl")); err != nil {
		t.Fatalf("missing file should be empty: %v", err)
	}
	if got := agg.Summaries(); len(got) != 0 {
		t.Fatalf("expected no summaries, got %d", len(got))
	}
}
