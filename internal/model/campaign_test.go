package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestCampaignProgressDerived(t *testing.T) {
	c := Campaign{FundingGoal: "2.8", AmountRaised: "2.1"}
	if got := c.Progress(); math.Abs(got-75) > 1e-9 {
		t.Fatalf("expected 75, got %v", got)
	}

	c.AmountRaised = "9"
	if got := c.Progress(); got != 100 {
		t.Fatalf("expected clamp at 100, got %v", got)
	}
}

func TestCampaignCanWithdraw(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	creator := "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199"

	c := Campaign{
		Creator:      creator,
		FundingGoal:  "5",
		AmountRaised: "1.5",
		Deadline:     now.Add(-time.Hour),
	}

	if !c.CanWithdraw("0x8626F6940E2EB28930EFB4CEF49B2D1F2C9C1199", now) {
		t.Fatalf("creator should withdraw after deadline")
	}
	if c.CanWithdraw("0x1234567890123456789012345678901234567890", now) {
		t.Fatalf("non-creator must not withdraw")
	}

	open := c
	open.Deadline = now.Add(48 * time.Hour)
	if open.CanWithdraw(creator, now) {
		t.Fatalf("running campaign must not withdraw")
	}
	open.IsClosed = true
	if !open.CanWithdraw(creator, now) {
		t.Fatalf("closed campaign should withdraw")
	}

	empty := c
	empty.AmountRaised = "0.0"
	if empty.CanWithdraw(creator, now) {
		t.Fatalf("nothing raised, nothing to withdraw")
	}
}

func TestCampaignJSONIncludesProgress(t *testing.T) {
	c := Campaign{
		ID:           2,
		Creator:      "0x1234567890123456789012345678901234567890",
		Title:        "Community Learning Center",
		FundingGoal:  "2.8",
		AmountRaised: "2.1",
		Deadline:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["progress"] != float64(75) {
		t.Fatalf("progress missing or wrong: %v", raw["progress"])
	}
	if raw["funding_goal"] != "2.8" {
		t.Fatalf("funding goal mismatch: %v", raw["funding_goal"])
	}

	var decoded Campaign
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ID != c.ID || decoded.Title != c.Title || !decoded.Deadline.Equal(c.Deadline) {
		t.Fatalf("decoded mismatch: %+v", decoded)
	}
}

func TestSessionCloneIsIndependent(t *testing.T) {
	s := Session{Campaigns: []Campaign{{ID: 1}}}
	clone := s.Clone()
	clone.Campaigns[0].ID = 99
	if s.Campaigns[0].ID != 1 {
		t.Fatalf("clone shares backing array")
	}
}
