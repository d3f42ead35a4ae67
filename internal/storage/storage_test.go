package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"crowdfundChain/internal/model"
)

func TestFileAccountStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &FileAccountStore{Path: filepath.Join(t.TempDir(), "state", "session.json")}

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	want := SavedAccount{Account: "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199", Wallet: "metamask"}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("load: %+v %v %v", got, ok, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatalf("account survived clear")
	}
}

func TestFileAccountStoreRejectsDirectory(t *testing.T) {
	store := &FileAccountStore{Path: t.TempDir()}
	if _, _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected error for directory path")
	}
}

func TestFileAccountStoreReadsLegacyRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"key":"connectedAccount","account":"0xabc"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok, err := (&FileAccountStore{Path: path}).Load(context.Background())
	if err != nil || !ok || got.Account != "0xabc" || got.Wallet != "" {
		t.Fatalf("load: %+v %v %v", got, ok, err)
	}
}

func TestMemoryAccountStore(t *testing.T) {
	ctx := context.Background()
	store := &MemoryAccountStore{}
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatalf("empty store reported an account")
	}
	_ = store.Save(ctx, SavedAccount{Account: "0xabc", Wallet: "keystore"})
	if got, ok, _ := store.Load(ctx); !ok || got.Wallet != "keystore" {
		t.Fatalf("load: %+v %v", got, ok)
	}
	_ = store.Clear(ctx)
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatalf("account survived clear")
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "campaigns.jsonl")
	s := NewJsonlStorage(path)
	ctx := context.Background()

	batch := []model.Campaign{
		{ID: 1, Title: "A", FundingGoal: "2", AmountRaised: "1", Deadline: time.Unix(1700000000, 0).UTC()},
		{ID: 2, Title: "B", FundingGoal: "1", AmountRaised: "1", Deadline: time.Unix(1700000000, 0).UTC()},
	}
	if err := s.PutCampaigns(ctx, batch); err != nil {
		t.Fatalf("put campaigns: %v", err)
	}
	if err := s.PutActivity(ctx, []model.ActivityRecord{{Event: "ContributionMade", CampaignID: 1}}); err != nil {
		t.Fatalf("put activity: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("bad line: %v", err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0]["progress"] != float64(50) {
		t.Fatalf("progress not encoded: %v", lines[0]["progress"])
	}
	if lines[2]["event"] != "ContributionMade" {
		t.Fatalf("activity line mismatch: %v", lines[2])
	}
}
