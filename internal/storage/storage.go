package storage

import (
	"context"

	"crowdfundChain/internal/model"
)

// ConnectedAccountKey is the fixed key the last connected account is stored under.
const ConnectedAccountKey = "connectedAccount"

// SavedAccount is the persisted part of a wallet session.
type SavedAccount struct {
	Account string
	Wallet  string
}

// AccountStore persists the last connected account across runs.
type AccountStore interface {
	Load(ctx context.Context) (SavedAccount, bool, error)
	Save(ctx context.Context, saved SavedAccount) error
	Clear(ctx context.Context) error
}

// CampaignSink receives campaign snapshots.
type CampaignSink interface {
	PutCampaigns(ctx context.Context, campaigns []model.Campaign) error
}

// ActivitySink receives decoded contract activity.
type ActivitySink interface {
	PutActivity(ctx context.Context, records []model.ActivityRecord) error
}
