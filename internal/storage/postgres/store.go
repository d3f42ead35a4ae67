package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crowdfundChain/internal/model"
	"crowdfundChain/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for sessions, snapshots and activity.
type Store struct {
	pool     *pgxpool.Pool
	contract string
}

func NewStore(ctx context.Context, dsn, contractAddress string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, contract: contractAddress}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables used by the store.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// LoadAccount returns the account stored under name.
func (s *Store) LoadAccount(ctx context.Context, name string) (storage.SavedAccount, bool, error) {
	if name == "" {
		return storage.SavedAccount{}, false, fmt.Errorf("session name required")
	}
	var saved storage.SavedAccount
	row := s.pool.QueryRow(ctx, `SELECT account, wallet FROM wallet_session WHERE name=$1`, name)
	if err := row.Scan(&saved.Account, &saved.Wallet); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.SavedAccount{}, false, nil
		}
		return storage.SavedAccount{}, false, err
	}
	return saved, true, nil
}

// SaveAccount upserts the account stored under name.
func (s *Store) SaveAccount(ctx context.Context, name string, saved storage.SavedAccount) error {
	if name == "" {
		return fmt.Errorf("session name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wallet_session (name, account, wallet, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET account = EXCLUDED.account, wallet = EXCLUDED.wallet, updated_at = now()
	`, name, saved.Account, saved.Wallet)
	return err
}

// ClearAccount deletes the account stored under name.
func (s *Store) ClearAccount(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM wallet_session WHERE name=$1`, name)
	return err
}

// PutCampaigns upserts campaign snapshots.
func (s *Store) PutCampaigns(ctx context.Context, campaigns []model.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range campaigns {
		batch.Queue(`
			INSERT INTO campaigns (
				contract_address, campaign_id, creator, title, description,
				funding_goal, amount_raised, deadline, is_closed, progress, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (contract_address, campaign_id)
			DO UPDATE SET
				creator = EXCLUDED.creator,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				funding_goal = EXCLUDED.funding_goal,
				amount_raised = EXCLUDED.amount_raised,
				deadline = EXCLUDED.deadline,
				is_closed = EXCLUDED.is_closed,
				progress = EXCLUDED.progress,
				updated_at = now()
		`,
			s.contract,
			int64(c.ID),
			c.Creator,
			c.Title,
			c.Description,
			c.FundingGoal,
			c.AmountRaised,
			c.Deadline,
			c.IsClosed,
			c.Progress(),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range campaigns {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutActivity inserts activity records, ignoring ones already stored.
func (s *Store) PutActivity(ctx context.Context, records []model.ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		var amount *string
		if r.Amount != "" {
			a := r.Amount
			amount = &a
		}
		batch.Queue(`
			INSERT INTO campaign_activity (
				chain_id, tx_hash, log_index, block_number, event, campaign_id,
				account, amount, title, block_ts, ingested_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
			ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING
		`,
			int64(r.ChainID),
			r.TxHash,
			int64(r.LogIndex),
			int64(r.BlockNumber),
			r.Event,
			int64(r.CampaignID),
			r.Account,
			amount,
			r.Title,
			int64(r.Timestamp),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the last processed block for name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts the last processed block for name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

// AccountStore adapts Store to storage.AccountStore.
type AccountStore struct {
	Store *Store
	Name  string
}

var _ storage.AccountStore = (*AccountStore)(nil)

// Load returns the account saved under the store's key.
func (a *AccountStore) Load(ctx context.Context) (storage.SavedAccount, bool, error) {
	if a == nil || a.Store == nil {
		return storage.SavedAccount{}, false, nil
	}
	return a.Store.LoadAccount(ctx, a.key())
}

// Save upserts the account under the store's key.
func (a *AccountStore) Save(ctx context.Context, saved storage.SavedAccount) error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.SaveAccount(ctx, a.key(), saved)
}

// Clear deletes the row under the store's key.
func (a *AccountStore) Clear(ctx context.Context) error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.ClearAccount(ctx, a.key())
}

func (a *AccountStore) key() string {
	if a.Name == "" {
		return storage.ConnectedAccountKey
	}
	return a.Name
}
