package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileAccountStore keeps the connected account in a local JSON file.
type FileAccountStore struct {
	Path string
}

type accountRecord struct {
	Key       string `json:"key"`
	Account   string `json:"account"`
	Wallet    string `json:"wallet,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// Load reads the saved account. A missing file is not an error.
func (s *FileAccountStore) Load(ctx context.Context) (SavedAccount, bool, error) {
	if s == nil || s.Path == "" {
		return SavedAccount{}, false, nil
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return SavedAccount{}, false, nil
		}
		return SavedAccount{}, false, fmt.Errorf("stat session: %w", err)
	}
	if stat.IsDir() {
		return SavedAccount{}, false, fmt.Errorf("session path is a directory")
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return SavedAccount{}, false, fmt.Errorf("read session: %w", err)
	}

	var rec accountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return SavedAccount{}, false, fmt.Errorf("parse session: %w", err)
	}
	if rec.Account == "" {
		return SavedAccount{}, false, nil
	}
	return SavedAccount{Account: rec.Account, Wallet: rec.Wallet}, true, nil
}

// Save replaces the file atomically.
func (s *FileAccountStore) Save(ctx context.Context, saved SavedAccount) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	rec := accountRecord{
		Key:       ConnectedAccountKey,
		Account:   saved.Account,
		Wallet:    saved.Wallet,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}

// Clear removes the file. Clearing twice is fine.
func (s *FileAccountStore) Clear(ctx context.Context) error {
	if s == nil || s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryAccountStore is an in-process AccountStore.
type MemoryAccountStore struct {
	mu    sync.Mutex
	saved SavedAccount
}

// Load returns the saved account, if any.
func (s *MemoryAccountStore) Load(ctx context.Context) (SavedAccount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, s.saved.Account != "", nil
}

// Save replaces the saved account.
func (s *MemoryAccountStore) Save(ctx context.Context, saved SavedAccount) error {
	s.mu.Lock()
	s.saved = saved
	s.mu.Unlock()
	return nil
}

// Clear forgets the saved account.
func (s *MemoryAccountStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.saved = SavedAccount{}
	s.mu.Unlock()
	return nil
}
