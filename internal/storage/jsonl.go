package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crowdfundChain/internal/model"
)

// JsonlStorage appends records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutCampaigns appends campaign snapshots as JSON lines.
func (s *JsonlStorage) PutCampaigns(ctx context.Context, campaigns []model.Campaign) error {
	items := make([]interface{}, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, c)
	}
	return s.append(items)
}

// PutActivity appends activity records as JSON lines.
func (s *JsonlStorage) PutActivity(ctx context.Context, records []model.ActivityRecord) error {
	items := make([]interface{}, 0, len(records))
	for _, r := range records {
		items = append(items, r)
	}
	return s.append(items)
}

func (s *JsonlStorage) append(items []interface{}) error {
	if len(items) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
