package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Gauravv801/QA-Eval/pkg/observability"
)

// FileStore keeps one JSON file per run under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store's base directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, run *Run) error {
	start := time.Now()
	err := s.save(run)
	observability.History().OnSave(ctx, "file", time.Since(start), err)
	return err
}

func (s *FileStore) save(run *Run) error {
	raw, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	tmp := s.path(run.ID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing run: %w", err)
	}
	if err := os.Rename(tmp, s.path(run.ID)); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	run, err := s.load(id)
	observability.History().OnLoad(ctx, "file", err == nil, time.Since(start))
	return run, err
}

func (s *FileStore) load(id string) (*Run, error) {
	raw, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", id, err)
	}
	return &run, nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context, limit int) ([]*Run, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	var runs []*Run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		run, err := s.load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// Skip unreadable entries instead of failing the listing.
			continue
		}
		run.Report = ""
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing run: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close(context.Context) error { return nil }
