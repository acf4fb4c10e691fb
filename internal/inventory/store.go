// pattern: Imperative Shell

package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"projdex/internal/project"
)

const (
	snapshotFile = "cache.json"
	lockFile     = "cache.lock"
)

// Store persists the catalog snapshot as JSON in a data directory. Readers
// never observe a partial file; writers coordinate across processes through
// an advisory lock beside the snapshot.
type Store struct {
	dir  string
	lock *flock.Flock
}

// NewStore returns a store rooted at dir. Nothing is created until the
// first Save or Lock.
func NewStore(dir string) *Store {
	return &Store{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
	}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, snapshotFile)
}

// Load reads the snapshot. A missing file returns (nil, nil).
func (s *Store) Load() (*project.Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var snap project.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.Path(), err)
	}
	return &snap, nil
}

// Save writes snap atomically: a temp file in the same directory is synced
// and renamed over the snapshot.
func (s *Store) Save(snap *project.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	out := *snap
	if out.Projects == nil {
		out.Projects = []project.Project{}
	}
	out.Version = project.SnapshotVersion

	f, err := os.CreateTemp(s.dir, ".tmp-"+snapshotFile+"-")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	tmp := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync catalog: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// IsStale reports whether the last scan is older than maxAge at now. A
// missing or unreadable snapshot is always stale.
func (s *Store) IsStale(maxAge time.Duration, now time.Time) bool {
	snap, err := s.Load()
	if err != nil || snap == nil || snap.LastScan.IsZero() {
		return true
	}
	return now.Sub(snap.LastScan) > maxAge
}

// Clear deletes the snapshot. A missing snapshot is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear catalog: %w", err)
	}
	return nil
}

// Lock takes the cross-process lock, blocking until it is free. The returned
// func releases it.
func (s *Store) Lock() (func(), error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock catalog: %w", err)
	}
	return func() { _ = s.lock.Unlock() }, nil
}
