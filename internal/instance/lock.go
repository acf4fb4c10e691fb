// pattern: Imperative Shell
package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName   = "projdex.lock"
	recordFileName = "projdex.server.json"
)

// ErrServerRunning is returned by Acquire when another process holds the
// server lock for the same data directory.
var ErrServerRunning = errors.New("another projdex server is already running")

// record is what a running server publishes for Discover.
type record struct {
	Addr      string    `json:"addr"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// ServerLock is the right to run `projdex serve` against one data directory.
type ServerLock struct {
	dataDir string
	fl      *flock.Flock
}

// Acquire takes the server lock for dataDir, creating the directory first.
func Acquire(dataDir string) (*ServerLock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire server lock: %w", err)
	}
	if !locked {
		return nil, ErrServerRunning
	}
	return &ServerLock{dataDir: dataDir, fl: fl}, nil
}

// Publish writes the listen address, with this process's pid and start time,
// where Discover looks for it.
func (l *ServerLock) Publish(addr string) error {
	data, err := json.Marshal(record{Addr: addr, PID: os.Getpid(), StartedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	tmp := recordPath(l.dataDir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write server record: %w", err)
	}
	return os.Rename(tmp, recordPath(l.dataDir))
}

// Release removes the published record and unlocks. Safe on a nil lock.
func (l *ServerLock) Release() {
	if l == nil {
		return
	}
	_ = os.Remove(recordPath(l.dataDir))
	_ = l.fl.Unlock()
}

func recordPath(dataDir string) string {
	return filepath.Join(dataDir, recordFileName)
}
