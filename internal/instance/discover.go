// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/tidwall/gjson"
)

// ErrNotRunning is returned by Discover when no server holds the lock.
var ErrNotRunning = errors.New("no running projdex server found (start one with 'projdex serve')")

// Server describes a running `projdex serve`.
type Server struct {
	BaseURL   string // e.g. "http://127.0.0.1:41234"
	PID       int
	StartedAt time.Time
}

// Uptime is how long the server has been running as of now.
func (s Server) Uptime(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt).Truncate(time.Second)
}

// Discover finds the server running against dataDir and checks that it
// answers before returning it.
func Discover(dataDir string) (Server, error) {
	held, err := lockHeld(dataDir)
	if err != nil {
		return Server{}, err
	}
	if !held {
		return Server{}, ErrNotRunning
	}

	srv, err := readRecord(dataDir)
	if err != nil {
		return Server{}, fmt.Errorf("%w (try 'projdex cleanup')", err)
	}
	if err := NewClient(srv.BaseURL).Health(); err != nil {
		return Server{}, fmt.Errorf("projdex server (pid %d) not responding (try 'projdex cleanup'): %w", srv.PID, err)
	}
	return srv, nil
}

// lockHeld probes the server lock without keeping it.
func lockHeld(dataDir string) (bool, error) {
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check server lock: %w", err)
	case locked:
		_ = fl.Unlock()
		return false, nil
	}
	return true, nil
}

func readRecord(dataDir string) (Server, error) {
	data, err := os.ReadFile(recordPath(dataDir))
	if err != nil {
		return Server{}, fmt.Errorf("projdex server detected but its record is unreadable: %w", err)
	}
	addr := gjson.GetBytes(data, "addr")
	if addr.Type != gjson.String || addr.Str == "" {
		return Server{}, fmt.Errorf("projdex server record has no address")
	}
	return Server{
		BaseURL:   "http://" + addr.Str,
		PID:       int(gjson.GetBytes(data, "pid").Int()),
		StartedAt: gjson.GetBytes(data, "started_at").Time(),
	}, nil
}
