// pattern: Imperative Shell

package logging

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

var errSinkClosed = errors.New("write to closed channel sink")

// ChannelSink is the zapcore.WriteSyncer behind the TUI log panel. Each JSON
// line becomes a LogEntry on a bounded channel; a full channel loses its
// oldest entry, and the loss is counted.
type ChannelSink struct {
	entries chan LogEntry
	dropped atomic.Uint64
	mu      sync.Mutex
	closed  bool
}

// NewChannelSink creates a sink holding up to bufferSize unread entries.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{entries: make(chan LogEntry, bufferSize)}
}

func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, ok := decodeEntry(p)
	if !ok {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errSinkClosed
	}

	for {
		select {
		case s.entries <- entry:
			return len(p), nil
		default:
		}
		select {
		case <-s.entries:
			s.dropped.Add(1)
		default:
			// zero-capacity channel with no reader
			s.dropped.Add(1)
			return len(p), nil
		}
	}
}

func (s *ChannelSink) Sync() error { return nil }

// Close closes the entry channel. Later calls are no-ops.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// Dropped is the number of entries lost to a full channel.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

// reservedKeys are encoder keys that are not copied into LogEntry.Fields.
var reservedKeys = map[string]bool{
	"msg": true, "level": true, "logger": true, "ts": true, "caller": true, "stacktrace": true,
}

// decodeEntry reads one zap JSON line. Anything that is not a JSON object is
// rejected.
func decodeEntry(line []byte) (LogEntry, bool) {
	if !gjson.ValidBytes(line) {
		return LogEntry{}, false
	}
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Message:   doc.Get("msg").String(),
		Fields:    make(map[string]any),
	}
	if lvl := doc.Get("level"); lvl.Type == gjson.String {
		entry.Level = ParseLevel(lvl.Str)
	}
	if scope := doc.Get("logger"); scope.Type == gjson.String {
		entry.Scope = scope.Str
	}
	if ts := doc.Get("ts"); ts.Type == gjson.Number {
		sec := int64(ts.Num)
		entry.Timestamp = time.Unix(sec, int64((ts.Num-float64(sec))*1e9))
	}

	doc.ForEach(func(key, value gjson.Result) bool {
		if !reservedKeys[key.Str] {
			entry.Fields[key.Str] = value.Value()
		}
		return true
	})
	return entry, true
}
