// Package cache implements a best-effort, TTL-bounded, file-backed cache.
// Caching is an optimization, never a correctness dependency: expired,
// unreadable, or corrupt entries are reported as misses, and write failures
// are swallowed. Concurrent processes sharing the cache directory need no
// coordination; any read inconsistency just costs a redundant fetch.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// FileCache stores one JSON file per key under a fixed directory.
type FileCache struct {
	dir string
	ttl time.Duration

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// envelope is the on-disk entry shape.
type envelope struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a cache rooted at dir. Entries older than ttl are treated as
// absent on read. The directory is created lazily on first write.
func New(dir string, ttl time.Duration) *FileCache {
	return &FileCache{dir: dir, ttl: ttl, Now: time.Now}
}

// Get returns the raw payload for key, or a miss. A miss is the only
// failure mode: missing files, unparseable entries, and entries past
// their TTL all report false.
func (c *FileCache) Get(key string) (json.RawMessage, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	captured, err := time.Parse(time.RFC3339, env.Timestamp)
	if err != nil {
		return nil, false
	}
	if c.Now().Sub(captured) > c.ttl {
		return nil, false
	}
	// A null payload round-trips as the literal "null", not as empty bytes.
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, false
	}
	return env.Data, true
}

// Put stores payload under key, stamped with the capture time. All I/O
// errors are swallowed.
func (c *FileCache) Put(key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	out, err := json.Marshal(envelope{
		Timestamp: c.Now().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.path(key), out, 0o644)
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}
