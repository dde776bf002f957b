package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New(t.TempDir(), time.Hour)
	c.Put("AAPL_options", map[string]string{"hello": "world"})

	raw, ok := c.Get("AAPL_options")
	require.True(t, ok)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "world", got["hello"])
}

func TestMissingKeyIsMiss(t *testing.T) {
	c := New(t.TempDir(), time.Hour)
	_, ok := c.Get("NOPE")
	assert.False(t, ok)
}

func TestTTLBoundary(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	c := New(t.TempDir(), time.Hour)

	// Entry captured 59 minutes ago: hit.
	c.Now = func() time.Time { return now.Add(-59 * time.Minute) }
	c.Put("fresh", 1)
	c.Now = func() time.Time { return now }
	_, ok := c.Get("fresh")
	assert.True(t, ok, "59-minute-old entry should be a hit")

	// Entry captured 61 minutes ago: miss, never stale-but-usable.
	c.Now = func() time.Time { return now.Add(-61 * time.Minute) }
	c.Put("stale", 1)
	c.Now = func() time.Time { return now }
	_, ok = c.Get("stale")
	assert.False(t, ok, "61-minute-old entry should be a miss")
}

func TestCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Hour)

	tests := map[string]string{
		"garbage":       `{{{{not json`,
		"wrong_shape":   `{"foo": "bar"}`,
		"bad_timestamp": `{"timestamp": "yesterday-ish", "data": {"a": 1}}`,
		"empty_data":    `{"timestamp": "2024-06-15T11:59:00Z", "data": null}`,
	}
	for key, body := range tests {
		require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte(body), 0o644))
		_, ok := c.Get(key)
		assert.False(t, ok, "key %q", key)
	}
}

func TestPutSwallowsWriteFailures(t *testing.T) {
	// Point at a path that cannot be a directory.
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	c := New(filepath.Join(file, "sub"), time.Hour)
	assert.NotPanics(t, func() { c.Put("k", 1) })
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestKeySanitization(t *testing.T) {
	c := New(t.TempDir(), time.Hour)
	c.Put("BRK.B/../../evil key", 42)

	raw, ok := c.Get("BRK.B/../../evil key")
	require.True(t, ok)
	var got int
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 42, got)
}

func TestFreshPutReplacesEntry(t *testing.T) {
	c := New(t.TempDir(), time.Hour)
	c.Put("k", "old")
	c.Put("k", "new")

	raw, ok := c.Get("k")
	require.True(t, ok)
	var got string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "new", got)
}
