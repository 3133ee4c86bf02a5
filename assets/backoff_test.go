package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawLoader struct{}

func (rawLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (rawLoader) Release(any) {}

func TestProbeBackoffExhaustion(t *testing.T) {
	root := t.TempDir()
	registry := NewRegistry()
	RegisterLoader[string](registry, rawLoader{})

	cache := NewCache(root, registry)

	var slept []time.Duration
	cache.sleep = func(d time.Duration) { slept = append(slept, d) }

	path := filepath.Join(root, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	_, err := TryGet[string](cache, "gone.txt")
	require.NoError(t, err)

	// Remove the backing file: every open probe now fails.
	require.NoError(t, os.Remove(path))

	ok := cache.Reload("gone.txt")

	assert.False(t, ok, "exhausted probes must leave the change unobserved")
	assert.Len(t, slept, reloadAttempts-1)
	for i, d := range slept {
		assert.Equal(t, reloadBackoff*time.Duration(i+1), d, "backoff must grow per attempt")
	}

	// The stale value stays in place.
	value, err := TryGet[string](cache, "gone.txt")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)
}

func TestProbeRecoversOnLaterAttempt(t *testing.T) {
	root := t.TempDir()
	registry := NewRegistry()
	RegisterLoader[string](registry, rawLoader{})

	cache := NewCache(root, registry)

	path := filepath.Join(root, "flaky.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	_, err := TryGet[string](cache, "flaky.txt")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	// Restore the file after the second failed probe, as a concurrent
	// writer finishing would.
	attempts := 0
	cache.sleep = func(time.Duration) {
		attempts++
		if attempts == 2 {
			require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
		}
	}

	assert.True(t, cache.Reload("flaky.txt"))

	value, err := TryGet[string](cache, "flaky.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}
