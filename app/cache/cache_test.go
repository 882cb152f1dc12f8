package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	assert.Equal(t, "app1-20240102_030405_006.jar", Key("app1", "jar", ts))

	// converted to utc
	loc := time.FixedZone("x", 3600)
	assert.Equal(t, "app1-20240102_030405_006.egg", Key("app1", "egg", ts.In(loc)))
}

func TestFiles_PutExistsPath(t *testing.T) {
	f, err := New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	key := Key("app1", "jar", time.Now())
	assert.False(t, f.Exists(key))

	require.NoError(t, f.Put(key, []byte("blah")))
	assert.True(t, f.Exists(key))

	data, err := os.ReadFile(f.Path(key))
	require.NoError(t, err)
	assert.Equal(t, "blah", string(data))

	// overwrite
	require.NoError(t, f.Put(key, []byte("blah2")))
	data, err = os.ReadFile(f.Path(key))
	require.NoError(t, err)
	assert.Equal(t, "blah2", string(data))

	entries, err := os.ReadDir(filepath.Join(f.location))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left")
}

func TestFiles_PutLocationRemoved(t *testing.T) {
	loc := filepath.Join(t.TempDir(), "cache")
	f, err := New(loc)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(loc))

	key := Key("app1", "jar", time.Now())
	require.NoError(t, f.Put(key, []byte("blah")))
	assert.True(t, f.Exists(key))
}

func TestFiles_PutInvalidKey(t *testing.T) {
	f, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, f.Put("../escape.jar", []byte("x")))
	assert.Error(t, f.Put("", []byte("x")))
	assert.False(t, f.Exists("../escape.jar"))
}

func TestFiles_PutConcurrent(t *testing.T) {
	f, err := New(t.TempDir())
	require.NoError(t, err)
	key := Key("app1", "jar", time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Put(key, []byte("same content")))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(f.Path(key))
	require.NoError(t, err)
	assert.Equal(t, "same content", string(data))
}

func TestFiles_Delete(t *testing.T) {
	f, err := New(t.TempDir())
	require.NoError(t, err)

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	keys := []string{
		Key("app", "jar", ts),
		Key("app", "egg", ts.Add(time.Hour)),
		Key("app-v2", "jar", ts),
		Key("other", "jar", ts),
	}
	for _, k := range keys {
		require.NoError(t, f.Put(k, []byte(k)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(f.location, "app-notes.txt"), []byte("x"), 0o600))

	require.NoError(t, f.Delete("app"))
	assert.False(t, f.Exists(keys[0]))
	assert.False(t, f.Exists(keys[1]))
	assert.True(t, f.Exists(keys[2]), "prefix-sharing name kept")
	assert.True(t, f.Exists(keys[3]))
	assert.True(t, f.Exists("app-notes.txt"), "non-key file kept")

	// nothing to delete is fine
	require.NoError(t, f.Delete("app"))
}
