package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autox/marketplace-client/internal/core/domain"
)

func TestKeyValueStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewKeyValueStore(path)

	_, ok, err := s.Get(ctx, "autox_auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "autox_auth_token", "tok"))
	v, ok, err := s.Get(ctx, "autox_auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Remove(ctx, "autox_auth_token"))
	require.NoError(t, s.Remove(ctx, "autox_auth_token"))
	_, ok, err = s.Get(ctx, "autox_auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyValueStore_SharedFileSeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	a := NewKeyValueStore(path)
	b := NewKeyValueStore(path)

	require.NoError(t, a.Set(ctx, "k", "from-a"))
	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-a", v)
}

func TestKeyValueStore_CorruptedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
	s := NewKeyValueStore(path)

	_, _, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrCorruptStorage)

	require.NoError(t, s.Set(ctx, "k", "fresh"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestKeyValueStore_RemoveRewritesCorruptedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
	s := NewKeyValueStore(path)

	require.NoError(t, s.Remove(ctx, "absent"))
	_, ok, err := s.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyValueStore_ConcurrentWritersLeaveNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate stores share only the file, like separate processes.
			assert.NoError(t, NewKeyValueStore(path).Set(ctx, "k", fmt.Sprintf("v%d", i)))
		}()
	}
	wg.Wait()

	_, ok, err := NewKeyValueStore(path).Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())
}
