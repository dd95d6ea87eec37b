package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/token"
	"github.com/autox/marketplace-client/internal/infrastructure/db/file"
	"github.com/autox/marketplace-client/internal/infrastructure/db/memory"
)

// failingKV wraps a memory store and fails Set for the configured key.
type failingKV struct {
	*memory.KeyValueStore
	failSet string
	failGet bool
}

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("storage offline")
	}
	return f.KeyValueStore.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if key == f.failSet {
		return errors.New("disk full")
	}
	return f.KeyValueStore.Set(ctx, key, value)
}

func sampleIdentity() domain.Identity {
	return domain.Identity{
		ID:    "u-100",
		Name:  "Kamal Perera",
		Email: "kamal@example.lk",
		Role:  domain.RoleVehicleOwner,
		Extra: map[string]json.RawMessage{
			"phone":    json.RawMessage(`"+94771234567"`),
			"district": json.RawMessage(`"Kandy"`),
		},
	}
}

func TestLogin_PersistsIdentityAndToken(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s := NewStore(kv, zerolog.Nop())

	require.NoError(t, s.Login(ctx, sampleIdentity(), "tok-abc"))

	tok, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", tok)

	raw, ok, _ := kv.Get(ctx, domain.StorageKeyUserData)
	require.True(t, ok)
	var decoded domain.Identity
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, sampleIdentity(), decoded)

	current, ok := s.Identity()
	require.True(t, ok)
	inMemory, err := json.Marshal(current)
	require.NoError(t, err)
	assert.Equal(t, raw, string(inMemory))
	assert.True(t, s.IsAuthenticated())
}

func TestLogin_WithoutTokenClearsStaleToken(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.NewKeyValueStore(), zerolog.Nop())

	require.NoError(t, s.Login(ctx, sampleIdentity(), "old"))
	require.NoError(t, s.Login(ctx, sampleIdentity(), ""))

	_, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, s.IsAuthenticated())
}

func TestLogin_OverwritesPreviousIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.NewKeyValueStore(), zerolog.Nop())

	require.NoError(t, s.Login(ctx, sampleIdentity(), "t1"))
	next := domain.Identity{ID: "u-2", Name: "Sunil", Role: domain.RoleConsumer}
	require.NoError(t, s.Login(ctx, next, "t2"))

	current, _ := s.Identity()
	assert.Equal(t, next, current)
	_, hasPhone := current.Field("phone")
	assert.False(t, hasPhone, "no merge with the previous session")
}

func TestLogin_RejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s := NewStore(kv, zerolog.Nop())

	err := s.Login(ctx, domain.Identity{ID: "x", Role: "guest"}, "tok")
	require.Error(t, err)
	assert.Empty(t, kv.Snapshot())
	assert.False(t, s.IsAuthenticated())
}

func TestLogin_RejectsMissingRole(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s := NewStore(kv, zerolog.Nop())

	err := s.Login(ctx, domain.Identity{ID: "x", Name: "No Role"}, "tok")
	require.Error(t, err)
	assert.Empty(t, kv.Snapshot())
	assert.False(t, s.IsAuthenticated())
}

func TestLogin_TokenWriteFailureKeepsPreviousSession(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KeyValueStore: memory.NewKeyValueStore()}
	s := NewStore(kv, zerolog.Nop())
	require.NoError(t, s.Login(ctx, sampleIdentity(), "old-token"))

	kv.failSet = domain.StorageKeyAuthToken
	err := s.Login(ctx, domain.Identity{ID: "u-NEW", Name: "Sunil", Role: domain.RoleConsumer}, "new-token")
	require.Error(t, err)

	current, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "u-100", current.ID)

	restored := NewStore(kv, zerolog.Nop())
	require.NoError(t, restored.Initialize(ctx))
	stored, ok := restored.Identity()
	require.True(t, ok)
	assert.Equal(t, "u-100", stored.ID)
	tok, _, err := restored.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old-token", tok)
}

func TestLogin_TokenWriteFailureWithoutPreviousSession(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KeyValueStore: memory.NewKeyValueStore(), failSet: domain.StorageKeyAuthToken}
	s := NewStore(kv, zerolog.Nop())

	require.Error(t, s.Login(ctx, sampleIdentity(), "tok"))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, kv.Snapshot())
}

func TestLogout_ClearsStorageAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s := NewStore(kv, zerolog.Nop())

	require.NoError(t, s.Login(ctx, sampleIdentity(), "tok"))
	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	_, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())

	fresh := NewStore(kv, zerolog.Nop())
	require.NoError(t, fresh.Initialize(ctx))
	assert.False(t, fresh.IsAuthenticated())
	assert.True(t, fresh.Loaded())
}

func TestInitialize_RestoresSession(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	require.NoError(t, NewStore(kv, zerolog.Nop()).Login(ctx, sampleIdentity(), "tok"))

	s := NewStore(kv, zerolog.Nop())
	assert.False(t, s.Loaded())
	require.NoError(t, s.Initialize(ctx))

	assert.True(t, s.Loaded())
	current, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, sampleIdentity(), current)
}

func TestInitialize_IdentityWithoutTokenStaysLoggedOut(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	raw, _ := json.Marshal(sampleIdentity())
	require.NoError(t, kv.Set(ctx, domain.StorageKeyUserData, string(raw)))

	s := NewStore(kv, zerolog.Nop())
	require.NoError(t, s.Initialize(ctx))

	assert.False(t, s.IsAuthenticated())
	_, stillThere, _ := kv.Get(ctx, domain.StorageKeyUserData)
	assert.True(t, stillThere)
}

func TestInitialize_CorruptedIdentityIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	require.NoError(t, kv.Set(ctx, domain.StorageKeyUserData, "{not json"))
	require.NoError(t, kv.Set(ctx, domain.StorageKeyAuthToken, "tok"))

	s := NewStore(kv, zerolog.Nop())
	require.NoError(t, s.Initialize(ctx))

	assert.True(t, s.Loaded())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, kv.Snapshot())
}

func TestInitialize_CorruptedSessionFileRecovers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := NewStore(file.NewKeyValueStore(path), zerolog.Nop())

	require.NoError(t, s.Initialize(ctx))
	assert.True(t, s.Loaded())
	assert.False(t, s.IsAuthenticated())
	_, ok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Login(ctx, sampleIdentity(), "tok"))
	require.NoError(t, s.Logout(ctx))
}

func TestInitialize_StorageFailureStillMarksLoaded(t *testing.T) {
	kv := &failingKV{KeyValueStore: memory.NewKeyValueStore(), failGet: true}
	s := NewStore(kv, zerolog.Nop())

	err := s.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, s.Loaded())
	assert.False(t, s.IsAuthenticated())
}

func TestUpdateIdentity_WithoutSessionIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s := NewStore(kv, zerolog.Nop())

	require.NoError(t, s.UpdateIdentity(ctx, domain.IdentityPatch{"name": "Ghost"}))

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, kv.Snapshot())
}

func TestUpdateIdentity_ChangesOnlyPatchedField(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	s := NewStore(kv, zerolog.Nop())
	require.NoError(t, s.Login(ctx, sampleIdentity(), "tok"))

	require.NoError(t, s.UpdateIdentity(ctx, domain.IdentityPatch{"district": "Galle"}))

	want := sampleIdentity()
	want.Extra["district"] = json.RawMessage(`"Galle"`)
	current, _ := s.Identity()
	assert.Equal(t, want, current)

	tok, _, _ := s.Token(ctx)
	assert.Equal(t, "tok", tok)

	reloaded := NewStore(kv, zerolog.Nop())
	require.NoError(t, reloaded.Initialize(ctx))
	persisted, _ := reloaded.Identity()
	assert.Equal(t, want, persisted)
}

func TestUpdateIdentity_PersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KeyValueStore: memory.NewKeyValueStore()}
	s := NewStore(kv, zerolog.Nop())
	require.NoError(t, s.Login(ctx, sampleIdentity(), "tok"))

	kv.failSet = domain.StorageKeyUserData
	err := s.UpdateIdentity(ctx, domain.IdentityPatch{"name": "Changed"})
	require.Error(t, err)

	current, _ := s.Identity()
	assert.Equal(t, "Kamal Perera", current.Name)
}

func TestIdentity_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.NewKeyValueStore(), zerolog.Nop())
	require.NoError(t, s.Login(ctx, sampleIdentity(), "tok"))

	got, _ := s.Identity()
	got.Extra["phone"] = json.RawMessage(`"tampered"`)

	again, _ := s.Identity()
	assert.JSONEq(t, `"+94771234567"`, string(again.Extra["phone"]))
}

func TestToken_DoesNotNeedInitialize(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKeyValueStore()
	require.NoError(t, kv.Set(ctx, domain.StorageKeyAuthToken, "live"))

	tok, ok, err := NewStore(kv, zerolog.Nop()).Token(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "live", tok)
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.NewKeyValueStore(), zerolog.Nop())

	_, err := s.Claims(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	signed, err := token.Issue("secret", token.Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, domain.Identity{ID: "u-1", Role: domain.RoleAdmin}, signed))

	claims, err := s.Claims(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.False(t, claims.Expired(time.Now()))
}
