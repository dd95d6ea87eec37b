package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/core/token"
)

var ErrNoToken = errors.New("session: no token stored")

// Store is the session owner. It is safe for concurrent use.
type Store struct {
	kv       ports.KeyValueStore
	log      zerolog.Logger
	validate *validator.Validate

	mu       sync.RWMutex
	identity *domain.Identity
	loaded   bool
}

var _ ports.TokenSource = (*Store)(nil)

func NewStore(kv ports.KeyValueStore, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log, validate: validator.New()}
}

// Initialize rehydrates the identity from storage. A corrupted identity blob
// or storage reporting domain.ErrCorruptStorage is discarded together with
// the token and the session starts unauthenticated; only other storage
// failures are returned. The loaded flag is
// set after the first attempt whatever its outcome.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loaded = true }()

	s.identity = nil

	raw, hasUser, err := s.kv.Get(ctx, domain.StorageKeyUserData)
	if errors.Is(err, domain.ErrCorruptStorage) {
		s.discard(ctx, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read identity: %w", err)
	}
	tok, hasToken, err := s.kv.Get(ctx, domain.StorageKeyAuthToken)
	if errors.Is(err, domain.ErrCorruptStorage) {
		s.discard(ctx, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read token: %w", err)
	}
	if !hasUser || raw == "" || !hasToken || tok == "" {
		return nil
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		s.discard(ctx, err)
		return nil
	}

	s.identity = &id
	s.log.Debug().Str("user_id", id.ID).Str("role", string(id.Role)).Msg("session restored")
	return nil
}

// Login replaces the current session. The token is written when non-empty;
// otherwise any previously stored token is removed. When the token cannot be
// written the previous session stays in place.
func (s *Store) Login(ctx context.Context, identity domain.Identity, tok string) error {
	if err := s.validate.Struct(identity); err != nil {
		return fmt.Errorf("session: invalid identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	persisted, err := s.persist(ctx, identity)
	if err != nil {
		return err
	}
	if tok != "" {
		err = s.kv.Set(ctx, domain.StorageKeyAuthToken, tok)
	} else {
		err = s.kv.Remove(ctx, domain.StorageKeyAuthToken)
	}
	if err != nil {
		s.restoreIdentity(ctx)
		return fmt.Errorf("session: write token: %w", err)
	}

	s.identity = persisted
	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("logged in")
	return nil
}

// Logout forgets the current session. Calling it without a session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	return s.removeAll(ctx)
}

// UpdateIdentity shallow-merges patch into the current identity and persists
// the result. Without a session it does nothing. On a persistence failure the
// in-memory identity is left as it was.
func (s *Store) UpdateIdentity(ctx context.Context, patch domain.IdentityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return nil
	}

	merged, err := s.identity.Merge(patch)
	if err != nil {
		return fmt.Errorf("session: merge identity: %w", err)
	}
	if err := s.validate.Struct(merged); err != nil {
		return fmt.Errorf("session: invalid identity: %w", err)
	}

	persisted, err := s.persist(ctx, merged)
	if err != nil {
		return err
	}
	s.identity = persisted
	return nil
}

// Token reads the stored bearer token.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	tok, ok, err := s.kv.Get(ctx, domain.StorageKeyAuthToken)
	if err != nil {
		return "", false, fmt.Errorf("session: read token: %w", err)
	}
	if !ok || tok == "" {
		return "", false, nil
	}
	return tok, true, nil
}

// Claims decodes, without verifying, the claims of the stored token.
func (s *Store) Claims(ctx context.Context) (*token.Claims, error) {
	tok, ok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoToken
	}
	return token.Inspect(tok)
}

// Identity returns a copy of the current identity.
func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return cloneIdentity(*s.identity), true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Loaded reports whether Initialize has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// persist writes identity and returns the in-memory copy decoded from the
// exact bytes written.
func (s *Store) persist(ctx context.Context, identity domain.Identity) (*domain.Identity, error) {
	data, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("session: encode identity: %w", err)
	}
	if err := s.kv.Set(ctx, domain.StorageKeyUserData, string(data)); err != nil {
		return nil, fmt.Errorf("session: write identity: %w", err)
	}
	var stored domain.Identity
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("session: decode identity: %w", err)
	}
	return &stored, nil
}

// restoreIdentity puts the stored identity back in line with memory after a
// partial write. If that fails too, the session is dropped in both places.
func (s *Store) restoreIdentity(ctx context.Context) {
	var err error
	if s.identity != nil {
		_, err = s.persist(ctx, *s.identity)
	} else {
		err = s.kv.Remove(ctx, domain.StorageKeyUserData)
	}
	if err == nil {
		return
	}
	s.log.Error().Err(err).Msg("failed to restore previous session; logging out")
	s.identity = nil
	if rmErr := s.removeAll(ctx); rmErr != nil {
		s.log.Error().Err(rmErr).Msg("failed to clear session")
	}
}

// discard drops undecodable stored state so the session starts logged out.
func (s *Store) discard(ctx context.Context, cause error) {
	s.log.Warn().Err(cause).Msg("discarding corrupted stored session")
	if err := s.removeAll(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear corrupted session")
	}
}

func (s *Store) removeAll(ctx context.Context) error {
	return errors.Join(
		s.kv.Remove(ctx, domain.StorageKeyUserData),
		s.kv.Remove(ctx, domain.StorageKeyAuthToken),
	)
}

func cloneIdentity(id domain.Identity) domain.Identity {
	if id.Extra == nil {
		return id
	}
	extra := make(map[string]json.RawMessage, len(id.Extra))
	for k, v := range id.Extra {
		extra[k] = append(json.RawMessage(nil), v...)
	}
	id.Extra = extra
	return id
}
