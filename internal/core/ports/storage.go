package ports

import "context"

// KeyValueStore is the durable string key-value storage the session is
// persisted to. Get reports ok=false for a missing key; Remove of a missing
// key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// TokenSource yields the bearer token for authorized requests. ok=false
// means no token is stored.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool, err error)
}
