// Package session owns the identity of the currently logged-in user.
//
// A Store keeps the identity in memory and mirrors it, together with the
// bearer token, into a durable key-value store under the keys
// autox_user_data and autox_auth_token. It is the only component that writes
// those keys. The token is always read live from storage, so a Store can be
// used as the TokenSource of the gateway client before Initialize runs.
package session
