package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/gateway"
	"github.com/autox/marketplace-client/internal/mock"
	"github.com/autox/marketplace-client/internal/pkg/config"
	"github.com/autox/marketplace-client/pkg/logger"
)

func newCLIEnv(t *testing.T) map[string]string {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.LoadFrom(ctx, map[string]string{"LOGIN_BURST": "50"})
	require.NoError(t, err)
	b, err := mock.New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(b.Echo)
	t.Cleanup(func() {
		srv.Close()
		_ = b.Close(context.Background())
	})

	return map[string]string{
		"AUTOX_API_URL":   srv.URL + "/api",
		"STORAGE_BACKEND": "file",
		"STORAGE_PATH":    filepath.Join(t.TempDir(), "session.json"),
		"LOG_LEVEL":       "error",
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(env map[string]string, args ...string) result {
	var out, errOut bytes.Buffer
	app := &App{Env: env, Out: &out, Err: &errOut}
	err := Execute(context.Background(), app, append([]string{"--no-color"}, args...))
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestCLI_SessionLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	res := run(env, "register", "--name", "Kamal Perera", "--email", "kamal@example.lk",
		"--password", "secret1", "--role", "vehicle_owner", "--district", "Kandy")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "[OK] Signed in as kamal@example.lk (vehicle_owner)")

	var identity domain.Identity
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &identity))
	assert.Equal(t, domain.RoleVehicleOwner, identity.Role)

	res = run(env, "whoami")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, `"email": "kamal@example.lk"`)
	assert.Contains(t, res.stderr, "Token valid until")

	res = run(env, "profile", "update", "--set", "district=Galle")
	require.NoError(t, res.err, res.stderr)
	res = run(env, "whoami")
	assert.Contains(t, res.stdout, `"district": "Galle"`)

	res = run(env, "logout")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "[OK] Logged out")

	res = run(env, "whoami")
	assert.True(t, errors.Is(res.err, errNotLoggedIn))
	assert.Contains(t, res.stderr, "[ERROR] not logged in")
	assert.Contains(t, res.stderr, "autox login")

	res = run(env, "login", "--email", "kamal@example.lk", "--password", "secret1")
	require.NoError(t, res.err, res.stderr)
	res = run(env, "password", "change", "--current", "secret1", "--new", "secret2")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Password changed successfully")
}

func TestCLI_LoginFailureReportsStatus(t *testing.T) {
	env := newCLIEnv(t)

	res := run(env, "login", "--email", "ghost@example.lk", "--password", "nope")
	var re *gateway.RequestError
	require.True(t, errors.As(res.err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.StatusCode)
	assert.Contains(t, res.stderr, "(HTTP 401)")
	assert.Empty(t, res.stdout)
}

func TestCLI_ListingsAndRequests(t *testing.T) {
	env := newCLIEnv(t)

	res := run(env, "vehicles", "categories")
	require.NoError(t, res.err, res.stderr)
	var cats []string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &cats))
	assert.Equal(t, domain.VehicleCategories, cats)

	res = run(env, "vehicles", "list", "--filter", "district=Kandy", "--limit", "5")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, `"limit": 5`)

	res = run(env, "requests", "list")
	assert.True(t, errors.Is(res.err, errNotLoggedIn))

	res = run(env, "vehicles", "list", "--filter", "broken")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid key=value")
}

func TestCLI_UploadDocuments(t *testing.T) {
	env := newCLIEnv(t)
	res := run(env, "register", "--name", "Ruwan", "--email", "ruwan@example.lk", "--password", "secret1")
	require.NoError(t, res.err, res.stderr)

	dir := t.TempDir()
	doc := filepath.Join(dir, "licence.txt")
	require.NoError(t, os.WriteFile(doc, []byte("driving licence"), 0o600))

	res = run(env, "upload", "documents", doc)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "licence.txt")

	res = run(env, "upload", "documents", filepath.Join(dir, "missing.pdf"))
	require.Error(t, res.err)
}

func TestCLI_RecoversFromCorruptSessionFile(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.WriteFile(env["STORAGE_PATH"], []byte("{not json"), 0o600))

	res := run(env, "whoami")
	assert.True(t, errors.Is(res.err, errNotLoggedIn))

	res = run(env, "register", "--name", "Nimal", "--email", "nimal@example.lk", "--password", "secret1")
	require.NoError(t, res.err, res.stderr)
	res = run(env, "logout")
	require.NoError(t, res.err, res.stderr)
}

func TestCLI_LogoutReportsUnreadableToken(t *testing.T) {
	env := newCLIEnv(t)
	env["STORAGE_PATH"] = t.TempDir()
	env["LOG_LEVEL"] = "warn"
	logger.Reset()
	t.Cleanup(logger.Reset)

	res := run(env, "logout")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "reading stored token failed")
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"district=Kandy", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"district": "Kandy", "note": "a=b"}, got)

	_, err = parsePairs([]string{"=x"})
	assert.Error(t, err)
}
