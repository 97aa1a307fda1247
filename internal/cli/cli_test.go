package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerdesk/internal/cli"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	user := map[string]any{"id": "1", "name": "A", "email": "a@b.com", "role": "ADMIN"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "x" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "Invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "t1", "user": user})
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "t1", "user": user})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := cli.NewRootCommand()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	for _, name := range []string{"login", "signup", "logout", "whoami"} {
		cmd, _, err := root.Find([]string{"auth", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestAuth_LoginWhoamiLogout(t *testing.T) {
	srv := fakeBackend(t)
	tokenFile := filepath.Join(t.TempDir(), "auth.json")
	common := []string{"--backend-url", srv.URL, "--token-file", tokenFile}

	out, _, err := run(t, append([]string{"auth", "login", "--email", "a@b.com", "--password", "x"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "Logged in as A <a@b.com>\n", out)

	data, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"t1"`)

	out, _, err = run(t, append([]string{"auth", "whoami"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "A <a@b.com>")
	assert.Contains(t, out, "Role: ADMIN")

	out, _, err = run(t, append([]string{"auth", "logout"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	_, _, err = run(t, append([]string{"auth", "whoami"}, common...)...)
	assert.ErrorIs(t, err, cli.ErrNotLoggedIn)
}

func TestAuth_LogoutWithBackendDown(t *testing.T) {
	srv := fakeBackend(t)
	tokenFile := filepath.Join(t.TempDir(), "auth.json")

	_, _, err := run(t, "auth", "login", "--email", "a@b.com", "--password", "x",
		"--backend-url", srv.URL, "--token-file", tokenFile)
	require.NoError(t, err)

	url := srv.URL
	srv.Close()

	out, errOut, err := run(t, "auth", "logout", "--backend-url", url, "--token-file", tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)
	assert.Contains(t, errOut, "backend logout failed")

	data, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "t1")
}

func TestAuth_LoginFailure(t *testing.T) {
	srv := fakeBackend(t)
	tokenFile := filepath.Join(t.TempDir(), "auth.json")

	_, _, err := run(t, "auth", "login", "--email", "a@b.com", "--password", "wrong",
		"--backend-url", srv.URL, "--token-file", tokenFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, statErr := os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAuth_WhoamiWithRejectedToken(t *testing.T) {
	srv := fakeBackend(t)
	tokenFile := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"cli":"revoked"}`), 0o600))

	_, _, err := run(t, "auth", "whoami", "--backend-url", srv.URL, "--token-file", tokenFile)
	assert.ErrorIs(t, err, cli.ErrSessionExpired)
}

func TestAuth_Signup(t *testing.T) {
	srv := fakeBackend(t)
	tokenFile := filepath.Join(t.TempDir(), "auth.json")

	out, _, err := run(t, "auth", "signup", "--name", "A", "--email", "a@b.com", "--password", "x",
		"--backend-url", srv.URL, "--token-file", tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "Logged in as A <a@b.com>\n", out)
}

func TestAuth_LoginRequiresFlags(t *testing.T) {
	_, _, err := run(t, "auth", "login", "--email", "a@b.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}
