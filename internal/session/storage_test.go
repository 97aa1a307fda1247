package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerdesk/internal/session"
	"github.com/dmitrymomot/speakerdesk/pkg/redis"
)

func exerciseStorage(t *testing.T, storage session.TokenStorage) {
	t.Helper()
	ctx := context.Background()
	key := uuid.NewString()

	_, err := storage.Load(ctx, key)
	assert.ErrorIs(t, err, session.ErrNoToken)

	require.NoError(t, storage.Save(ctx, key, "t1"))
	token, err := storage.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)

	require.NoError(t, storage.Save(ctx, key, "t2"))
	token, err = storage.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "t2", token)

	require.NoError(t, storage.Delete(ctx, key))
	_, err = storage.Load(ctx, key)
	assert.ErrorIs(t, err, session.ErrNoToken)

	require.NoError(t, storage.Delete(ctx, key), "deleting a missing key succeeds")
	assert.ErrorIs(t, storage.Save(ctx, "", "t"), session.ErrInvalidKey)
}

func TestMemoryTokenStorage(t *testing.T) {
	exerciseStorage(t, session.NewMemoryTokenStorage())
}

func TestFileTokenStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth.json")
	storage := session.NewFileTokenStorage(path)
	exerciseStorage(t, storage)

	require.NoError(t, storage.Save(context.Background(), "cli", "t1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened := session.NewFileTokenStorage(path)
	token, err := reopened.Load(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
}

func TestFileTokenStorage_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.NewFileTokenStorage(path).Load(context.Background(), "cli")
	assert.ErrorIs(t, err, session.ErrStorageFailed)
}

func TestRedisTokenStorage(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStorage(t, session.NewRedisTokenStorage(client, "speakerdesk:test:", time.Minute))
}
