package session

import (
	"context"
	"sync"
)

// TokenStorage persists one bearer token per key.
type TokenStorage interface {
	// Load returns ErrNoToken when no token is stored under key.
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string) error
	// Delete succeeds when nothing is stored under key.
	Delete(ctx context.Context, key string) error
}

// MemoryTokenStorage keeps tokens in process memory. Tokens are lost on
// restart, so users have to log in again.
type MemoryTokenStorage struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{tokens: make(map[string]string)}
}

func (m *MemoryTokenStorage) Load(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[key]
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (m *MemoryTokenStorage) Save(_ context.Context, key, token string) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *MemoryTokenStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}
