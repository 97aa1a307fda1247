package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileTokenStorage keeps tokens in a JSON document on disk, mapping keys to
// tokens. The CLI uses it so a login survives between invocations.
type FileTokenStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStorage(path string) *FileTokenStorage {
	return &FileTokenStorage{path: path}
}

// DefaultTokenFile returns ~/.speakerdesk/auth.json.
func DefaultTokenFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".speakerdesk", "auth.json"), nil
}

func (f *FileTokenStorage) Load(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tokens, err := f.read()
	if err != nil {
		return "", err
	}
	token, ok := tokens[key]
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (f *FileTokenStorage) Save(_ context.Context, key, token string) error {
	if key == "" {
		return ErrInvalidKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tokens, err := f.read()
	if err != nil {
		return err
	}
	tokens[key] = token
	return f.write(tokens)
}

func (f *FileTokenStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tokens, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[key]; !ok {
		return nil
	}
	delete(tokens, key)
	return f.write(tokens)
}

func (f *FileTokenStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}

	tokens := make(map[string]string)
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, errors.Join(ErrStorageFailed, fmt.Errorf("decode %s: %w", f.path, err))
	}
	return tokens, nil
}

// write replaces the file atomically with 0600 permissions.
func (f *FileTokenStorage) write(tokens map[string]string) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".auth-*.json")
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorageFailed, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrStorageFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
