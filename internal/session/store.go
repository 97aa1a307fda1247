package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Ticket stamps a user fetch with the store epoch and a sequence number.
// Token is the credential the fetch must use.
type Ticket struct {
	Token string
	epoch uint64
	seq   uint64
}

// Store is the authentication state of one portal session.
type Store struct {
	key     string
	storage TokenStorage

	// mu also serialises storage writes so that storage and memory agree on
	// the order of logins and logouts.
	mu      sync.RWMutex
	token   string
	user    *UserProfile
	errMsg  string
	epoch   uint64
	seq     uint64
	applied uint64
}

// NewStore creates an empty Store whose token is persisted under key.
// A nil storage keeps the token in memory only.
func NewStore(key string, storage TokenStorage) *Store {
	return &Store{key: key, storage: storage}
}

// Key returns the storage key, which is the portal session id.
func (s *Store) Key() string {
	return s.key
}

// SetCredentials stores a new token and user, clears the error and persists
// the token. The in-memory state is updated even when persisting fails.
func (s *Store) SetCredentials(ctx context.Context, user *UserProfile, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user.Clone()
	s.errMsg = ""
	s.epoch++
	s.applied = s.seq

	if s.storage == nil {
		return nil
	}
	if err := s.storage.Save(ctx, s.key, token); err != nil {
		return errors.Join(ErrStorageFailed, fmt.Errorf("save token: %w", err))
	}
	return nil
}

// SetUser replaces the cached user. Fetches started before this call can no
// longer overwrite it.
func (s *Store) SetUser(user *UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user.Clone()
	s.applied = s.seq
}

// SetError records the last authentication failure.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = message
}

// ClearError resets the error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Logout empties the store, invalidates outstanding tickets and deletes the
// persisted token. The store is empty even when the delete fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	s.errMsg = ""
	s.epoch++
	s.applied = s.seq

	if s.storage == nil {
		return nil
	}
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return errors.Join(ErrStorageFailed, fmt.Errorf("delete token: %w", err))
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Token: s.token,
		User:  s.user.Clone(),
		Error: s.errMsg,
	}
}

// IsAuthenticated is shorthand for Snapshot().IsAuthenticated().
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Token: s.token, User: s.user}.IsAuthenticated()
}

// Begin issues a Ticket for a user fetch with the current token.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	return Ticket{Token: s.token, epoch: s.epoch, seq: s.seq}
}

// ApplyUser stores the result of the fetch t was issued for. It reports
// false and changes nothing when the session was logged out or logged in
// again since Begin, or when a newer result was already applied.
func (s *Store) ApplyUser(t Ticket, user *UserProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.epoch != s.epoch || t.seq <= s.applied || s.token == "" || user == nil {
		return false
	}

	s.user = user.Clone()
	s.applied = t.seq
	return true
}

// restore sets a token read back from storage on a fresh store.
func (s *Store) restore(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
