package session

import "errors"

var (
	// ErrNoToken is returned by TokenStorage.Load when nothing is stored.
	ErrNoToken = errors.New("session.no_token")

	ErrStorageFailed   = errors.New("session.storage_failed")
	ErrInvalidKey      = errors.New("session.invalid_key")
	ErrInvalidStoreCfg = errors.New("session.invalid_token_store")
)
