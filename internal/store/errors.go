package store

import "errors"

// Sentinel errors surfaced by the account store.
var (
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateSite indicates the normalized site path is already taken.
	ErrDuplicateSite = errors.New("site already exists")
	// ErrAccountNotFound indicates no matching active account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStoreUnavailable indicates the underlying persistence failed.
	ErrStoreUnavailable = errors.New("store unavailable")
)
