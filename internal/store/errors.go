package store

import "errors"

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate means a uniqueness rule was violated, most commonly an
	// upload whose content hash is already on file.
	ErrDuplicate = errors.New("store: duplicate")

	// ErrProtected means the row is load-bearing and cannot be deleted:
	// the default account, a default category, or the primary currency.
	ErrProtected = errors.New("store: protected row")
)
