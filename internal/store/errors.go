package store

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any *NotFoundError with errors.Is.
var ErrNotFound = errors.New("not found")

// ErrOwnedKey matches any *OwnedKeyError with errors.Is.
var ErrOwnedKey = errors.New("key owned by a user set")

// NotFoundError reports an operation on an id that is not in the store.
type NotFoundError struct {
	Kind string // "item", "item set", "session"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// OwnedKeyError reports a default-source write to a key that a user
// import owns.
type OwnedKeyError struct {
	Key string
}

func (e *OwnedKeyError) Error() string {
	return fmt.Sprintf("item set %q is owned by a user import", e.Key)
}

func (e *OwnedKeyError) Is(target error) bool {
	return target == ErrOwnedKey
}

// StorageError wraps a failure of the underlying database. The operation
// it names had no effect.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
