package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no post has the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptStore is returned when the backing store exists but cannot be decoded.
	ErrCorruptStore = errors.New("store is corrupt")
)

// StorageError reports a failure reading or writing the backing store.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
