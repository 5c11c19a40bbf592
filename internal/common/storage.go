package common

import "fmt"

// StorageError wraps any failure reported by the database driver so that
// callers can tell storage-caused failures apart from programming errors.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err, or returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrStorage so errors.Is(err, ErrStorage) works through
// any number of wrapping layers.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
