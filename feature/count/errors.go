package count

import "fmt"

// StorageError reports a failure of the underlying local persistence.
// It is always retryable and never means data loss: pending events remain
// the source of truth until a successful settle confirms them.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
