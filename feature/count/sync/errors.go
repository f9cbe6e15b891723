package sync

import (
	"errors"
	"fmt"
)

// ErrUnsupportedTransport reports a failed capability probe. The provider
// selector treats it as a silent fallback trigger, never a sync failure.
var ErrUnsupportedTransport = errors.New("transport not supported on this device")

// ValidationError reports a malformed or incomplete packet. The sync is
// aborted with no partial merge.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid packet: " + e.Reason
}

// TransportIOError reports a connection or characteristic failure mid
// exchange. It is fully retryable: no partial state is persisted and the
// pending events remain untouched.
type TransportIOError struct {
	Op  string
	Err error
}

func (e *TransportIOError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportIOError) Unwrap() error {
	return e.Err
}
