package moderation

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyContent rejects empty or whitespace-only text before any layer runs.
var ErrEmptyContent = errors.New("content is empty")

// LayerUnavailableError means a layer's backing service or credential is
// not configured.
type LayerUnavailableError struct {
	Layer  Layer
	Reason string
}

func (e *LayerUnavailableError) Error() string {
	return fmt.Sprintf("layer %s unavailable: %s", e.Layer, e.Reason)
}

// LayerTimeoutError means a remote layer did not respond within the
// configured deadline.
type LayerTimeoutError struct {
	Layer   Layer
	Timeout time.Duration
}

func (e *LayerTimeoutError) Error() string {
	return fmt.Sprintf("layer %s timed out after %s", e.Layer, e.Timeout)
}

// LayerTransportError wraps a transport-level failure from a remote layer:
// network error, non-2xx status, or a malformed response body.
type LayerTransportError struct {
	Layer Layer
	Err   error
}

func (e *LayerTransportError) Error() string {
	return fmt.Sprintf("layer %s transport failure: %v", e.Layer, e.Err)
}

func (e *LayerTransportError) Unwrap() error {
	return e.Err
}
