package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and transport failures.
var (
	// ErrNotFound: no device with the expected USB identity is attached.
	ErrNotFound = errors.New("device not found")

	// ErrAccessDenied: the device exists but is locked by a kernel driver
	// or denied by permissions. Callers may retry after a delay.
	ErrAccessDenied = errors.New("device access denied")

	// ErrTimeout: the device did not answer within the deadline.
	ErrTimeout = errors.New("device timed out")

	// ErrDisconnected: the session is gone. Terminal until a fresh connect.
	ErrDisconnected = errors.New("device disconnected")

	// ErrAborted: the operation was cancelled by the user.
	ErrAborted = errors.New("operation aborted")
)

// ProtocolError reports malformed framing received from the device.
type ProtocolError struct {
	Reason string
	Byte   byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s (byte 0x%02x)", e.Reason, e.Byte)
}
