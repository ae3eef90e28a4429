// Package device defines the surface shared between stripe reader
// implementations and the CLI: the reader interface, result types, the error
// taxonomy, and a VID/PID factory registry.
package device

import (
	"github.com/DanielClxpz/MSR-CLI-Tool/iso"
)

// ReadResult holds one card swipe: the classified tracks and the raw bytes
// they were decoded from.
type ReadResult struct {
	Tracks [3]iso.Track
	Raw    [3][]byte
}

// StripeReader is the surface a connected magnetic-stripe reader exposes to
// the presentation layer. Implementations support one outstanding
// read-oriented operation at a time.
type StripeReader interface {
	// Initialize runs the configuration handshake after connecting.
	Initialize() error

	// ReadData arms the device and waits, cancellably, for one swipe.
	ReadData() (*ReadResult, error)

	// WriteRawData writes three raw track buffers to a swiped card.
	// A missing acknowledgement is reported as false, not as an error,
	// so callers can retry without unwinding.
	WriteRawData(tracks [3][]byte) (bool, error)

	// Erase blanks the selected tracks on a swiped card.
	Erase(track1, track2, track3 bool) (bool, error)

	// Firmware returns the device firmware version string.
	Firmware() (string, error)

	// CommTest verifies the command/response link.
	CommTest() (bool, error)

	// Cancel aborts the in-flight operation. Blocked calls fail with
	// ErrAborted; the flag stays set until Reset.
	Cancel()

	// Reset clears a previous Cancel and returns the device to idle.
	Reset() error

	// Close releases the device. The session cannot be reused.
	Close() error
}

// Factory creates a connected reader, or fails with ErrNotFound when the
// hardware is absent.
type Factory func() (StripeReader, error)

// Info describes a registered reader model.
type Info struct {
	VendorID  uint16
	ProductID uint16
	Factory   Factory
}

var registered []Info

// Register adds a reader factory with its USB identity. Called from package
// init functions of reader implementations.
func Register(vendorID, productID uint16, factory Factory) {
	registered = append(registered, Info{
		VendorID:  vendorID,
		ProductID: productID,
		Factory:   factory,
	})
}

// Registered returns all registered reader models in registration order.
func Registered() []Info {
	return registered
}
