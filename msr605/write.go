package msr605

import (
	"fmt"
	"math/bits"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// buildWriteFrame assembles the write-enable command: for each track the
// escape marker, the 1-based track number, a length byte and the raw bytes,
// closed by the fixed 0x3F 0x1C marker pair.
//
// The bit order of every byte is reversed on the way in. Read data arrives
// MSB-first while the device expects write data LSB-first; the asymmetry
// matches the hardware's wire convention and must not be "fixed" without
// verifying against a real card.
func buildWriteFrame(tracks [3][]byte) ([]byte, error) {
	frame := []byte{esc, cmdWriteRaw}
	for i, tr := range tracks {
		if len(tr) > 255 {
			return nil, fmt.Errorf("track %d raw data too long: %d bytes", i+1, len(tr))
		}
		frame = append(frame, esc, byte(i+1), byte(len(tr)))
		for _, b := range tr {
			frame = append(frame, bits.Reverse8(b))
		}
	}
	return append(frame, 0x3f, 0x1c), nil
}

// WriteRawData writes three raw track buffers to the next swiped card and
// waits for the device to acknowledge. A missing acknowledgement within the
// deadline is reported as false rather than an error; retry policy belongs
// to the caller.
func (c *Client) WriteRawData(tracks [3][]byte) (bool, error) {
	if c.cancelling.Load() {
		return false, device.ErrAborted
	}
	if !c.connected.Load() {
		return false, device.ErrDisconnected
	}
	frame, err := buildWriteFrame(tracks)
	if err != nil {
		return false, err
	}
	if err := c.sendControl(frame); err != nil {
		return false, err
	}
	c.log.Debug().Msg("write mode enabled, waiting for swipe")
	return c.awaitAck(ackDeadline)
}
