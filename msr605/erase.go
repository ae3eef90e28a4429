package msr605

import (
	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// Erase blanks the selected tracks on the next swiped card. Track selection
// is a bitmask: bit 0 track 1, bit 1 track 2, bit 2 track 3. Like writes,
// a missing acknowledgement is false rather than an error.
func (c *Client) Erase(track1, track2, track3 bool) (bool, error) {
	if c.cancelling.Load() {
		return false, device.ErrAborted
	}
	if !c.connected.Load() {
		return false, device.ErrDisconnected
	}
	var sel byte
	if track1 {
		sel |= 1 << 0
	}
	if track2 {
		sel |= 1 << 1
	}
	if track3 {
		sel |= 1 << 2
	}
	if err := c.sendCommand(cmdErase, sel); err != nil {
		return false, err
	}
	c.log.Debug().Uint8("tracks", sel).Msg("erase armed, waiting for swipe")
	return c.awaitAck(ackDeadline)
}
