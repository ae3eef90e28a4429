package msr605

import (
	"fmt"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// Initialize runs the configuration handshake: firmware query, read mode
// off, bits per character, coercivity, density and leading zeros. Every step
// sends one command, waits for the success ack within the overall deadline,
// then drains stray packets before the next step.
func (c *Client) Initialize() error {
	if c.cancelling.Load() {
		return device.ErrAborted
	}
	if !c.connected.Load() {
		return device.ErrDisconnected
	}

	// The firmware answer is consumed and discarded; the device just has
	// to prove it is talking.
	if err := c.sendCommand(cmdFirmware); err != nil {
		return fmt.Errorf("query firmware: %w", err)
	}
	if _, err := c.awaitReturnValue(ackDeadline); err != nil {
		return fmt.Errorf("query firmware: %w", err)
	}
	c.drain()

	coercivity := byte(cmdLoCo)
	if c.Settings.HiCo {
		coercivity = cmdHiCo
	}
	steps := []struct {
		name string
		cmd  byte
		args []byte
	}{
		{"disable read mode", cmdReset, nil},
		{"set bits per character", cmdSetBPC, []byte{
			byte(c.Settings.BPC[0]), byte(c.Settings.BPC[1]), byte(c.Settings.BPC[2]),
		}},
		{"set coercivity", coercivity, nil},
		{"set track 1 density", cmdSetBPI, []byte{bpiSelector(1, c.Settings.BPI[0])}},
		{"set track 2 density", cmdSetBPI, []byte{bpiSelector(2, c.Settings.BPI[1])}},
		{"set track 3 density", cmdSetBPI, []byte{bpiSelector(3, c.Settings.BPI[2])}},
		{"set leading zeros", cmdLeadingZero, []byte{
			byte(c.Settings.LeadingZero[0]), byte(c.Settings.LeadingZero[1]),
		}},
	}
	for _, st := range steps {
		if c.cancelling.Load() {
			return device.ErrAborted
		}
		if err := c.sendCommand(st.cmd, st.args...); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		ok, err := c.awaitAck(ackDeadline)
		if err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", st.name, device.ErrTimeout)
		}
		c.drain()
		c.log.Debug().Str("step", st.name).Msg("configured")
	}
	return nil
}

// bpiSelector maps a track density to the set-density argument. Track 2
// takes the density value itself; tracks 1 and 3 use dedicated selector
// bytes for their two supported densities.
func bpiSelector(track, bpi int) byte {
	hi := bpi >= 210
	switch track {
	case 1:
		if hi {
			return 0xa1
		}
		return 0xa0
	case 2:
		return byte(bpi) // 210 -> 0xd2, 75 -> 0x4b
	default:
		if hi {
			return 0xc1
		}
		return 0xc0
	}
}
