package msr605

import (
	"strings"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// Firmware queries the device firmware version.
func (c *Client) Firmware() (string, error) {
	if c.cancelling.Load() {
		return "", device.ErrAborted
	}
	if !c.connected.Load() {
		return "", device.ErrDisconnected
	}
	if err := c.sendCommand(cmdFirmware); err != nil {
		return "", err
	}
	payload, err := c.awaitReturnValue(ackDeadline)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(payload), "\x00"), nil
}

// CommTest verifies the command/response link. The device answers the test
// command with a dedicated response code.
func (c *Client) CommTest() (bool, error) {
	if c.cancelling.Load() {
		return false, device.ErrAborted
	}
	if !c.connected.Load() {
		return false, device.ErrDisconnected
	}
	if err := c.sendCommand(cmdCommTest); err != nil {
		return false, err
	}
	payload, err := c.awaitReturn(ackDeadline)
	if err != nil {
		return false, err
	}
	return len(payload) > 0 && payload[0] == respCommTest, nil
}
