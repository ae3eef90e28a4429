package msr605

import (
	"fmt"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// chunkPayload splits a logical packet into wire transfers: up to 63 payload
// bytes per chunk behind a 1-byte header, every chunk padded to the fixed
// 64-byte transfer size. The start-valid bit is set on every chunk, the
// final bit only on the last. An empty payload needs no transfers; every
// command is at least the escape marker plus a command byte.
func chunkPayload(payload []byte) [][]byte {
	var chunks [][]byte
	for rest := payload; len(rest) > 0; {
		n := len(rest)
		if n > maxChunk {
			n = maxChunk
		}
		chunk := make([]byte, reportSize)
		hdr := byte(hdrStartValid | n)
		if n == len(rest) {
			hdr |= hdrFinal
		}
		chunk[0] = hdr
		copy(chunk[1:], rest[:n])
		chunks = append(chunks, chunk)
		rest = rest[n:]
	}
	return chunks
}

// sendControl serializes one logical packet onto the control channel as HID
// set-report transfers. The send mutex guarantees chunks of concurrent
// logical packets never interleave on the wire.
func (c *Client) sendControl(payload []byte) error {
	if !c.connected.Load() {
		return device.ErrDisconnected
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	for _, chunk := range chunkPayload(payload) {
		if _, err := c.dev.Control(ctrlRequestType, ctrlRequest, ctrlValue, 0, chunk); err != nil {
			return fmt.Errorf("control transfer failed: %w", err)
		}
	}
	return nil
}

// sendCommand frames cmd and its arguments behind the escape marker and
// sends them as one logical packet.
func (c *Client) sendCommand(cmd byte, args ...byte) error {
	payload := make([]byte, 0, 2+len(args))
	payload = append(payload, esc, cmd)
	payload = append(payload, args...)
	c.log.Debug().Hex("payload", payload).Msg("send command")
	return c.sendControl(payload)
}
