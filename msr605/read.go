package msr605

import (
	"errors"
	"fmt"
	"time"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
	"github.com/DanielClxpz/MSR-CLI-Tool/iso"
)

// awaitAck polls arriving packets for a success acknowledgement until the
// deadline, discarding unrelated packets in between. The wait is sliced into
// short sub-waits so a cancellation is observed promptly. On overall timeout
// the device is told to leave read mode and false is returned; the caller
// decides whether to retry.
func (c *Client) awaitAck(deadline time.Duration) (bool, error) {
	limit := time.Now().Add(deadline)
	for {
		if c.cancelling.Load() {
			return false, device.ErrAborted
		}
		remain := time.Until(limit)
		if remain <= 0 {
			_ = c.sendCommand(cmdReset)
			return false, nil
		}
		wait := ackSubWait
		if remain < wait {
			wait = remain
		}
		pkt, err := c.queue.next(wait)
		if errors.Is(err, device.ErrTimeout) {
			continue
		}
		if err != nil {
			return false, err
		}
		if len(pkt) >= 2 && pkt[0] == esc && pkt[1] == ackOK {
			return true, nil
		}
		c.log.Debug().Hex("packet", pkt).Msg("discarding packet while waiting for ack")
	}
}

// awaitReturn polls for a generic return packet: the escape marker, a status
// code other than the success ack, then the payload. A nil result without an
// error means the deadline passed; the device is nudged out of read mode
// first, like awaitAck.
func (c *Client) awaitReturn(deadline time.Duration) ([]byte, error) {
	limit := time.Now().Add(deadline)
	for {
		if c.cancelling.Load() {
			return nil, device.ErrAborted
		}
		remain := time.Until(limit)
		if remain <= 0 {
			_ = c.sendCommand(cmdReset)
			return nil, nil
		}
		wait := ackSubWait
		if remain < wait {
			wait = remain
		}
		pkt, err := c.queue.next(wait)
		if errors.Is(err, device.ErrTimeout) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(pkt) >= 2 && pkt[0] == esc && pkt[1] != ackOK {
			return pkt[1:], nil
		}
		c.log.Debug().Hex("packet", pkt).Msg("discarding packet while waiting for return value")
	}
}

// awaitReturnValue is awaitReturn with the expired deadline mapped to
// ErrTimeout: for callers that need the payload, silence is a failure.
func (c *Client) awaitReturnValue(deadline time.Duration) ([]byte, error) {
	payload, err := c.awaitReturn(deadline)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, device.ErrTimeout
	}
	return payload, nil
}

// ReadData puts the device into read mode and waits for one swipe. The wait
// has no deadline but resolves immediately on Cancel or disconnect. The
// response must carry the track-data framing exactly; anything else fails
// the call with a ProtocolError.
func (c *Client) ReadData() (*device.ReadResult, error) {
	if c.cancelling.Load() {
		return nil, device.ErrAborted
	}
	if !c.connected.Load() {
		return nil, device.ErrDisconnected
	}
	if err := c.sendCommand(cmdReadRaw); err != nil {
		return nil, err
	}
	c.log.Debug().Msg("read mode enabled, waiting for swipe")

	pkt, err := c.queue.next(0)
	if err != nil {
		return nil, err
	}
	res, err := parseTrackData(pkt)
	if err != nil {
		return nil, err
	}
	alphabets := [3]*iso.Alphabet{iso.Alphanumeric, iso.Numeric, iso.Numeric}
	for i, a := range alphabets {
		res.Tracks[i] = iso.DecodeTrack(a, res.Raw[i])
	}
	return res, nil
}

// parseTrackData validates the swipe response framing: the escape marker and
// the track-data code, then for each of the three tracks the escape marker,
// the 1-based track number, a length byte and that many raw bytes.
func parseTrackData(pkt []byte) (*device.ReadResult, error) {
	if len(pkt) < 2 || pkt[0] != esc || pkt[1] != respTrackData {
		return nil, &device.ProtocolError{Reason: "bad track data preamble", Byte: byteAt(pkt, 1)}
	}
	res := &device.ReadResult{}
	off := 2
	for t := 0; t < 3; t++ {
		if off+3 > len(pkt) || pkt[off] != esc || pkt[off+1] != byte(t+1) {
			return nil, &device.ProtocolError{
				Reason: fmt.Sprintf("bad track %d marker", t+1),
				Byte:   byteAt(pkt, off),
			}
		}
		n := int(pkt[off+2])
		off += 3
		if off+n > len(pkt) {
			return nil, &device.ProtocolError{
				Reason: fmt.Sprintf("track %d data truncated", t+1),
				Byte:   byte(n),
			}
		}
		res.Raw[t] = append([]byte(nil), pkt[off:off+n]...)
		off += n
	}
	return res, nil
}

func byteAt(pkt []byte, i int) byte {
	if i < 0 || i >= len(pkt) {
		return 0
	}
	return pkt[i]
}
