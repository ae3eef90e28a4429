package msr605

import (
	"sync"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// reassembler rebuilds logical packets from fixed-size interrupt reports.
// Each report starts with a chunk header: bit 7 start-valid, bit 6 final
// chunk, bits 0-5 payload length.
type reassembler struct {
	mu     sync.Mutex
	buf    []byte
	active bool
}

// feed consumes one raw report. It returns the completed packet when the
// report carries the final-chunk bit, nil while accumulation continues, or a
// ProtocolError when a report that would start a new packet is missing the
// start-valid bit. The bad fragment is dropped either way.
func (r *reassembler) feed(report []byte) ([]byte, error) {
	if len(report) == 0 {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	hdr := report[0]
	if !r.active && hdr&hdrStartValid == 0 {
		return nil, &device.ProtocolError{Reason: "report missing packet start bit", Byte: hdr}
	}

	length := int(hdr & hdrLengthMask)
	if length > len(report)-1 {
		length = len(report) - 1
	}
	r.buf = append(r.buf, report[1:1+length]...)
	r.active = true

	if hdr&hdrFinal == 0 {
		return nil, nil
	}
	pkt := r.buf
	if pkt == nil {
		pkt = []byte{}
	}
	r.buf = nil
	r.active = false
	return pkt, nil
}

// reset discards any half-built packet.
func (r *reassembler) reset() {
	r.mu.Lock()
	r.buf = nil
	r.active = false
	r.mu.Unlock()
}
