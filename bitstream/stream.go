// Package bitstream provides a cursor over a byte buffer addressable at
// single-bit granularity, with arbitrary-width reads and writes.
package bitstream

import "errors"

// ErrEndOfStream is returned by Read when the cursor plus the requested width
// runs past the end of the buffer. It marks normal termination of a decode
// loop, not a protocol failure.
var ErrEndOfStream = errors.New("end of bitstream")

// Stream reads and writes values of 1-32 bits at any bit offset.
// Bits are consumed and produced MSB-first across byte boundaries.
type Stream struct {
	data   []byte
	bitPos int // Current bit position (0-based)
}

// New creates a stream positioned at the start of data.
// The buffer may be nil; writes grow it as needed.
func New(data []byte) *Stream {
	return &Stream{data: data}
}

// Read consumes width bits and returns them as an unsigned value.
// Returns ErrEndOfStream when fewer than width bits remain.
func (s *Stream) Read(width int) (uint32, error) {
	if width <= 0 || width > 32 {
		return 0, errors.New("bitstream: width must be 1-32 bits")
	}
	if s.bitPos+width > len(s.data)*8 {
		return 0, ErrEndOfStream
	}
	var value uint32
	for i := 0; i < width; i++ {
		byteIdx := s.bitPos / 8
		bitIdx := 7 - (s.bitPos & 7) // MSB-first
		value = value<<1 | uint32((s.data[byteIdx]>>bitIdx)&1)
		s.bitPos++
	}
	return value, nil
}

// Write stores the low width bits of value at the cursor, growing the buffer
// as needed. The target bit range is cleared first, so writes splice cleanly
// into existing data even at offsets that straddle byte boundaries.
func (s *Stream) Write(width int, value uint32) {
	if width <= 0 || width > 32 {
		return
	}
	for i := width - 1; i >= 0; i-- {
		byteIdx := s.bitPos / 8
		for byteIdx >= len(s.data) {
			s.data = append(s.data, 0)
		}
		bitIdx := 7 - (s.bitPos & 7)
		s.data[byteIdx] &^= 1 << bitIdx
		if value>>i&1 != 0 {
			s.data[byteIdx] |= 1 << bitIdx
		}
		s.bitPos++
	}
}

// Seek moves the cursor by delta bits, clamping to [0, len*8].
func (s *Stream) Seek(delta int) {
	s.bitPos += delta
	if s.bitPos < 0 {
		s.bitPos = 0
	}
	if max := len(s.data) * 8; s.bitPos > max {
		s.bitPos = max
	}
}

// Pos returns the cursor position in bits from the start of the buffer.
func (s *Stream) Pos() int {
	return s.bitPos
}

// Bytes returns the underlying buffer.
func (s *Stream) Bytes() []byte {
	return s.data
}
