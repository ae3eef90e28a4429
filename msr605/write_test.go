package msr605

import (
	"bytes"
	"testing"
)

func TestBuildWriteFrame(t *testing.T) {
	tracks := [3][]byte{
		{0x01, 0x80},
		{0xf0},
		{},
	}
	frame, err := buildWriteFrame(tracks)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []byte{
		esc, cmdWriteRaw,
		esc, 1, 2, 0x80, 0x01, // bytes bit-reversed
		esc, 2, 1, 0x0f,
		esc, 3, 0,
		0x3f, 0x1c,
	}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame % x\nwant  % x", frame, want)
	}
}

// The write path reverses the bit order within each byte; the read path does
// not. Frames must reflect only the write-side transform.
func TestBuildWriteFrameReversesBits(t *testing.T) {
	frame, err := buildWriteFrame([3][]byte{{0b1101_0010}, {}, {}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := frame[5]; got != 0b0100_1011 {
		t.Errorf("byte on the wire %08b, want %08b", got, 0b0100_1011)
	}
}

func TestBuildWriteFrameRejectsOversizedTrack(t *testing.T) {
	var tracks [3][]byte
	tracks[1] = make([]byte, 256)
	if _, err := buildWriteFrame(tracks); err == nil {
		t.Error("256-byte track accepted")
	}
}
