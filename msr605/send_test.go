package msr605

import (
	"bytes"
	"testing"
)

func TestChunkCount(t *testing.T) {
	testCases := []struct {
		length int
		chunks int
	}{
		{0, 0},
		{1, 1},
		{62, 1},
		{63, 1},
		{64, 2},
		{126, 2},
		{127, 3},
		{200, 4},
	}
	for _, tc := range testCases {
		payload := make([]byte, tc.length)
		chunks := chunkPayload(payload)
		if len(chunks) != tc.chunks {
			t.Errorf("length %d: got %d chunks, want %d", tc.length, len(chunks), tc.chunks)
		}
	}
}

// Chunks carry start-valid everywhere, final only on the last, and
// reassemble to exactly the original payload.
func TestChunkRoundTrip(t *testing.T) {
	for _, length := range []int{0, 1, 63, 64, 100, 189, 190} {
		payload := make([]byte, length)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		chunks := chunkPayload(payload)

		var r reassembler
		var got []byte
		for i, chunk := range chunks {
			if len(chunk) != reportSize {
				t.Fatalf("length %d chunk %d: %d bytes, want %d", length, i, len(chunk), reportSize)
			}
			hdr := chunk[0]
			if hdr&hdrStartValid == 0 {
				t.Errorf("length %d chunk %d: start bit missing", length, i)
			}
			if final := hdr&hdrFinal != 0; final != (i == len(chunks)-1) {
				t.Errorf("length %d chunk %d: final bit %v", length, i, final)
			}
			pkt, err := r.feed(chunk)
			if err != nil {
				t.Fatalf("length %d chunk %d: %v", length, i, err)
			}
			if pkt != nil {
				got = pkt
			}
		}
		if length == 0 {
			if len(got) != 0 {
				t.Errorf("empty payload reassembled to % x", got)
			}
			continue
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("length %d: reassembly mismatch", length)
		}
	}
}

func TestChunkPayloadLengthField(t *testing.T) {
	payload := make([]byte, 70)
	chunks := chunkPayload(payload)
	if got := chunks[0][0] & hdrLengthMask; got != maxChunk {
		t.Errorf("first chunk length %d, want %d", got, maxChunk)
	}
	if got := chunks[1][0] & hdrLengthMask; got != 7 {
		t.Errorf("second chunk length %d, want 7", got)
	}
}
