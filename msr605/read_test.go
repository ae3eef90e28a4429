package msr605

import (
	"bytes"
	"errors"
	"testing"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

// swipePacket builds a well-formed track-data response.
func swipePacket(t1, t2, t3 []byte) []byte {
	pkt := []byte{esc, respTrackData}
	for i, tr := range [][]byte{t1, t2, t3} {
		pkt = append(pkt, esc, byte(i+1), byte(len(tr)))
		pkt = append(pkt, tr...)
	}
	return pkt
}

func TestParseTrackData(t *testing.T) {
	t1 := []byte{0xaa, 0xbb, 0xcc}
	t2 := []byte{0x11}
	t3 := []byte{}
	res, err := parseTrackData(swipePacket(t1, t2, t3))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(res.Raw[0], t1) || !bytes.Equal(res.Raw[1], t2) || len(res.Raw[2]) != 0 {
		t.Errorf("raw tracks % x", res.Raw)
	}
}

func TestParseTrackDataRejectsBadFraming(t *testing.T) {
	good := swipePacket([]byte{1}, []byte{2}, []byte{3})

	testCases := []struct {
		name string
		pkt  []byte
	}{
		{"Empty", nil},
		{"BadPreamble", []byte{esc, 'x', esc, 1, 0}},
		{"NoEscape", append([]byte{0x00}, good[1:]...)},
		{"WrongTrackNumber", func() []byte {
			p := append([]byte(nil), good...)
			p[3] = 7 // first track marker index
			return p
		}()},
		{"TruncatedLength", func() []byte {
			p := append([]byte(nil), good...)
			p[4] = 200 // claims more bytes than the packet holds
			return p
		}()},
		{"MissingThirdTrack", good[:len(good)-3]},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseTrackData(tc.pkt)
			var perr *device.ProtocolError
			if !errors.As(err, &perr) {
				t.Errorf("got %v, want ProtocolError", err)
			}
		})
	}
}

// Ignore trailing bytes after the third track; the device appends status
// noise the framing does not promise.
func TestParseTrackDataIgnoresTrailer(t *testing.T) {
	pkt := append(swipePacket([]byte{1}, []byte{2}, []byte{3}), 0x3f, 0x1c, esc, ackOK)
	res, err := parseTrackData(pkt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(res.Raw[2], []byte{3}) {
		t.Errorf("track 3 = % x", res.Raw[2])
	}
}
