package iso

import (
	"errors"
	"math/bits"
	"testing"

	"github.com/DanielClxpz/MSR-CLI-Tool/bitstream"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		alpha *Alphabet
		text  string
	}{
		{"PANTrack2", Numeric, ";4111111111111111?"},
		{"PANTrack3", Numeric, "4111111111111111"},
		{"NameTrack1", Alphanumeric, ";B4111111111111111^DOE/JOHN?"},
		{"FullNumericSet", Numeric, numericChars},
		{"SingleChar", Numeric, "7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := Encode(tc.alpha, tc.text)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded := Decode(tc.alpha, raw)
			// One LRC symbol follows the data; trailing padding bits decode
			// as at most one extra symbol.
			if len(decoded) < len(tc.text)+1 {
				t.Fatalf("decoded %d symbols, want at least %d", len(decoded), len(tc.text)+1)
			}
			if decoded[:len(tc.text)] != tc.text {
				t.Errorf("decoded %q, want prefix %q", decoded, tc.text)
			}
		})
	}
}

// The LRC appended by Encode must match the recomputed column parity.
func TestEncodeAppendsValidLRC(t *testing.T) {
	text := "4111111111111111"
	raw, err := Encode(Numeric, text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := bitstream.New(raw)
	codes := make([]byte, 0, len(text)+1)
	for i := 0; i < len(text)+1; i++ {
		v, err := s.Read(Numeric.Bits)
		if err != nil {
			t.Fatalf("symbol %d: %v", i, err)
		}
		codes = append(codes, byte(v))
	}
	data, got := codes[:len(text)], codes[len(text)]
	if want := lrc(Numeric.Bits, data); got != want {
		t.Errorf("LRC symbol %#x, want %#x", got, want)
	}
}

func TestLRCColumnParity(t *testing.T) {
	testCases := [][]byte{
		{0x10, 0x01, 0x13},
		{0x1a},
		{0x01, 0x02, 0x04, 0x08, 0x10},
		{0x1f, 0x1f, 0x1f},
	}
	for _, codes := range testCases {
		sym := lrc(5, codes)
		for col := 1; col < 5; col++ {
			var want byte
			for _, c := range codes {
				want ^= c >> col & 1
			}
			if sym>>col&1 != want {
				t.Errorf("codes % x: column %d = %d, want %d", codes, col, sym>>col&1, want)
			}
		}
		if bits.OnesCount8(sym)%2 != 0 {
			t.Errorf("codes % x: LRC %#x has an odd number of set bits", codes, sym)
		}
	}
}

func TestEncodeEmptyHasNoLRC(t *testing.T) {
	raw, err := Encode(Numeric, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("empty input produced %d bytes", len(raw))
	}
}

func TestEncodeInvalidCharacter(t *testing.T) {
	_, err := Encode(Numeric, "411A")
	var invalid *InvalidCharacterError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidCharacterError", err)
	}
	if invalid.Char != 'A' {
		t.Errorf("offending character %q, want 'A'", invalid.Char)
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name    string
		decoded string
		want    Track
	}{
		{"Empty", "", Track{Status: StatusNoData}},
		{"NoiseWithoutSentinels", "123", Track{Status: StatusCorrupt}},
		{"MissingEndSentinel", ";411", Track{Status: StatusCorrupt}},
		{"MissingStartSentinel", "411?", Track{Status: StatusCorrupt}},
		{"Valid", ";4111111111111111?", Track{Status: StatusOK, Data: ";4111111111111111?"}},
		{"ValidWithTrailingNoise", "0;411?99", Track{Status: StatusOK, Data: ";411?"}},
		{"CorruptInside", ";41~11?", Track{Status: StatusCorrupt}},
		{"CorruptOutside", ";411?~", Track{Status: StatusOK, Data: ";411?"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.decoded); got != tc.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tc.decoded, got, tc.want)
			}
		})
	}
}

// Decoding an encoded track must reproduce the original text with a valid
// classification, the whole read path end to end.
func TestTrackRoundTripThroughClassify(t *testing.T) {
	text := ";4111111111111111?"
	raw, err := Encode(Numeric, text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	track := DecodeTrack(Numeric, raw)
	if track.Status != StatusOK {
		t.Fatalf("status %v, want OK", track.Status)
	}
	if track.Data != text {
		t.Errorf("data %q, want %q", track.Data, text)
	}
}
