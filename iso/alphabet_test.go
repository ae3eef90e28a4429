package iso

import (
	"math/bits"
	"testing"
)

// Every mappable character must map to a unique code and back again, and
// every code must carry odd parity.
func TestAlphabetInverseMapping(t *testing.T) {
	testCases := []struct {
		name  string
		alpha *Alphabet
		chars string
	}{
		{"Alphanumeric", Alphanumeric, alphanumericChars},
		{"Numeric", Numeric, numericChars},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen := make(map[byte]byte)
			for i := 0; i < len(tc.chars); i++ {
				c := tc.chars[i]
				code, ok := tc.alpha.CharToCode(c)
				if !ok {
					t.Fatalf("character %q has no code", c)
				}
				if prev, dup := seen[code]; dup {
					t.Errorf("code %#x assigned to both %q and %q", code, prev, c)
				}
				seen[code] = c
				if bits.OnesCount8(code)%2 != 1 {
					t.Errorf("code %#x for %q has even parity", code, c)
				}
				back, ok := tc.alpha.CodeToChar(code)
				if !ok || back != c {
					t.Errorf("code %#x maps back to %q, want %q", code, back, c)
				}
			}
		})
	}
}

// Unmappable characters and unmappable codes are explicit failures, never
// silently coerced.
func TestAlphabetUnmappable(t *testing.T) {
	if _, ok := Numeric.CharToCode('A'); ok {
		t.Error("'A' should not encode on a numeric track")
	}
	if _, ok := Alphanumeric.CharToCode('a'); ok {
		t.Error("lowercase should not encode on the alphanumeric track")
	}
	if _, ok := Alphanumeric.CharToCode(CorruptSentinel); ok {
		t.Error("the corruption sentinel must stay outside the alphabet")
	}
	if _, ok := Numeric.CharToCode(CorruptSentinel); ok {
		t.Error("the corruption sentinel must stay outside the alphabet")
	}
	// Even-parity codes have no mapping.
	if _, ok := Numeric.CodeToChar(0x03); ok {
		t.Error("even-parity code should not decode")
	}
}

func TestSentinelsAreMappable(t *testing.T) {
	for _, a := range []*Alphabet{Alphanumeric, Numeric} {
		if _, ok := a.CharToCode(StartSentinel); !ok {
			t.Errorf("start sentinel missing from %d-bit alphabet", a.Bits)
		}
		if _, ok := a.CharToCode(EndSentinel); !ok {
			t.Errorf("end sentinel missing from %d-bit alphabet", a.Bits)
		}
	}
}
