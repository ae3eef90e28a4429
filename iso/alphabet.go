// Package iso implements the ISO-7811 style track codec: alphabet tables
// mapping fixed-width symbol codes to printable characters, longitudinal
// redundancy parity, and classification of decoded track content.
package iso

import "math/bits"

// Sentinel characters delimiting valid track content.
const (
	StartSentinel byte = ';'
	EndSentinel   byte = '?'

	// CorruptSentinel is substituted for symbol codes with no mapping.
	// It appears in neither alphabet, so its presence between the track
	// sentinels always marks corruption.
	CorruptSentinel byte = '~'
)

// Alphabet is a bidirectional mapping between a fixed-width symbol code and a
// printable character. Each code carries the character index in its low bits
// and an odd-parity bit in its high bit.
type Alphabet struct {
	Bits   int
	toCode [256]int16 // indexed by character, -1 when unmappable
	toChar [256]int16 // indexed by code, -1 when unmappable
}

// Character sets in code order. The symbol code of the n-th character is n
// plus the parity bit.
const (
	alphanumericChars = ` !"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\]^_`
	numericChars      = "0123456789:;<=>?"
)

var (
	// Alphanumeric is the 7-bit alphabet used by the first physical track.
	Alphanumeric = newAlphabet(7, alphanumericChars)

	// Numeric is the 5-bit alphabet shared by the second and third tracks.
	Numeric = newAlphabet(5, numericChars)
)

func newAlphabet(width int, chars string) *Alphabet {
	a := &Alphabet{Bits: width}
	for i := range a.toCode {
		a.toCode[i] = -1
		a.toChar[i] = -1
	}
	for i := 0; i < len(chars); i++ {
		code := byte(i)
		if bits.OnesCount8(code)%2 == 0 {
			code |= 1 << (width - 1) // odd parity
		}
		a.toCode[chars[i]] = int16(code)
		a.toChar[code] = int16(chars[i])
	}
	return a
}

// CharToCode maps a character to its symbol code.
// The second result is false for characters outside the alphabet.
func (a *Alphabet) CharToCode(c byte) (byte, bool) {
	v := a.toCode[c]
	if v < 0 {
		return 0, false
	}
	return byte(v), true
}

// CodeToChar maps a symbol code to its character.
// The second result is false for codes with no mapping.
func (a *Alphabet) CodeToChar(code byte) (byte, bool) {
	v := a.toChar[code]
	if v < 0 {
		return 0, false
	}
	return byte(v), true
}
