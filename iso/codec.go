package iso

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/DanielClxpz/MSR-CLI-Tool/bitstream"
)

// InvalidCharacterError reports a character that the target alphabet cannot
// encode.
type InvalidCharacterError struct {
	Char byte
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("character %q cannot be encoded on this track", e.Char)
}

// Encode packs text into a track bitstream: one symbol code per character,
// followed by a trailing LRC symbol when text is non-empty. There is no
// maximum track length here; the device rejects what does not fit.
func Encode(a *Alphabet, text string) ([]byte, error) {
	s := bitstream.New(nil)
	codes := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		code, ok := a.CharToCode(text[i])
		if !ok {
			return nil, &InvalidCharacterError{Char: text[i]}
		}
		codes = append(codes, code)
		s.Write(a.Bits, uint32(code))
	}
	if len(codes) > 0 {
		s.Write(a.Bits, uint32(lrc(a.Bits, codes)))
	}
	return s.Bytes(), nil
}

// lrc computes the longitudinal redundancy symbol over the data codes.
// Every bit column, the codes' own parity column included, is reduced to its
// parity; column 0 is then overwritten so the LRC symbol itself has an even
// number of set bits.
func lrc(width int, codes []byte) byte {
	var sym byte
	for i := 0; i < width; i++ {
		ones := 0
		for _, c := range codes {
			ones += int(c >> i & 1)
		}
		if ones%2 == 1 {
			sym |= 1 << i
		}
	}
	sym &^= 1
	if bits.OnesCount8(sym)%2 == 1 {
		sym |= 1
	}
	return sym
}

// Decode unpacks raw track bytes into a string, reading symbols until the
// bitstream is exhausted. Codes with no mapping become CorruptSentinel; this
// is not fatal, classification decides what to make of it.
func Decode(a *Alphabet, raw []byte) string {
	s := bitstream.New(raw)
	var b strings.Builder
	for {
		code, err := s.Read(a.Bits)
		if err != nil {
			break
		}
		if c, ok := a.CodeToChar(byte(code)); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte(CorruptSentinel)
		}
	}
	return b.String()
}

// Status classifies the content of a decoded track.
type Status int

const (
	StatusOK Status = iota
	StatusNoData
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNoData:
		return "No Data"
	case StatusCorrupt:
		return "Corrupt Data"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Track is the classified result of decoding one physical track.
// Data includes the start and end sentinels when Status is StatusOK.
type Track struct {
	Status Status
	Data   string
}

// Classify locates the start and end sentinels in a decoded string. Both
// absent or out of order means no usable content: an empty string is an empty
// track, anything else is noise. A corruption sentinel between the delimiters
// also voids the track.
func Classify(decoded string) Track {
	start := strings.IndexByte(decoded, StartSentinel)
	end := strings.IndexByte(decoded, EndSentinel)
	if start < 0 || end < 0 || end < start {
		if len(decoded) == 0 {
			return Track{Status: StatusNoData}
		}
		return Track{Status: StatusCorrupt}
	}
	content := decoded[start : end+1]
	if strings.IndexByte(content, CorruptSentinel) >= 0 {
		return Track{Status: StatusCorrupt}
	}
	return Track{Status: StatusOK, Data: content}
}

// DecodeTrack decodes and classifies raw track bytes in one step.
func DecodeTrack(a *Alphabet, raw []byte) Track {
	return Classify(Decode(a, raw))
}
