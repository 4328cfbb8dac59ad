package iso9660

import (
	"encoding/binary"
	"unicode"
	"unicode/utf16"
)

// jolietEscapes holds the three escape sequences (Levels 1, 2, 3) ECMA-119
// permits an SVD to declare to mark itself as a Joliet volume. Joliet
// never uses a third-party UTF-16 codec for this — unicode/utf16 in the
// standard library is the whole of what's needed to turn UCS-2BE code
// units into runes; see DESIGN.md.
var jolietEscapes = [][3]byte{
	{0x25, 0x2f, 0x40}, // Level 1
	{0x25, 0x2f, 0x43}, // Level 2
	{0x25, 0x2f, 0x45}, // Level 3
}

// detectJoliet reports whether escapeSequences (the SVD's 32-byte escape
// sequence field) identifies one of the Joliet levels.
func detectJoliet(escapeSequences []byte) bool {
	for off := 0; off+3 <= len(escapeSequences); off += 3 {
		var chunk [3]byte
		copy(chunk[:], escapeSequences[off:off+3])
		for _, esc := range jolietEscapes {
			if chunk == esc {
				return true
			}
		}
	}
	return false
}

// decodeJoliet decodes a UCS-2BE encoded Joliet filename. buf must have
// even length; an odd length is a MalformedField. Code units are decoded
// as UCS-2 with no surrogate pairing: every surrogate code unit is
// replaced with U+FFFD unless cfg.StrictJoliet,
// in which case they are a MalformedField — spec.md §9's Open Question
// on Joliet surrogate handling, resolved this way since Joliet itself
// documents no pairing behavior for names (which in practice never need
// supplementary-plane code points).
func decodeJoliet(buf []byte, cfg *Config) (string, error) {
	if len(buf)%2 != 0 {
		return "", newErr(KindMalformedField, "odd-length Joliet string")
	}

	units := make([]uint16, len(buf)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(buf[2*i : 2*i+2])
	}

	if cfg != nil && cfg.StrictJoliet {
		for _, u := range units {
			if utf16.IsSurrogate(rune(u)) {
				return "", newErr(KindMalformedField, "unpaired Joliet surrogate")
			}
		}
	}

	runes := make([]rune, len(units))
	for i, u := range units {
		if utf16.IsSurrogate(rune(u)) {
			runes[i] = unicode.ReplacementChar
		} else {
			runes[i] = rune(u)
		}
	}
	return string(runes), nil
}
