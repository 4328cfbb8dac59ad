package iso9660

import (
	"encoding/binary"
	"io"
	"strings"
)

// strARunes and strDRunes enumerate the ECMA-119 strand-a / strand-d
// character sets. Nothing in this package reads them: decoded identifiers
// are not validated against either set. This decoder never emits
// strings, so no corresponding encoders exist here.
var (
	strARunes map[rune]struct{}
	strDRunes map[rune]struct{}
)

func init() {
	strARunes = make(map[rune]struct{})
	for _, r := range []rune{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H',
		'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U',
		'V', 'W', 'X', 'Y', 'Z', '0', '1', '2', '3', '4', '5', '6', '7',
		'8', '9', '_', '!', '"', '%', '&', '\'', '(', ')', '*', '+', ',',
		'-', '.', '/', ':', ';', '<', '=', '>', '?', ' '} {
		strARunes[r] = struct{}{}
	}

	strDRunes = make(map[rune]struct{})
	for _, r := range []rune{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H',
		'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U',
		'V', 'W', 'X', 'Y', 'Z', '0', '1', '2', '3', '4', '5', '6', '7',
		'8', '9', '_', ' '} {
		strDRunes[r] = struct{}{}
	}
}

// decodeStrA decodes an ECMA-119 strand-a (a-character) field, trimming
// trailing spaces. Invalid runes are tolerated (some encoders pad with
// garbage); this decoder never rejects on charset violations alone since
// the spec only requires strand fields to be "ASCII subset".
func decodeStrA(buf []byte) string {
	return strings.TrimRight(string(buf), " ")
}

// decodeStrD decodes an ECMA-119 strand-d (d-character) field.
func decodeStrD(buf []byte) string {
	return strings.TrimRight(string(buf), " ")
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, wrapErr(KindIo, "read byte", err)
	}
	return buf[0], nil
}

func readExpectedByte(r io.Reader, expected byte, desc string) error {
	b, err := readByte(r)
	if err != nil {
		return err
	}
	if b != expected {
		return newErr(KindNotAnIso, desc)
	}
	return nil
}

func readExpectedString(r io.Reader, expected string, desc string) error {
	buf := make([]byte, len(expected))
	if _, err := io.ReadFull(r, buf); err != nil {
		return wrapErr(KindIo, desc, err)
	}
	if string(buf) != expected {
		return newErr(KindNotAnIso, desc)
	}
	return nil
}

// getBothUint16 decodes a both-endian 16-bit field. Strict mode (the
// default) requires the LE and BE halves to agree; lenient mode accepts
// the LE half alone and warns.
func getBothUint16(r io.Reader, cfg *Config) (uint16, error) {
	var le, be uint16
	if err := binary.Read(r, binary.LittleEndian, &le); err != nil {
		return 0, wrapErr(KindIo, "both-endian uint16 LE", err)
	}
	if err := binary.Read(r, binary.BigEndian, &be); err != nil {
		return 0, wrapErr(KindIo, "both-endian uint16 BE", err)
	}
	if le != be {
		if cfg != nil && !cfg.StrictBothEndian {
			cfg.warnf("both-endian uint16 mismatch (le=%d be=%d), accepting LE under lenient config", le, be)
			return le, nil
		}
		return 0, newErr(KindMalformedField, "both-endian uint16 mismatch")
	}
	return le, nil
}

// getBothUint32 is the 32-bit analogue of getBothUint16.
func getBothUint32(r io.Reader, cfg *Config) (uint32, error) {
	var le, be uint32
	if err := binary.Read(r, binary.LittleEndian, &le); err != nil {
		return 0, wrapErr(KindIo, "both-endian uint32 LE", err)
	}
	if err := binary.Read(r, binary.BigEndian, &be); err != nil {
		return 0, wrapErr(KindIo, "both-endian uint32 BE", err)
	}
	if le != be {
		if cfg != nil && !cfg.StrictBothEndian {
			cfg.warnf("both-endian uint32 mismatch (le=%d be=%d), accepting LE under lenient config", le, be)
			return le, nil
		}
		return 0, newErr(KindMalformedField, "both-endian uint32 mismatch")
	}
	return le, nil
}

func unpad(r io.Reader, count int) error {
	if _, err := io.CopyN(io.Discard, r, int64(count)); err != nil {
		return wrapErr(KindIo, "skip padding", err)
	}
	return nil
}

// bytesToSectors calculates the number of LogicalBlockSize sectors needed
// to hold n bytes; zero bytes still occupies one sector.
func bytesToSectors(n uint32) uint32 {
	sectors := n / LogicalBlockSize
	if n%LogicalBlockSize != 0 || sectors == 0 {
		sectors++
	}
	return sectors
}

type countingReader struct {
	r io.Reader
	n int64
}

func newCountingReader(r io.Reader) *countingReader {
	return &countingReader{r: r}
}

func (cr *countingReader) Read(buf []byte) (int, error) {
	n, err := cr.r.Read(buf)
	cr.n += int64(n)
	return n, err
}

func (cr *countingReader) Consumed() int64 {
	return cr.n
}
