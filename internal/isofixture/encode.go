// Package isofixture assembles synthetic ISO 9660 images in memory so
// pkg/iso9660's tests can exercise the decoder against known byte layouts
// without shipping binary fixture files. The low-level encoders here mirror
// the teacher's ioutil.go (PutBothUint16/32, strA/strD padding) read
// backwards into writers; the tree builder in builder.go composes them into
// whole volumes.
package isofixture

import (
	"encoding/binary"
	"strings"
	"time"
)

// PutBothUint16 appends a SUSP/ECMA-119 both-endian 16-bit field (LE half
// then BE half) to buf, mirroring the teacher's putBothUint16.
func PutBothUint16(buf []byte, v uint16) []byte {
	var le, be [2]byte
	binary.LittleEndian.PutUint16(le[:], v)
	binary.BigEndian.PutUint16(be[:], v)
	return append(append(buf, le[:]...), be[:]...)
}

// PutBothUint32 is the 32-bit analogue of PutBothUint16.
func PutBothUint32(buf []byte, v uint32) []byte {
	var le, be [4]byte
	binary.LittleEndian.PutUint32(le[:], v)
	binary.BigEndian.PutUint32(be[:], v)
	return append(append(buf, le[:]...), be[:]...)
}

// PadStrD encodes s as a fixed-width strD (d-character) field, truncating or
// space-padding to exactly n bytes.
func PadStrD(s string, n int) []byte {
	return padField(s, n)
}

// PadStrA encodes s as a fixed-width strA (a-character) field.
func PadStrA(s string, n int) []byte {
	return padField(s, n)
}

func padField(s string, n int) []byte {
	s = strings.ToUpper(s)
	if len(s) > n {
		s = s[:n]
	}
	return []byte(s + strings.Repeat(" ", n-len(s)))
}

// EncodeEntryDateTime is the inverse of isodate.EntryDateTime.Timestamp: it
// encodes t (assumed UTC) as the 7-byte "recording date and time" field. The
// zero time.Time encodes as the all-zero field ECMA-119 defines as
// "unspecified".
func EncodeEntryDateTime(t time.Time) [7]byte {
	var edt [7]byte
	if t.IsZero() {
		return edt
	}
	u := t.UTC()
	edt[0] = byte(u.Year() - 1900)
	edt[1] = byte(u.Month())
	edt[2] = byte(u.Day())
	edt[3] = byte(u.Hour())
	edt[4] = byte(u.Minute())
	edt[5] = byte(u.Second())
	edt[6] = 0
	return edt
}

// EncodeDecDateTime is the inverse of isodate.DecDateTime.Timestamp,
// producing the 17-byte ASCII "YYYYMMDDHHMMSSccZ" field the PVD/SVD and
// RRIP long-form TF timestamps use.
func EncodeDecDateTime(t time.Time) [17]byte {
	var ddt [17]byte
	if t.IsZero() {
		copy(ddt[:16], []byte(strings.Repeat("0", 16)))
		return ddt
	}
	copy(ddt[:14], []byte(t.UTC().Format("20060102150405")))
	copy(ddt[14:16], []byte("00"))
	ddt[16] = 0
	return ddt
}

// EncodeSUSPEntry frames payload with the 4-byte SUSP entry header
// (2-byte tag, length byte, version byte) common to every System Use entry.
func EncodeSUSPEntry(tag string, version byte, payload []byte) []byte {
	buf := []byte{tag[0], tag[1], byte(4 + len(payload)), version}
	return append(buf, payload...)
}

// EncodeSP builds the SUSP "SP" sharing protocol entry.
func EncodeSP(lenSkp byte) []byte {
	return EncodeSUSPEntry("SP", 1, []byte{0xBE, 0xEF, lenSkp})
}

// EncodeER builds the SUSP "ER" extensions reference entry.
func EncodeER(identifier, descriptor, source string, version byte) []byte {
	payload := []byte{byte(len(identifier)), byte(len(descriptor)), byte(len(source)), version}
	payload = append(payload, identifier...)
	payload = append(payload, descriptor...)
	payload = append(payload, source...)
	return EncodeSUSPEntry("ER", 1, payload)
}

// EncodeCE builds the SUSP "CE" continuation area entry.
func EncodeCE(start, offset, length uint32) []byte {
	var payload []byte
	payload = PutBothUint32(payload, start)
	payload = PutBothUint32(payload, offset)
	payload = PutBothUint32(payload, length)
	return EncodeSUSPEntry("CE", 1, payload)
}

// EncodeST builds the SUSP "ST" terminator entry.
func EncodeST() []byte {
	return EncodeSUSPEntry("ST", 1, nil)
}

// EncodePX builds the Rock Ridge "PX" entry. serial is omitted from the
// payload when nil, producing the RRIP 1.10-compatible 32-byte form.
func EncodePX(rawMode, nlink, uid, gid uint32, serial *uint32) []byte {
	var p []byte
	p = PutBothUint32(p, rawMode)
	p = PutBothUint32(p, nlink)
	p = PutBothUint32(p, uid)
	p = PutBothUint32(p, gid)
	if serial != nil {
		p = PutBothUint32(p, *serial)
	}
	return EncodeSUSPEntry("PX", 1, p)
}

// EncodePN builds the Rock Ridge "PN" device number entry.
func EncodePN(devTHigh, devTLow uint32) []byte {
	var p []byte
	p = PutBothUint32(p, devTHigh)
	p = PutBothUint32(p, devTLow)
	return EncodeSUSPEntry("PN", 1, p)
}

// TFTimes selects which timestamps a TF entry carries, in the field order
// rrip.decodeTF expects: creation, modify, access, attributes, backup,
// expiration, effective.
type TFTimes struct {
	Creation, Modify, Access, Attributes, Backup, Expiration, Effective *time.Time
	LongForm                                                            bool
}

// EncodeTF builds the Rock Ridge "TF" timestamps entry.
func EncodeTF(t TFTimes) []byte {
	var flags byte
	fields := []struct {
		bit byte
		t   *time.Time
	}{
		{1 << 0, t.Creation},
		{1 << 1, t.Modify},
		{1 << 2, t.Access},
		{1 << 3, t.Attributes},
		{1 << 4, t.Backup},
		{1 << 5, t.Expiration},
		{1 << 6, t.Effective},
	}
	if t.LongForm {
		flags |= 1 << 7
	}

	payload := []byte{0}
	for _, f := range fields {
		if f.t == nil {
			continue
		}
		flags |= f.bit
		if t.LongForm {
			ddt := EncodeDecDateTime(*f.t)
			payload = append(payload, ddt[:]...)
		} else {
			edt := EncodeEntryDateTime(*f.t)
			payload = append(payload, edt[:]...)
		}
	}
	payload[0] = flags
	return EncodeSUSPEntry("TF", 1, payload)
}

// EncodeNM builds one Rock Ridge "NM" alternate-name piece.
func EncodeNM(data string, continued bool) []byte {
	var flags byte
	if continued {
		flags = 1
	}
	payload := append([]byte{flags}, data...)
	return EncodeSUSPEntry("NM", 1, payload)
}

// EncodeSL builds one Rock Ridge "SL" symlink entry carrying a single
// component.
func EncodeSL(compFlags byte, data string, entryContinue bool) []byte {
	return EncodeSLMulti([]SLComponent{{Flags: compFlags, Data: data}}, entryContinue)
}

// SLComponent is one (flags, data) pair to pack into an SL entry via
// EncodeSLMulti.
type SLComponent struct {
	Flags byte
	Data  string
}

// EncodeSLMulti builds one Rock Ridge "SL" entry packing several
// components into a single entry's payload, the way mkisofs packs short
// symlink targets (up to 250 payload bytes per entry).
func EncodeSLMulti(components []SLComponent, entryContinue bool) []byte {
	var entryFlags byte
	if entryContinue {
		entryFlags = 1
	}
	payload := []byte{entryFlags}
	for _, c := range components {
		payload = append(payload, c.Flags, byte(len(c.Data)))
		payload = append(payload, c.Data...)
	}
	return EncodeSUSPEntry("SL", 1, payload)
}

// EncodeCL builds the Rock Ridge "CL" child-link entry.
func EncodeCL(lba uint32) []byte {
	var p []byte
	p = PutBothUint32(p, lba)
	return EncodeSUSPEntry("CL", 1, p)
}

// EncodeRE builds the Rock Ridge "RE" relocated-directory marker.
func EncodeRE() []byte {
	return EncodeSUSPEntry("RE", 1, nil)
}

// EncodeDirectoryRecord assembles one ECMA-119 directory record, computing
// and filling in its own length byte (buf[0]) last. identifier is the raw
// (undecoded) name bytes — a single 0x00 or 0x01 byte for "." / "..".
// systemUse, if non-empty, is appended verbatim after the identifier's
// padding byte; callers building Rock Ridge records concatenate their SUSP
// entries themselves before calling this.
func EncodeDirectoryRecord(extAttrLen byte, start, dataLength uint32, recorded time.Time, flags byte, fileUnitSize, interleaveGap byte, volSeq uint16, identifier, systemUse []byte) []byte {
	buf := []byte{0, extAttrLen}
	buf = PutBothUint32(buf, start)
	buf = PutBothUint32(buf, dataLength)
	edt := EncodeEntryDateTime(recorded)
	buf = append(buf, edt[:]...)
	buf = append(buf, flags, fileUnitSize, interleaveGap)
	buf = PutBothUint16(buf, volSeq)
	buf = append(buf, byte(len(identifier)))
	buf = append(buf, identifier...)
	if len(identifier)%2 == 0 {
		buf = append(buf, 0)
	}
	buf = append(buf, systemUse...)
	if len(buf) > 255 {
		panic("isofixture: directory record exceeds 255 bytes")
	}
	buf[0] = byte(len(buf))
	return buf
}
