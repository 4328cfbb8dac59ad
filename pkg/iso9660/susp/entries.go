package susp

import (
	"encoding/binary"
	"fmt"
)

func bothUint32(b []byte) (uint32, error) {
	if len(b) < 8 {
		return 0, &WalkError{Kind: "SuspTruncated", Detail: "both-endian uint32 truncated"}
	}
	le := binary.LittleEndian.Uint32(b[0:4])
	be := binary.BigEndian.Uint32(b[4:8])
	if le != be {
		return 0, &WalkError{Kind: "MalformedField", Detail: fmt.Sprintf("both-endian uint32 mismatch le=%d be=%d", le, be)}
	}
	return le, nil
}

// SharingProtocolEntry is the "SP" entry: present (only) on the root
// directory's "." record, it declares LEN_SKP, the number of bytes to
// skip at the start of every subsequent directory record's System Use
// area before SUSP entries begin.
type SharingProtocolEntry struct {
	LenSkp byte
}

func (sp *SharingProtocolEntry) Tag() string { return "SP" }

func decodeSP(payload []byte, version byte) (SystemUseEntry, error) {
	if len(payload) < 3 {
		return nil, &WalkError{Kind: "SuspTruncated", Detail: "SP payload truncated"}
	}
	if payload[0] != 0xBE || payload[1] != 0xEF {
		return nil, &WalkError{Kind: "MalformedField", Detail: "SP check bytes"}
	}
	return &SharingProtocolEntry{LenSkp: payload[2]}, nil
}

// ExtensionsReferenceEntry is the "ER" entry identifying a SUSP extension
// (e.g. Rock Ridge) in use on this hierarchy.
type ExtensionsReferenceEntry struct {
	Version    byte
	Identifier string
	Descriptor string
	Source     string
}

func (er *ExtensionsReferenceEntry) Tag() string { return "ER" }

func decodeER(payload []byte, version byte) (SystemUseEntry, error) {
	if len(payload) < 4 {
		return nil, &WalkError{Kind: "SuspTruncated", Detail: "ER payload truncated"}
	}
	idLen := int(payload[0])
	descLen := int(payload[1])
	srcLen := int(payload[2])
	erVersion := payload[3]
	rest := payload[4:]

	if idLen+descLen+srcLen > len(rest) {
		return nil, &WalkError{Kind: "SuspTruncated", Detail: "ER string lengths exceed payload"}
	}

	return &ExtensionsReferenceEntry{
		Version:    erVersion,
		Identifier: string(rest[:idLen]),
		Descriptor: string(rest[idLen : idLen+descLen]),
		Source:     string(rest[idLen+descLen : idLen+descLen+srcLen]),
	}, nil
}

func decodeCEKey(payload []byte) (*continuationKey, error) {
	if len(payload) < 24 {
		return nil, &WalkError{Kind: "SuspTruncated", Detail: "CE payload truncated"}
	}
	start, err := bothUint32(payload[0:8])
	if err != nil {
		return nil, err
	}
	offset, err := bothUint32(payload[8:16])
	if err != nil {
		return nil, err
	}
	length, err := bothUint32(payload[16:24])
	if err != nil {
		return nil, err
	}
	return &continuationKey{start: start, offset: offset, length: length}, nil
}

// DefaultRegistry returns the decoders for the plain-SUSP entries this
// package understands (SP, ER). CE and ST are handled directly by Walk,
// never through the registry. Callers layering Rock Ridge on top (see
// pkg/iso9660/rrip) extend a copy of this map with PX/PN/TF/NM/SL/CL/RE.
func DefaultRegistry() map[string]EntryDecoder {
	return map[string]EntryDecoder{
		"SP": decodeSP,
		"ER": decodeER,
	}
}
