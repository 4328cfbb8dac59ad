package rrip

import (
	"encoding/binary"
	"os"

	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

// PosixEntry is the RRIP "PX" entry: POSIX mode, link count, uid, gid and
// (when present) a serial number used as the inode number. The serial
// number field is optional per RRIP 1.12; a disc written against the
// earlier 1.10 draft omits it, so PX payloads of either 32 or 40 bytes
// (after the 4-byte SUSP header) are both accepted.
type PosixEntry struct {
	Mode   os.FileMode
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Serial uint32
	HasSerial bool
}

func (px *PosixEntry) Tag() string { return "PX" }

func bothUint32(b []byte) (uint32, bool) {
	if len(b) < 8 {
		return 0, false
	}
	le := binary.LittleEndian.Uint32(b[0:4])
	be := binary.BigEndian.Uint32(b[4:8])
	return le, le == be
}

func decodePX(payload []byte, version byte) (susp.SystemUseEntry, error) {
	if len(payload) < 32 {
		return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "PX payload truncated"}
	}

	rawMode, ok := bothUint32(payload[0:8])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PX mode"}
	}
	nlink, ok := bothUint32(payload[8:16])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PX nlink"}
	}
	uid, ok := bothUint32(payload[16:24])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PX uid"}
	}
	gid, ok := bothUint32(payload[24:32])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PX gid"}
	}

	px := &PosixEntry{
		Mode:  posixModeToGo(rawMode),
		Nlink: nlink,
		Uid:   uid,
		Gid:   gid,
	}

	if len(payload) >= 40 {
		serial, ok := bothUint32(payload[32:40])
		if !ok {
			return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PX serial"}
		}
		px.Serial = serial
		px.HasSerial = true
	}

	return px, nil
}

// posixModeToGo translates the raw st_mode bits stored on disc (POSIX
// S_IF*/S_ISUID etc) into an os.FileMode. Only the type bits the decoder
// cares about (directory, symlink, regular, device, fifo, socket) and the
// permission bits are preserved; this decoder never needs to re-encode
// the value, so the mapping is one-way.
func posixModeToGo(raw uint32) os.FileMode {
	const (
		sIFMT   = 0170000
		sIFSOCK = 0140000
		sIFLNK  = 0120000
		sIFREG  = 0100000
		sIFBLK  = 0060000
		sIFDIR  = 0040000
		sIFCHR  = 0020000
		sIFIFO  = 0010000
	)

	mode := os.FileMode(raw & 0777)
	switch raw & sIFMT {
	case sIFDIR:
		mode |= os.ModeDir
	case sIFLNK:
		mode |= os.ModeSymlink
	case sIFBLK:
		mode |= os.ModeDevice
	case sIFCHR:
		mode |= os.ModeDevice | os.ModeCharDevice
	case sIFIFO:
		mode |= os.ModeNamedPipe
	case sIFSOCK:
		mode |= os.ModeSocket
	}
	return mode
}

// DecodePosixEntry returns the PX entry among entries, if any.
func DecodePosixEntry(entries []susp.SystemUseEntry) (*PosixEntry, bool) {
	for _, entry := range entries {
		if px, ok := entry.(*PosixEntry); ok {
			return px, true
		}
	}
	return nil, false
}
