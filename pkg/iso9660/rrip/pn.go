package rrip

import "github.com/discreader/iso9660fs/pkg/iso9660/susp"

// DeviceNumberEntry is the RRIP "PN" entry, present on character and
// block device nodes alongside a PX whose mode marks the entry as such.
// The teacher's writer-oriented rrip package never had a reason to emit
// PN (it never modeled device nodes at all), so this decoder is built
// directly from the RRIP 1.12 field layout rather than adapted from an
// existing file.
type DeviceNumberEntry struct {
	DevTHigh uint32
	DevTLow  uint32
}

func (pn *DeviceNumberEntry) Tag() string { return "PN" }

func decodePN(payload []byte, version byte) (susp.SystemUseEntry, error) {
	if len(payload) < 16 {
		return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "PN payload truncated"}
	}
	high, ok := bothUint32(payload[0:8])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PN dev_t_high"}
	}
	low, ok := bothUint32(payload[8:16])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "PN dev_t_low"}
	}
	return &DeviceNumberEntry{DevTHigh: high, DevTLow: low}, nil
}

// DecodeDeviceNumber returns the PN entry among entries, if any.
func DecodeDeviceNumber(entries []susp.SystemUseEntry) (*DeviceNumberEntry, bool) {
	for _, entry := range entries {
		if pn, ok := entry.(*DeviceNumberEntry); ok {
			return pn, true
		}
	}
	return nil, false
}
