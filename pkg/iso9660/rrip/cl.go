package rrip

import "github.com/discreader/iso9660fs/pkg/iso9660/susp"

// ChildLinkEntry is the RRIP "CL" entry. It appears on the placeholder
// directory record left behind at a deeply nested directory's original
// position (ECMA-119 caps directory nesting at 8 levels); it points at
// the LBA of the real directory, which was relocated up near the root
// and marked there with RE. No reference repo in this corpus decodes
// CL — the teacher's rrip package is write-only and never needed to
// model relocation at all — so this is built directly from the RRIP
// 1.12 field layout.
type ChildLinkEntry struct {
	LocationOfData uint32
}

func (cl *ChildLinkEntry) Tag() string { return "CL" }

func decodeCL(payload []byte, version byte) (susp.SystemUseEntry, error) {
	if len(payload) < 8 {
		return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "CL payload truncated"}
	}
	lba, ok := bothUint32(payload[0:8])
	if !ok {
		return nil, &susp.WalkError{Kind: "MalformedField", Detail: "CL location_of_data"}
	}
	return &ChildLinkEntry{LocationOfData: lba}, nil
}

// DecodeChildLink returns the CL entry among entries, if any.
func DecodeChildLink(entries []susp.SystemUseEntry) (*ChildLinkEntry, bool) {
	for _, entry := range entries {
		if cl, ok := entry.(*ChildLinkEntry); ok {
			return cl, true
		}
	}
	return nil, false
}
