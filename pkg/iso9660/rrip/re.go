package rrip

import "github.com/discreader/iso9660fs/pkg/iso9660/susp"

// RelocatedEntry is the RRIP "RE" entry, present on a directory that has
// been moved from its natural position (to satisfy ECMA-119's 8-level
// nesting cap) up near the root. A directory carrying RE must be hidden
// from the listing of the parent it was moved under and surfaced only
// through the CL placeholder at its original position. RE has no
// payload; its presence is the entire signal. Like CL, this is new —
// the teacher never modeled relocation.
type RelocatedEntry struct{}

func (re *RelocatedEntry) Tag() string { return "RE" }

func decodeRE(payload []byte, version byte) (susp.SystemUseEntry, error) {
	return &RelocatedEntry{}, nil
}

// IsRelocated reports whether entries contains an RE marker.
func IsRelocated(entries []susp.SystemUseEntry) bool {
	for _, entry := range entries {
		if _, ok := entry.(*RelocatedEntry); ok {
			return true
		}
	}
	return false
}
