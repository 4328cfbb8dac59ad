package rrip

import (
	"os"
	"strings"

	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

// SymlinkComponentFlag classifies one component of an RRIP "SL" symlink
// target: a literal path segment, or one of the special "." / ".." /
// root markers, which carry no data bytes.
type SymlinkComponentFlag byte

const (
	SymlinkComponentFlagContinue SymlinkComponentFlag = 1 << iota
	SymlinkComponentFlagCurrent
	SymlinkComponentFlagParent
	SymlinkComponentFlagRoot
)

const slEntryContinue = 1 << 0

// SymlinkComponent is one (flags, data) pair packed into an SL entry's
// payload. A component's own Continue flag means its data is not yet
// complete: the next component (in this entry, or in the following SL
// entry if this was the last component here) holds the rest, with no
// path separator in between.
type SymlinkComponent struct {
	Flags SymlinkComponentFlag
	Data  string
}

// SymlinkPart is one decoded SL entry: the components it packs (RRIP
// allows several short components per entry, up to the 250-byte payload
// limit — this is how mkisofs encodes most symlink targets) plus the
// entry-level flag for whether another SL entry continues the sequence.
type SymlinkPart struct {
	Components []SymlinkComponent
	Continue   bool
}

func (sl *SymlinkPart) Tag() string { return "SL" }

func decodeSL(payload []byte, version byte) (susp.SystemUseEntry, error) {
	if len(payload) < 1 {
		return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "SL payload truncated"}
	}

	entryFlags := payload[0]
	rest := payload[1:]

	var components []SymlinkComponent
	for len(rest) > 0 {
		if len(rest) < 2 {
			return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "SL component truncated"}
		}
		compFlags := SymlinkComponentFlag(rest[0])
		compLen := int(rest[1])
		if len(rest) < 2+compLen {
			return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "SL component data truncated"}
		}
		components = append(components, SymlinkComponent{
			Flags: compFlags,
			Data:  string(rest[2 : 2+compLen]),
		})
		rest = rest[2+compLen:]
	}

	return &SymlinkPart{
		Components: components,
		Continue:   entryFlags&slEntryContinue != 0,
	}, nil
}

// AssembleSymlink reassembles the POSIX path from consecutive SL parts
// among entries, stopping at the first entry whose Continue flag is
// unset. maxLen bounds the assembled byte count the same way
// AssembleName does.
func AssembleSymlink(entries []susp.SystemUseEntry, maxLen int) (target string, ok bool, assembledTooLarge bool) {
	var parts []string
	var partial []byte
	size := 0

	flush := func() {
		if len(partial) > 0 || len(parts) == 0 {
			parts = append(parts, string(partial))
			partial = nil
		}
	}

	for _, entry := range entries {
		part, isSL := entry.(*SymlinkPart)
		if !isSL {
			continue
		}

		for _, comp := range part.Components {
			switch {
			case comp.Flags&SymlinkComponentFlagCurrent != 0:
				parts = append(parts, ".")
			case comp.Flags&SymlinkComponentFlagParent != 0:
				parts = append(parts, "..")
			case comp.Flags&SymlinkComponentFlagRoot != 0:
				parts = append(parts, "")
			default:
				size += len(comp.Data)
				if size > maxLen {
					return "", false, true
				}
				partial = append(partial, comp.Data...)
				if comp.Flags&SymlinkComponentFlagContinue == 0 {
					flush()
				}
			}
		}

		if !part.Continue {
			return strings.Join(parts, string(os.PathSeparator)), true, false
		}
	}
	return "", false, false
}
