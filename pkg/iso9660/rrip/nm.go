package rrip

import "github.com/discreader/iso9660fs/pkg/iso9660/susp"

const nmContinue = 1 << 0

// NamePart is one piece of the RRIP "NM" alternate name. A name longer
// than fits in a single SUSP entry (250 bytes of payload) is split across
// several consecutive NM entries, each but the last marked Continue.
type NamePart struct {
	Data     string
	Continue bool
}

func (nm *NamePart) Tag() string { return "NM" }

func decodeNM(payload []byte, version byte) (susp.SystemUseEntry, error) {
	if len(payload) < 1 {
		return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "NM payload truncated"}
	}
	flags := payload[0]
	return &NamePart{
		Data:     string(payload[1:]),
		Continue: flags&nmContinue != 0,
	}, nil
}

// AssembleName concatenates consecutive NM parts found among entries into
// the full alternate name, stopping at the first non-continuing part.
// maxLen bounds the assembled result (the caller passes its configured
// Config.MaxAssembledField) so a maliciously long NM chain cannot grow
// the name without bound; exceeding it is reported via the ok=false
// assembledTooLarge return rather than silently truncating.
func AssembleName(entries []susp.SystemUseEntry, maxLen int) (name string, ok bool, assembledTooLarge bool) {
	var b []byte
	for _, entry := range entries {
		part, isNM := entry.(*NamePart)
		if !isNM {
			continue
		}
		b = append(b, part.Data...)
		if len(b) > maxLen {
			return "", false, true
		}
		if !part.Continue {
			return string(b), true, false
		}
	}
	return "", false, false
}
