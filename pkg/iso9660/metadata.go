package iso9660

import (
	"os"
	"time"
)

// Kind classifies a decoded directory Entry.
type Kind int

const (
	KindFileEntry Kind = iota
	KindDirectoryEntry
	KindSymlinkEntry
	KindOtherEntry
)

// Metadata is the attribute set the decoder exposes for an Entry,
// populated from the primary directory record and, when present, Rock
// Ridge's PX/TF/PN entries.
type Metadata struct {
	Kind       Kind
	Size       uint64
	Mode       os.FileMode
	Nlink      uint32
	Uid        uint32
	Gid        uint32
	Serial     uint32
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
	DeviceHigh uint32
	DeviceLow  uint32

	// Relocated is true when this Entry's Start was redirected by a
	// Rock Ridge CL entry (spec.md §4.6's deep relocation mechanism)
	// rather than taken directly from the directory record.
	Relocated bool
}

// Entry is one resolved directory entry: a name (in the active
// namespace) plus its Metadata and the information needed to read its
// contents (Start for files, SymlinkTarget for symlinks). For a deeply
// nested directory relocated per Rock Ridge's CL/RE mechanism (spec.md
// §4.6), Start already points at the relocated extent — buildEntries
// resolves the CL indirection before an Entry is ever returned, and
// drops RE-marked entries from their relocated parent's own listing.
type Entry struct {
	Name          string
	Metadata      Metadata
	Start         LogicalBlockAddress
	SymlinkTarget string
}

func (e *Entry) IsDir() bool {
	return e.Metadata.Kind == KindDirectoryEntry
}

func (e *Entry) IsSymlink() bool {
	return e.Metadata.Kind == KindSymlinkEntry
}
