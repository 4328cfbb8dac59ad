// Copyright © 2019 NVIDIA Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iso9660

import (
	"os"

	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

// readDirectoryRecords decodes every record in the extent [start,
// start+bytesToSectors(length)) sector by sector, honoring ECMA-119's
// rule that no record crosses a sector boundary: a record length byte of
// 0 means "the rest of this sector is padding", and decoding resumes at
// the next sector. skipBytes is SUSP's LEN_SKP as learned once from the
// root directory's "." record (0 when that record carries no SP entry).
func readDirectoryRecords(bs BlockSource, start LogicalBlockAddress, length uint32, cfg *Config, skipBytes byte) ([]*DirectoryRecord, error) {
	if length%LogicalBlockSize != 0 {
		return nil, wrapErrf(KindDirectoryNotMultipleOfSector, "directory extent at LBA %d has length %d, not a multiple of %d", start, length, LogicalBlockSize)
	}
	sectors := bytesToSectors(length)
	cont := continuationReaderFor(bs)

	var records []*DirectoryRecord
	for s := uint32(0); s < sectors; s++ {
		sector, err := bs.ReadSector(start + LogicalBlockAddress(s))
		if err != nil {
			return nil, err
		}

		off := 0
		for off < len(sector) {
			recLen := int(sector[off])
			if recLen == 0 {
				break // rest of sector is padding
			}
			if off+recLen > len(sector) {
				return nil, wrapErrf(KindRecordCrossesSector, "record at sector %d offset %d length %d", s, off, recLen)
			}

			rec, err := decodeDirectoryRecord(sector[off:off+recLen], cfg, skipBytes, cont)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
			off += recLen
		}
	}

	return records, nil
}

// detectSkipBytes looks for an SP entry among the first record's
// (necessarily the "." record's) System Use entries.
func detectSkipBytes(dotRecord *DirectoryRecord) byte {
	for _, entry := range dotRecord.SystemUse {
		if sp, ok := entry.(*susp.SharingProtocolEntry); ok {
			return sp.LenSkp
		}
	}
	return 0
}

// buildEntries resolves raw DirectoryRecords (as decoded by
// readDirectoryRecords) into Entry values: "." / ".." are dropped,
// multi-extent files (FileFlagNonTerminal) are merged into a single
// Entry, and the name/attributes are resolved according to namespace and
// Rock Ridge presence.
//
// useRockRidge selects RRIP NM/PX/TF/SL/PN over the plain ISO 9660 or
// Joliet identifier and attributes; cfg.StripVersionSuffix controls
// whether a primary-namespace ";1" version suffix is trimmed.
func buildEntries(bs BlockSource, records []*DirectoryRecord, cfg *Config, namespace Namespace, useRockRidge bool) ([]Entry, error) {
	var merged []*DirectoryRecord
	for _, rec := range records {
		if rec.IsSelf() || rec.IsParent() {
			continue
		}
		if len(merged) > 0 {
			prev := merged[len(merged)-1]
			if prev.Flags&FileFlagNonTerminal != 0 {
				prev.DataLength += rec.DataLength
				prev.Flags = prev.Flags&^FileFlagNonTerminal | rec.Flags&FileFlagNonTerminal
				continue
			}
		}
		merged = append(merged, rec)
	}

	var entries []Entry
	for _, rec := range merged {
		if useRockRidge && rrip.IsRelocated(rec.SystemUse) {
			continue // RE: hidden from this listing, reachable only via CL
		}

		entry, err := resolveEntry(bs, rec, cfg, namespace, useRockRidge)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func resolveEntry(bs BlockSource, rec *DirectoryRecord, cfg *Config, namespace Namespace, useRockRidge bool) (Entry, error) {
	name, err := resolveName(rec, cfg, namespace, useRockRidge)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Name:  name,
		Start: rec.Start,
		Metadata: Metadata{
			Size:    uint64(rec.DataLength),
			ModTime: rec.Recorded,
		},
	}

	isDir := rec.Flags&FileFlagDir != 0
	entry.Metadata.Kind = KindFileEntry
	if isDir {
		entry.Metadata.Kind = KindDirectoryEntry
	}

	if useRockRidge {
		if err := applyRockRidgeMetadata(bs, &entry, rec, cfg, isDir); err != nil {
			return Entry{}, err
		}
	} else if isDir {
		entry.Metadata.Mode = os.ModeDir | 0555
		entry.Metadata.Nlink = 1
	} else {
		entry.Metadata.Mode = 0444
		entry.Metadata.Nlink = 1
	}

	return entry, nil
}

func applyRockRidgeMetadata(bs BlockSource, entry *Entry, rec *DirectoryRecord, cfg *Config, isDir bool) error {
	if px, ok := rrip.DecodePosixEntry(rec.SystemUse); ok {
		entry.Metadata.Mode = px.Mode
		entry.Metadata.Nlink = px.Nlink
		entry.Metadata.Uid = px.Uid
		entry.Metadata.Gid = px.Gid
		entry.Metadata.Serial = px.Serial
		if px.Mode&os.ModeSymlink != 0 {
			entry.Metadata.Kind = KindSymlinkEntry
		} else if px.Mode&(os.ModeDevice|os.ModeNamedPipe|os.ModeSocket) != 0 {
			entry.Metadata.Kind = KindOtherEntry
		}
	} else if isDir {
		entry.Metadata.Mode = os.ModeDir | 0555
		entry.Metadata.Nlink = 1
	} else {
		entry.Metadata.Mode = 0444
		entry.Metadata.Nlink = 1
	}

	if pn, ok := rrip.DecodeDeviceNumber(rec.SystemUse); ok {
		entry.Metadata.DeviceHigh = pn.DevTHigh
		entry.Metadata.DeviceLow = pn.DevTLow
	}

	if tf, ok := rrip.DecodeTimestamps(rec.SystemUse); ok {
		if tf.Modified != nil {
			entry.Metadata.ModTime = *tf.Modified
		}
		if tf.Access != nil {
			entry.Metadata.AccessTime = *tf.Access
		}
		if tf.Attributes != nil {
			entry.Metadata.ChangeTime = *tf.Attributes
		}
	}

	if target, ok, tooLarge := rrip.AssembleSymlink(rec.SystemUse, cfg.MaxAssembledField); ok {
		entry.SymlinkTarget = target
		entry.Metadata.Kind = KindSymlinkEntry
	} else if tooLarge {
		cfg.warnf("symlink target for %q exceeds MaxAssembledField, truncating to empty", entry.Name)
	}

	if cl, ok := rrip.DecodeChildLink(rec.SystemUse); ok {
		// The record at this position is a placeholder kept so the tree
		// stays navigable after relocation; its own DataLength is the
		// placeholder's, not the real directory's, so the true size must
		// be learned from the target's own "." record.
		targetStart := LogicalBlockAddress(cl.LocationOfData)
		size, err := readRelocatedDirectorySize(bs, targetStart, cfg)
		if err != nil {
			return wrapErr(KindRelocationDangling, "CL target has no readable '.' record", err)
		}
		entry.Start = targetStart
		entry.Metadata.Size = size
		entry.Metadata.Relocated = true
	}
	return nil
}

// readRelocatedDirectorySize reads the "." record at the start of the
// extent a CL entry points at and returns that record's DataLength, so
// the relocated directory's listing isn't truncated to whatever length
// the placeholder record happened to carry.
func readRelocatedDirectorySize(bs BlockSource, start LogicalBlockAddress, cfg *Config) (uint64, error) {
	sector, err := bs.ReadSector(start)
	if err != nil {
		return 0, err
	}
	recLen := int(sector[0])
	if recLen == 0 || recLen > len(sector) {
		return 0, wrapErrf(KindMalformedField, "relocated directory at LBA %d has no '.' record", start)
	}

	dot, err := decodeDirectoryRecord(sector[:recLen], cfg, 0, continuationReaderFor(bs))
	if err != nil {
		return 0, err
	}
	if !dot.IsSelf() {
		return 0, wrapErrf(KindMalformedField, "relocated directory at LBA %d does not begin with a '.' record", start)
	}
	return uint64(dot.DataLength), nil
}
