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
	"encoding/binary"
	"time"

	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

const (
	// MaxDirectoryRecordLen is the largest value a record's own length
	// byte can carry.
	MaxDirectoryRecordLen = 255

	directoryRecordFixedLen = 33 // through the identifier-length byte, inclusive
)

// DirectoryRecord is one decoded ECMA-119 directory record: a file or
// subdirectory entry, or the "." / ".." self/parent entries every
// directory extent opens with.
type DirectoryRecord struct {
	Len                      int
	ExtendedAttrRecordLength byte
	Start                    LogicalBlockAddress
	DataLength               uint32
	Recorded                 time.Time
	Flags                    FileFlag
	FileUnitSize             byte
	InterleaveGap            byte
	VolumeSequenceNumber     uint16

	// IdentifierRaw is the on-disc identifier field, undecoded. Its
	// interpretation is namespace-dependent: ISO 9660 strD (+ ";version"
	// suffix), or Joliet UCS-2BE. A 1-byte value of 0x00 or 0x01 denotes
	// the special "." / ".." entries respectively, never a real name.
	IdentifierRaw []byte

	SystemUse []susp.SystemUseEntry
}

func (rec *DirectoryRecord) IsSelf() bool {
	return len(rec.IdentifierRaw) == 1 && rec.IdentifierRaw[0] == 0x00
}

func (rec *DirectoryRecord) IsParent() bool {
	return len(rec.IdentifierRaw) == 1 && rec.IdentifierRaw[0] == 0x01
}

// mergedRegistry combines the plain-SUSP entry decoders with the Rock
// Ridge ones; every directory record's System Use area is walked against
// the same merged table regardless of whether Rock Ridge turns out to be
// in use; unrecognized tags are simply ignored, so this costs nothing.
func mergedRegistry() map[string]susp.EntryDecoder {
	reg := susp.DefaultRegistry()
	for tag, dec := range rrip.Registry() {
		reg[tag] = dec
	}
	return reg
}

// decodeDirectoryRecord decodes one directory record from buf, which must
// hold exactly the record's own bytes (buf[0] is the record's length
// byte, and len(buf) >= int(buf[0])). skipBytes is SUSP's LEN_SKP, the
// number of leading bytes of the System Use area to ignore (nonzero when
// an SP entry was found on the root directory's "." record). cont resolves
// CE continuation areas during the SUSP walk.
func decodeDirectoryRecord(buf []byte, cfg *Config, skipBytes byte, cont susp.ContinuationReader) (*DirectoryRecord, error) {
	if len(buf) < 1 {
		return nil, wrapErrf(KindRecordCrossesSector, "empty directory record buffer")
	}
	recLen := int(buf[0])
	if recLen < directoryRecordFixedLen+1 || recLen > len(buf) {
		return nil, wrapErrf(KindMalformedField, "directory record length %d out of range", recLen)
	}
	buf = buf[:recLen]

	rec := &DirectoryRecord{Len: recLen}
	rec.ExtendedAttrRecordLength = buf[1]

	startLE := binary.LittleEndian.Uint32(buf[2:6])
	startBE := binary.BigEndian.Uint32(buf[6:10])
	if startLE != startBE {
		if cfg.StrictBothEndian {
			return nil, wrapErrf(KindMalformedField, "directory record extent LBA le=%d be=%d", startLE, startBE)
		}
		cfg.warnf("directory record extent LBA mismatch le=%d be=%d, using LE", startLE, startBE)
	}
	rec.Start = LogicalBlockAddress(startLE)

	lenLE := binary.LittleEndian.Uint32(buf[10:14])
	lenBE := binary.BigEndian.Uint32(buf[14:18])
	if lenLE != lenBE {
		if cfg.StrictBothEndian {
			return nil, wrapErrf(KindMalformedField, "directory record data length le=%d be=%d", lenLE, lenBE)
		}
		cfg.warnf("directory record data length mismatch le=%d be=%d, using LE", lenLE, lenBE)
	}
	rec.DataLength = lenLE

	var edt EntryDateTime
	copy(edt[:], buf[18:25])
	rec.Recorded = edt.Timestamp()

	rec.Flags = FileFlag(buf[25])
	rec.FileUnitSize = buf[26]
	rec.InterleaveGap = buf[27]

	volLE := binary.LittleEndian.Uint16(buf[28:30])
	volBE := binary.BigEndian.Uint16(buf[30:32])
	if volLE != volBE {
		if cfg.StrictBothEndian {
			return nil, wrapErrf(KindMalformedField, "directory record volume sequence number le=%d be=%d", volLE, volBE)
		}
		cfg.warnf("directory record volume sequence number mismatch le=%d be=%d, using LE", volLE, volBE)
	}
	rec.VolumeSequenceNumber = volLE

	idLen := int(buf[32])
	idStart := 33
	idEnd := idStart + idLen
	if idEnd > len(buf) {
		return nil, wrapErrf(KindMalformedField, "directory record identifier overruns record")
	}
	rec.IdentifierRaw = append([]byte(nil), buf[idStart:idEnd]...)

	suStart := idEnd
	if idLen%2 == 0 {
		suStart++ // padding byte
	}
	if suStart > len(buf) {
		return nil, wrapErrf(KindMalformedField, "directory record has no room for padding byte")
	}

	suArea := buf[suStart:]
	if int(skipBytes) <= len(suArea) {
		suArea = suArea[skipBytes:]
	} else {
		suArea = nil
	}

	if len(suArea) > 0 {
		entries, err := susp.Walk(suArea, cont, cfg.MaxSuspHops, mergedRegistry())
		if err != nil {
			return nil, translateSuspError(err)
		}
		rec.SystemUse = entries
	}

	return rec, nil
}

// translateSuspError maps a susp.WalkError onto this package's own
// *DecodeError so callers only ever see this decoder's error taxonomy.
func translateSuspError(err error) error {
	we, ok := err.(*susp.WalkError)
	if !ok {
		return wrapErr(KindIo, "SUSP walk", err)
	}
	switch we.Kind {
	case "SuspTruncated":
		return wrapErrf(KindSuspTruncated, we.Detail)
	case "SuspChainTooLong":
		return wrapErrf(KindSuspChainTooLong, we.Detail)
	case "SuspCycle":
		return wrapErrf(KindSuspCycle, we.Detail)
	case "MalformedField":
		return wrapErrf(KindMalformedField, we.Detail)
	default:
		return wrapErrf(KindMalformedField, we.Detail)
	}
}
