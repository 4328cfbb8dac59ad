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
	"bytes"
	"encoding/binary"
	"time"

	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

// volumeDescriptorType is the tag byte every descriptor in the Volume
// Descriptor Set opens with.
type volumeDescriptorType byte

const (
	vdBootRecord    volumeDescriptorType = 0
	vdPrimary       volumeDescriptorType = 1
	vdSupplementary volumeDescriptorType = 2
	vdPartition     volumeDescriptorType = 3
	vdTerminator    volumeDescriptorType = 255
)

// PrimaryVolumeDescriptor is the decoded PVD: the volume's identity
// fields plus the location of its root directory.
type PrimaryVolumeDescriptor struct {
	SystemIdentifier            string
	VolumeIdentifier            string
	VolumeSetIdentifier         string
	PublisherIdentifier         string
	DataPreparerIdentifier      string
	ApplicationIdentifier       string
	CopyrightFileIdentifier     string
	AbstractFileIdentifier      string
	BibliographicFileIdentifier string
	VolumeSpaceSize             uint32
	VolumeSetSize               uint16
	VolumeSequenceNumber        uint16
	PathTableSize               uint32
	LTableStart                 LogicalBlockAddress
	MTableStart                 LogicalBlockAddress
	Root                        *DirectoryRecord
	Created                     time.Time
	Modified                    time.Time
	Effective                   time.Time
}

// SupplementaryVolumeDescriptor is a decoded SVD. It becomes the Joliet
// descriptor when its escape sequences name one of the three Joliet
// levels; SVDs that declare anything else (e.g. an SVD written for some
// other supplementary standard) are skipped by the scanner.
type SupplementaryVolumeDescriptor struct {
	PrimaryVolumeDescriptor
	EscapeSequences []byte
	IsJoliet        bool
}

// continuationReaderFor adapts a BlockSource into the ContinuationReader
// the SUSP walker needs to follow CE entries: start is an LBA, offset and
// length are byte offsets/lengths within it.
func continuationReaderFor(bs BlockSource) susp.ContinuationReader {
	return func(start, offset, length uint32) ([]byte, error) {
		return bs.ReadRange(LogicalBlockAddress(start), offset, length)
	}
}

// scanVolumeDescriptors walks the Volume Descriptor Set starting at LBA
// 16 until a Terminator is seen or MaxVolumeDescriptors is exceeded,
// decoding the first PVD and the best Joliet SVD (preferring the highest
// Joliet level) it finds along the way.
func scanVolumeDescriptors(bs BlockSource, cfg *Config) (*PrimaryVolumeDescriptor, *SupplementaryVolumeDescriptor, error) {
	var pvd *PrimaryVolumeDescriptor
	var joliet *SupplementaryVolumeDescriptor
	var jolietLevel int

	lba := FirstVolumeDescriptorLBA
	for i := 0; i < MaxVolumeDescriptors; i++ {
		sector, err := bs.ReadSector(lba)
		if err != nil {
			return nil, nil, err
		}
		lba++

		vtype := volumeDescriptorType(sector[0])
		if !bytes.Equal(sector[1:6], []byte(CD001)) {
			return nil, nil, newErr(KindNotAnIso, "volume descriptor missing CD001 standard identifier")
		}

		switch vtype {
		case vdTerminator:
			if pvd == nil {
				return nil, nil, ErrMissingPvd
			}
			return pvd, joliet, nil

		case vdPrimary:
			if pvd != nil {
				continue // spec.md §4.2: first PVD wins
			}
			decoded, err := decodePrimaryVolumeDescriptor(sector, bs, cfg)
			if err != nil {
				return nil, nil, err
			}
			pvd = decoded

		case vdSupplementary:
			svd, err := decodeSupplementaryVolumeDescriptor(sector, bs, cfg)
			if err != nil {
				return nil, nil, err
			}
			if svd.IsJoliet {
				level := jolietLevelOf(svd.EscapeSequences)
				if level > jolietLevel {
					joliet = svd
					jolietLevel = level
				}
			}

		case vdBootRecord, vdPartition:
			// Not modeled; this decoder never exposes boot images or
			// non-ISO-9660 partitions.

		default:
			// Unknown descriptor type: ECMA-119 reserves it for future
			// use, so it is skipped rather than rejected.
		}
	}

	return nil, nil, wrapErrf(KindNotAnIso, "no Volume Descriptor Set Terminator within %d descriptors", MaxVolumeDescriptors)
}

func jolietLevelOf(escapeSequences []byte) int {
	for off := 0; off+3 <= len(escapeSequences); off += 3 {
		switch {
		case bytes.Equal(escapeSequences[off:off+3], jolietEscapes[2][:]):
			return 3
		case bytes.Equal(escapeSequences[off:off+3], jolietEscapes[1][:]):
			return 2
		case bytes.Equal(escapeSequences[off:off+3], jolietEscapes[0][:]):
			return 1
		}
	}
	return 0
}

// decodePrimaryVolumeDescriptor and decodeSupplementaryVolumeDescriptor
// share layout: both are 2048-byte sectors laid out identically past the
// type/identifier/version header, differing only in the 32-byte escape
// sequences field the SVD carries in place of the PVD's second unused
// field, and in strand width (strD for PVD identifiers, Joliet UCS-2BE
// for SVD identifiers when Joliet escape sequences are present).
func decodePrimaryVolumeDescriptor(sector []byte, bs BlockSource, cfg *Config) (*PrimaryVolumeDescriptor, error) {
	if err := expectByteAt(sector, 0, 1, "PVD type code"); err != nil {
		return nil, err
	}
	if err := expectByteAt(sector, 6, 1, "PVD version"); err != nil {
		return nil, err
	}

	pvd := &PrimaryVolumeDescriptor{}
	pvd.SystemIdentifier = decodeStrA(sector[8:40])
	pvd.VolumeIdentifier = decodeStrD(sector[40:72])

	if err := decodeVolumeBody(sector, pvd, cfg); err != nil {
		return nil, err
	}

	root, err := decodeDirectoryRecord(sector[156:190], cfg, 0, continuationReaderFor(bs))
	if err != nil {
		return nil, err
	}
	pvd.Root = root

	pvd.VolumeSetIdentifier = decodeStrD(sector[190:318])
	pvd.PublisherIdentifier = decodeStrA(sector[318:446])
	pvd.DataPreparerIdentifier = decodeStrA(sector[446:574])
	pvd.ApplicationIdentifier = decodeStrA(sector[574:702])
	pvd.CopyrightFileIdentifier = decodeStrD(sector[702:740])
	pvd.AbstractFileIdentifier = decodeStrD(sector[740:776])
	pvd.BibliographicFileIdentifier = decodeStrD(sector[776:813])

	var created, modified, effective DecDateTime
	copy(created[:], sector[813:830])
	copy(modified[:], sector[830:847])
	// sector[847:864] is the expiration date, not modeled.
	copy(effective[:], sector[864:881])
	pvd.Created = created.Timestamp()
	pvd.Modified = modified.Timestamp()
	pvd.Effective = effective.Timestamp()

	if err := expectByteAt(sector, 881, 1, "PVD file structure version"); err != nil {
		return nil, err
	}

	return pvd, nil
}

func decodeSupplementaryVolumeDescriptor(sector []byte, bs BlockSource, cfg *Config) (*SupplementaryVolumeDescriptor, error) {
	if err := expectByteAt(sector, 0, 2, "SVD type code"); err != nil {
		return nil, err
	}
	if err := expectByteAt(sector, 6, 1, "SVD version"); err != nil {
		return nil, err
	}

	svd := &SupplementaryVolumeDescriptor{
		EscapeSequences: append([]byte(nil), sector[88:120]...),
	}
	svd.IsJoliet = detectJoliet(svd.EscapeSequences)

	decodeIdentifier := decodeStrA
	decodeVolIdentifier := decodeStrD
	if svd.IsJoliet {
		decodeIdentifier = func(buf []byte) string {
			s, err := decodeJoliet(buf, cfg)
			if err != nil {
				cfg.warnf("SVD system identifier: %v", err)
				return ""
			}
			return s
		}
		decodeVolIdentifier = decodeIdentifier
	}

	svd.SystemIdentifier = decodeIdentifier(sector[8:40])
	svd.VolumeIdentifier = decodeVolIdentifier(sector[40:72])

	if err := decodeVolumeBody(sector, &svd.PrimaryVolumeDescriptor, cfg); err != nil {
		return nil, err
	}

	root, err := decodeDirectoryRecord(sector[156:190], cfg, 0, continuationReaderFor(bs))
	if err != nil {
		return nil, err
	}
	svd.Root = root

	if svd.IsJoliet {
		svd.VolumeSetIdentifier, _ = decodeJoliet(sector[190:318], cfg)
		svd.PublisherIdentifier, _ = decodeJoliet(sector[318:446], cfg)
		svd.DataPreparerIdentifier, _ = decodeJoliet(sector[446:574], cfg)
		svd.ApplicationIdentifier, _ = decodeJoliet(sector[574:702], cfg)
	} else {
		svd.VolumeSetIdentifier = decodeStrD(sector[190:318])
		svd.PublisherIdentifier = decodeStrA(sector[318:446])
		svd.DataPreparerIdentifier = decodeStrA(sector[446:574])
		svd.ApplicationIdentifier = decodeStrA(sector[574:702])
	}

	return svd, nil
}

// decodeVolumeBody decodes the fields common to the PVD and SVD layout
// that sit between the identifiers and the root directory record: volume
// space size through logical block size / path table size / path table
// locations.
func decodeVolumeBody(sector []byte, out *PrimaryVolumeDescriptor, cfg *Config) error {
	le := binary.LittleEndian.Uint32(sector[80:84])
	be := binary.BigEndian.Uint32(sector[84:88])
	if le != be {
		if cfg.StrictBothEndian {
			return wrapErrf(KindMalformedField, "volume space size le=%d be=%d", le, be)
		}
		cfg.warnf("volume space size mismatch le=%d be=%d, using LE", le, be)
	}
	out.VolumeSpaceSize = le

	// sector[88:120] is either an unused field (PVD) or the escape
	// sequences field (SVD); the caller handles it.

	volSetLE := binary.LittleEndian.Uint16(sector[120:122])
	volSetBE := binary.BigEndian.Uint16(sector[122:124])
	if volSetLE != volSetBE {
		if cfg.StrictBothEndian {
			return wrapErrf(KindMalformedField, "volume set size le=%d be=%d", volSetLE, volSetBE)
		}
		cfg.warnf("volume set size mismatch le=%d be=%d, using LE", volSetLE, volSetBE)
	}
	out.VolumeSetSize = volSetLE

	seqLE := binary.LittleEndian.Uint16(sector[124:126])
	seqBE := binary.BigEndian.Uint16(sector[126:128])
	if seqLE != seqBE {
		if cfg.StrictBothEndian {
			return wrapErrf(KindMalformedField, "volume sequence number le=%d be=%d", seqLE, seqBE)
		}
		cfg.warnf("volume sequence number mismatch le=%d be=%d, using LE", seqLE, seqBE)
	}
	out.VolumeSequenceNumber = seqLE

	blockSizeLE := binary.LittleEndian.Uint16(sector[128:130])
	blockSizeBE := binary.BigEndian.Uint16(sector[130:132])
	if blockSizeLE != blockSizeBE {
		return wrapErrf(KindMalformedField, "logical block size le=%d be=%d", blockSizeLE, blockSizeBE)
	}
	if blockSizeLE != LogicalBlockSize {
		return wrapErrf(KindUnsupportedLogicalBlockSize, "declared logical block size %d", blockSizeLE)
	}

	ptLE := binary.LittleEndian.Uint32(sector[132:136])
	ptBE := binary.BigEndian.Uint32(sector[136:140])
	if ptLE != ptBE {
		if cfg.StrictBothEndian {
			return wrapErrf(KindMalformedField, "path table size le=%d be=%d", ptLE, ptBE)
		}
		cfg.warnf("path table size mismatch le=%d be=%d, using LE", ptLE, ptBE)
	}
	out.PathTableSize = ptLE

	out.LTableStart = LogicalBlockAddress(binary.LittleEndian.Uint32(sector[140:144]))
	out.MTableStart = LogicalBlockAddress(binary.BigEndian.Uint32(sector[148:152]))

	return nil
}

func expectByteAt(sector []byte, offset int, expected byte, desc string) error {
	if sector[offset] != expected {
		return newErr(KindNotAnIso, desc)
	}
	return nil
}
