package iso9660

import (
	"io"

	"github.com/pkg/errors"
)

// BlockSource reads fixed-size logical sectors by LBA from an underlying
// seekable byte source. Implementations need not cache anything; the
// decoder re-reads whatever it needs on every call, per the library's
// read-only, no-cache Non-goal.
type BlockSource interface {
	// ReadSector reads exactly LogicalBlockSize bytes at lba.
	ReadSector(lba LogicalBlockAddress) ([]byte, error)

	// ReadRange reads length bytes starting at offset bytes into lba,
	// which may span multiple sectors.
	ReadRange(lba LogicalBlockAddress, offset, length uint32) ([]byte, error)

	// VolumeSectors is the total number of 2048-byte sectors backing
	// this source, used for OutOfRange bounds checks.
	VolumeSectors() uint32
}

// readerAtSource adapts any io.ReaderAt (a *os.File, an io.SectionReader
// over part of a larger object, ...) into a BlockSource.
type readerAtSource struct {
	r       io.ReaderAt
	sectors uint32
}

// NewBlockSource wraps r, an arbitrary seekable byte source, as a
// BlockSource. sectors is the total sector count of the backing image;
// pass 0 if unknown, in which case OutOfRange checks are skipped.
func NewBlockSource(r io.ReaderAt, sectors uint32) BlockSource {
	return &readerAtSource{r: r, sectors: sectors}
}

func (s *readerAtSource) VolumeSectors() uint32 {
	return s.sectors
}

func (s *readerAtSource) ReadSector(lba LogicalBlockAddress) ([]byte, error) {
	return s.ReadRange(lba, 0, LogicalBlockSize)
}

func (s *readerAtSource) ReadRange(lba LogicalBlockAddress, offset, length uint32) ([]byte, error) {
	if s.sectors > 0 && uint32(lba) >= s.sectors {
		return nil, wrapErr(KindOutOfRange, "lba", errors.Errorf("lba %d exceeds volume of %d sectors", lba, s.sectors))
	}

	buf := make([]byte, length)
	off := int64(lba)*LogicalBlockSize + int64(offset)
	if _, err := io.ReadFull(io.NewSectionReader(s.r, off, int64(length)), buf); err != nil {
		return nil, wrapErr(KindIo, "read range", err)
	}
	return buf, nil
}
