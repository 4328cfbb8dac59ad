package isofixture

// LogicalBlockSize mirrors iso9660.LogicalBlockSize; duplicated here so this
// package has no dependency on the decoder it exists to test.
const LogicalBlockSize = 2048

// Image accumulates a synthetic ISO image sector by sector.
type Image struct {
	data []byte
}

// NewImage returns an empty image.
func NewImage() *Image {
	return &Image{}
}

// NextLBA is the sector index the next AppendSector/Reserve call would use.
func (im *Image) NextLBA() uint32 {
	return uint32(len(im.data) / LogicalBlockSize)
}

// AppendSector writes one LogicalBlockSize sector (content is zero-padded or
// truncated to fit) and returns its LBA.
func (im *Image) AppendSector(content []byte) uint32 {
	lba := im.NextLBA()
	padded := make([]byte, LogicalBlockSize)
	copy(padded, content)
	im.data = append(im.data, padded...)
	return lba
}

// Reserve appends n zeroed sectors and returns the LBA of the first, for a
// caller that needs the LBA before it has rendered the sectors' content.
func (im *Image) Reserve(sectors uint32) uint32 {
	lba := im.NextLBA()
	im.data = append(im.data, make([]byte, int(sectors)*LogicalBlockSize)...)
	return lba
}

// AppendData writes data across ceil(len(data)/LogicalBlockSize) sectors
// (at least one, even for an empty file) and returns the LBA of the first.
func (im *Image) AppendData(data []byte) uint32 {
	sectors := bytesToSectors(uint32(len(data)))
	lba := im.Reserve(sectors)
	im.WriteAt(lba, data)
	return lba
}

func bytesToSectors(n uint32) uint32 {
	sectors := n / LogicalBlockSize
	if n%LogicalBlockSize != 0 || sectors == 0 {
		sectors++
	}
	return sectors
}

// WriteAt overwrites previously reserved (or appended) space starting at
// lba with content, which must fit within what was already allocated.
func (im *Image) WriteAt(lba uint32, content []byte) {
	off := int(lba) * LogicalBlockSize
	if off+len(content) > len(im.data) {
		panic("isofixture: write past reserved image")
	}
	copy(im.data[off:], content)
}

// Bytes returns the complete image.
func (im *Image) Bytes() []byte {
	return im.data
}

// TotalSectors is the image's current length in sectors.
func (im *Image) TotalSectors() uint32 {
	return im.NextLBA()
}

// pack concatenates records into sector-aligned directory extent content:
// a record is never allowed to straddle a sector boundary (ECMA-119's rule,
// mirrored by pkg/iso9660/directory.go's reader), so whenever the next
// record wouldn't fit in the current sector, the remainder of that sector is
// zero-padded — the same zero length byte the reader recognizes as "rest of
// sector is padding".
func pack(records [][]byte) []byte {
	var buf []byte
	posInSector := 0
	for _, rec := range records {
		if posInSector+len(rec) > LogicalBlockSize {
			pad := LogicalBlockSize - posInSector
			buf = append(buf, make([]byte, pad)...)
			posInSector = 0
		}
		buf = append(buf, rec...)
		posInSector += len(rec)
	}
	if posInSector > 0 {
		buf = append(buf, make([]byte, LogicalBlockSize-posInSector)...)
	} else if len(buf) == 0 {
		buf = make([]byte, LogicalBlockSize)
	}
	return buf
}
