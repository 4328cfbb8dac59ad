package iso9660_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660"
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
)

const dirFlagDir = 1 << 1

func recordsLen(records [][]byte) uint32 {
	var n uint32
	for _, r := range records {
		n += uint32(len(r))
	}
	return n
}

// packOneSector concatenates records into a single zero-padded sector; the
// fixtures in this file are all small enough to fit in one.
func packOneSector(records [][]byte) []byte {
	var buf []byte
	for _, r := range records {
		buf = append(buf, r...)
	}
	if len(buf) > isofixture.LogicalBlockSize {
		panic("fixture: directory exceeds one sector")
	}
	padded := make([]byte, isofixture.LogicalBlockSize)
	copy(padded, buf)
	return padded
}

func rootDotSystemUse() []byte {
	su := isofixture.EncodeSP(0)
	su = append(su, isofixture.EncodeER(rrip.ExtensionIdentifierIEEEP1282, "RRIP", "SRC", 1)...)
	return su
}

// buildRelocatedImage hand-assembles a root directory holding both a CL
// placeholder and its RE-marked real entry, pointing at a directory
// containing one file. isofixture.Build's Node tree has no notion of
// relocation, so CL/RE fixtures must be laid out at this level directly.
func buildRelocatedImage(t *testing.T) ([]byte, uint32) {
	t.Helper()

	im := isofixture.NewImage()
	im.Reserve(16)
	pvdLBA := im.Reserve(1)
	termLBA := im.Reserve(1)

	fileContent := []byte("hello from deep")
	fileLBA := im.AppendData(fileContent)

	rootLBA := im.Reserve(1)
	deepLBA := im.Reserve(1)

	fileSU := isofixture.EncodePX(0100444, 1, 0, 0, nil)
	fileSU = append(fileSU, isofixture.EncodeNM("FILE.TXT", false)...)
	fileRec := isofixture.EncodeDirectoryRecord(0, fileLBA, uint32(len(fileContent)), time.Time{}, 0, 0, 0, 1, []byte("FILE.TXT"), fileSU)

	deepDotSU := isofixture.EncodePX(0040555, 1, 0, 0, nil)
	deepRecords := [][]byte{
		isofixture.EncodeDirectoryRecord(0, deepLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, deepDotSU),
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{1}, nil),
		fileRec,
	}
	deepLen := recordsLen(deepRecords)
	// The deep directory's own "." record must carry its real DataLength
	// (isofixture.LogicalBlockSize, rounded up from deepLen): applyRockRidgeMetadata
	// learns the relocated size from this record, not from the CL
	// placeholder, so this value is what the decoder is actually expected
	// to report.
	deepRecords[0] = isofixture.EncodeDirectoryRecord(0, deepLBA, isofixture.LogicalBlockSize, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, deepDotSU)
	im.WriteAt(deepLBA, packOneSector(deepRecords))

	// The placeholder's own DataLength is deliberately wrong (and smaller
	// than both the real directory's length and a single sector) so a
	// decoder that trusts the placeholder instead of re-deriving the size
	// from the target's "." record would truncate DEEP's listing and this
	// test would catch it.
	const wrongPlaceholderLength = 34
	clSU := isofixture.EncodePX(0040555, 1, 0, 0, nil)
	clSU = append(clSU, isofixture.EncodeCL(deepLBA)...)
	clSU = append(clSU, isofixture.EncodeNM("DEEP", false)...)
	clPlaceholder := isofixture.EncodeDirectoryRecord(0, 0, wrongPlaceholderLength, time.Time{}, dirFlagDir, 0, 0, 1, []byte("DEEP"), clSU)

	reSU := isofixture.EncodePX(0040555, 1, 0, 0, nil)
	reSU = append(reSU, isofixture.EncodeRE()...)
	reSU = append(reSU, isofixture.EncodeNM("DEEP", false)...)
	reReal := isofixture.EncodeDirectoryRecord(0, deepLBA, deepLen, time.Time{}, dirFlagDir, 0, 0, 1, []byte("DEEP"), reSU)

	rootRecords := [][]byte{
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, rootDotSystemUse()),
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{1}, nil),
		clPlaceholder,
		reReal,
	}
	rootLen := uint32(isofixture.LogicalBlockSize)
	im.WriteAt(rootLBA, packOneSector(rootRecords))

	im.WriteAt(pvdLBA, isofixture.EncodePVD("RELOC", im.TotalSectors(), rootLBA, rootLen))
	im.WriteAt(termLBA, isofixture.EncodeTerminator())

	return im.Bytes(), im.TotalSectors()
}

func TestDecoderRelocatedDirectoryViaChildLink(t *testing.T) {
	image, sectors := buildRelocatedImage(t)
	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)

	entries, err := dec.ReadDir(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEEP", entries[0].Name)
	assert.True(t, entries[0].Metadata.Relocated)
	assert.EqualValues(t, isofixture.LogicalBlockSize, entries[0].Metadata.Size,
		"size must come from the target's own '.' record, not the CL placeholder's DataLength")

	deepEntries, err := dec.ReadDir(&entries[0])
	require.NoError(t, err)
	require.Len(t, deepEntries, 1)
	assert.Equal(t, "FILE.TXT", deepEntries[0].Name)

	rc, err := dec.OpenFile(&deepEntries[0])
	require.NoError(t, err)
	buf := make([]byte, deepEntries[0].Metadata.Size)
	n, err := rc.ReadAt(buf, 0)
	assert.True(t, err == nil || err == io.EOF)
	assert.Equal(t, "hello from deep", string(buf[:n]))
}

func TestDecoderWalkVisitsAcrossRelocation(t *testing.T) {
	image, sectors := buildRelocatedImage(t)
	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)

	var visited []string
	err = dec.Walk(r, func(p string, entry *iso9660.Entry) error {
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, visited, "/DEEP")
	assert.Contains(t, visited, "/DEEP/FILE.TXT")
}

// buildDanglingCLImage builds a root directory whose sole child is a CL
// placeholder pointing at an LBA outside the volume entirely.
func buildDanglingCLImage(t *testing.T) ([]byte, uint32) {
	t.Helper()

	im := isofixture.NewImage()
	im.Reserve(16)
	pvdLBA := im.Reserve(1)
	termLBA := im.Reserve(1)
	rootLBA := im.Reserve(1)

	const danglingLBA = 999999

	clSU := isofixture.EncodePX(0040555, 1, 0, 0, nil)
	clSU = append(clSU, isofixture.EncodeCL(danglingLBA)...)
	clSU = append(clSU, isofixture.EncodeNM("GONE", false)...)
	clPlaceholder := isofixture.EncodeDirectoryRecord(0, 0, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte("GONE"), clSU)

	rootRecords := [][]byte{
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, rootDotSystemUse()),
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{1}, nil),
		clPlaceholder,
	}
	rootLen := uint32(isofixture.LogicalBlockSize)
	im.WriteAt(rootLBA, packOneSector(rootRecords))

	im.WriteAt(pvdLBA, isofixture.EncodePVD("DANGLE", im.TotalSectors(), rootLBA, rootLen))
	im.WriteAt(termLBA, isofixture.EncodeTerminator())

	return im.Bytes(), im.TotalSectors()
}

func TestDecoderWalkReportsDanglingChildLink(t *testing.T) {
	image, sectors := buildDanglingCLImage(t)
	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)

	err = dec.Walk(r, func(p string, entry *iso9660.Entry) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, iso9660.ErrRelocationDangling)
}

// buildCyclicCLImage builds a root directory whose sole child is a CL
// placeholder that redirects back onto the root's own extent.
func buildCyclicCLImage(t *testing.T) ([]byte, uint32) {
	t.Helper()

	im := isofixture.NewImage()
	im.Reserve(16)
	pvdLBA := im.Reserve(1)
	termLBA := im.Reserve(1)
	rootLBA := im.Reserve(1)

	clSU := isofixture.EncodePX(0040555, 1, 0, 0, nil)
	clSU = append(clSU, isofixture.EncodeCL(rootLBA)...)
	clSU = append(clSU, isofixture.EncodeNM("LOOP", false)...)
	clPlaceholder := isofixture.EncodeDirectoryRecord(0, 0, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte("LOOP"), clSU)

	rootRecords := [][]byte{
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, rootDotSystemUse()),
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{1}, nil),
		clPlaceholder,
	}
	rootLen := uint32(isofixture.LogicalBlockSize)
	im.WriteAt(rootLBA, packOneSector(rootRecords))

	im.WriteAt(pvdLBA, isofixture.EncodePVD("CYCLE", im.TotalSectors(), rootLBA, rootLen))
	im.WriteAt(termLBA, isofixture.EncodeTerminator())

	return im.Bytes(), im.TotalSectors()
}

func TestDecoderWalkDetectsRelocationCycle(t *testing.T) {
	image, sectors := buildCyclicCLImage(t)
	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)

	err = dec.Walk(r, func(p string, entry *iso9660.Entry) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, iso9660.ErrRelocationCycle)
}
