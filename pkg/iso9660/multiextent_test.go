package iso9660_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660"
)

const fileFlagNonTerminal = 1 << 7

// buildMultiExtentImage hand-assembles a root directory holding one file
// split across two consecutive extents (ECMA-119 requires the extents of
// a multi-part file to be recorded contiguously); isofixture.Build never
// splits a Node's Data, so this must be laid out directly.
func buildMultiExtentImage(t *testing.T) ([]byte, uint32, string) {
	t.Helper()

	im := isofixture.NewImage()
	im.Reserve(16)
	pvdLBA := im.Reserve(1)
	termLBA := im.Reserve(1)

	chunk1 := strings.Repeat("A", isofixture.LogicalBlockSize)
	chunk2 := "BBBBBBBBBB"
	firstLBA := im.AppendData([]byte(chunk1))
	secondLBA := im.AppendData([]byte(chunk2))
	require.Equal(t, firstLBA+1, secondLBA, "chunks must land on consecutive sectors")

	rootLBA := im.Reserve(1)

	nonTerminal := isofixture.EncodeDirectoryRecord(0, firstLBA, uint32(len(chunk1)), time.Time{}, fileFlagNonTerminal, 0, 0, 1, []byte("BIGFILE.BIN"), nil)
	terminal := isofixture.EncodeDirectoryRecord(0, secondLBA, uint32(len(chunk2)), time.Time{}, 0, 0, 0, 1, []byte("BIGFILE.BIN"), nil)

	rootRecords := [][]byte{
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, nil),
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{1}, nil),
		nonTerminal,
		terminal,
	}
	rootLen := uint32(isofixture.LogicalBlockSize)
	im.WriteAt(rootLBA, packOneSector(rootRecords))

	im.WriteAt(pvdLBA, isofixture.EncodePVD("MULTIEXT", im.TotalSectors(), rootLBA, rootLen))
	im.WriteAt(termLBA, isofixture.EncodeTerminator())

	return im.Bytes(), im.TotalSectors(), chunk1 + chunk2
}

func TestDecoderReconstructsMultiExtentFile(t *testing.T) {
	image, sectors, want := buildMultiExtentImage(t)
	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)

	entries, err := dec.ReadDir(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, len(want), entries[0].Metadata.Size)

	rc, err := dec.OpenFile(&entries[0])
	require.NoError(t, err)
	buf := make([]byte, entries[0].Metadata.Size)
	n, err := rc.ReadAt(buf, 0)
	assert.True(t, err == nil || err == io.EOF)
	assert.Equal(t, want, string(buf[:n]))
}
