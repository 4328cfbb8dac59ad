package iso9660_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660"
)

// buildBadDirectoryLengthImage builds a root holding one subdirectory
// record whose DataLength (100) is not a multiple of LogicalBlockSize,
// violating ECMA-119's directory-extent sizing rule.
func buildBadDirectoryLengthImage(t *testing.T) ([]byte, uint32) {
	t.Helper()

	im := isofixture.NewImage()
	im.Reserve(16)
	pvdLBA := im.Reserve(1)
	termLBA := im.Reserve(1)

	subLBA := im.Reserve(1)
	im.WriteAt(subLBA, make([]byte, isofixture.LogicalBlockSize))

	rootLBA := im.Reserve(1)
	badSub := isofixture.EncodeDirectoryRecord(0, subLBA, 100, time.Time{}, dirFlagDir, 0, 0, 1, []byte("BADDIR"), nil)

	rootRecords := [][]byte{
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{0}, nil),
		isofixture.EncodeDirectoryRecord(0, rootLBA, 0, time.Time{}, dirFlagDir, 0, 0, 1, []byte{1}, nil),
		badSub,
	}
	rootLen := uint32(isofixture.LogicalBlockSize)
	im.WriteAt(rootLBA, packOneSector(rootRecords))

	im.WriteAt(pvdLBA, isofixture.EncodePVD("BADLEN", im.TotalSectors(), rootLBA, rootLen))
	im.WriteAt(termLBA, isofixture.EncodeTerminator())

	return im.Bytes(), im.TotalSectors()
}

func TestDecoderRejectsDirectoryLengthNotMultipleOfSector(t *testing.T) {
	image, sectors := buildBadDirectoryLengthImage(t)
	dec := openFixture(t, image, sectors, iso9660.DefaultConfig())

	r, err := dec.Root()
	require.NoError(t, err)

	entries, err := dec.ReadDir(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BADDIR", entries[0].Name)

	_, err = dec.ReadDir(&entries[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, iso9660.ErrDirectoryNotMultipleOfSector)
}
