package rrip_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

func TestDecodePosixEntryWithSerial(t *testing.T) {
	serial := uint32(77)
	area := isofixture.EncodePX(0100640, 1, 1001, 1002, &serial)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	px, ok := rrip.DecodePosixEntry(entries)
	require.True(t, ok)
	assert.EqualValues(t, 1001, px.Uid)
	assert.EqualValues(t, 1002, px.Gid)
	assert.EqualValues(t, 1, px.Nlink)
	assert.True(t, px.HasSerial)
	assert.EqualValues(t, 77, px.Serial)
	assert.Equal(t, os.FileMode(0640), px.Mode.Perm())
}

func TestDecodePosixEntryWithoutSerial(t *testing.T) {
	area := isofixture.EncodePX(0040750, 2, 0, 0, nil)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	px, ok := rrip.DecodePosixEntry(entries)
	require.True(t, ok)
	assert.False(t, px.HasSerial)
	assert.True(t, px.Mode.IsDir())
}

func TestDecodePosixEntryTruncated(t *testing.T) {
	full := isofixture.EncodePX(0100640, 1, 1001, 1002, nil)
	area := full[:len(full)-4]

	_, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.Error(t, err)
	werr, ok := err.(*susp.WalkError)
	require.True(t, ok)
	assert.Equal(t, "SuspTruncated", werr.Kind)
}
