package rrip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

func TestAssembleSymlinkSingleComponent(t *testing.T) {
	area := isofixture.EncodeSL(0, "data.bin", false)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	target, ok, tooLarge := rrip.AssembleSymlink(entries, 1024)
	require.True(t, ok)
	assert.False(t, tooLarge)
	assert.Equal(t, "data.bin", target)
}

func TestAssembleSymlinkParentAndRoot(t *testing.T) {
	area := append(isofixture.EncodeSL(byte(rrip.SymlinkComponentFlagRoot), "", true), append(
		isofixture.EncodeSL(byte(rrip.SymlinkComponentFlagParent), "", true),
		isofixture.EncodeSL(0, "data.bin", false)...)...)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	target, ok, tooLarge := rrip.AssembleSymlink(entries, 1024)
	require.True(t, ok)
	assert.False(t, tooLarge)
	assert.Equal(t, "/../data.bin", target)
}

func TestAssembleSymlinkContinuedComponent(t *testing.T) {
	area := append(
		isofixture.EncodeSL(byte(rrip.SymlinkComponentFlagContinue), "long-component-", true),
		isofixture.EncodeSL(0, "tail.bin", false)...)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	target, ok, tooLarge := rrip.AssembleSymlink(entries, 1024)
	require.True(t, ok)
	assert.False(t, tooLarge)
	assert.Equal(t, "long-component-tail.bin", target)
}

// TestAssembleSymlinkPackedComponents exercises a single SL entry
// packing several components together (root marker, "usr", then "bin"
// continued into a second entry's "sh"), matching how mkisofs packs
// short symlink targets into one entry's payload.
func TestAssembleSymlinkPackedComponents(t *testing.T) {
	area := append(
		isofixture.EncodeSLMulti([]isofixture.SLComponent{
			{Flags: byte(rrip.SymlinkComponentFlagRoot), Data: ""},
			{Flags: 0, Data: "usr"},
			{Flags: byte(rrip.SymlinkComponentFlagContinue), Data: "bin"},
		}, true),
		isofixture.EncodeSL(0, "sh", false)...)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	target, ok, tooLarge := rrip.AssembleSymlink(entries, 1024)
	require.True(t, ok)
	assert.False(t, tooLarge)
	assert.Equal(t, "/usr/binsh", target)
}

func TestAssembleSymlinkNeverTerminates(t *testing.T) {
	area := isofixture.EncodeSL(0, "partial", true)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	_, ok, tooLarge := rrip.AssembleSymlink(entries, 1024)
	assert.False(t, ok)
	assert.False(t, tooLarge)
}
