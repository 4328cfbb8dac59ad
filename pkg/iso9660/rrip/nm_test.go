package rrip_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

func TestAssembleNameSinglePiece(t *testing.T) {
	area := isofixture.EncodeNM("lowercase-name.txt", false)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	name, ok, tooLarge := rrip.AssembleName(entries, 1024)
	require.True(t, ok)
	assert.False(t, tooLarge)
	assert.Equal(t, "lowercase-name.txt", name)
}

func TestAssembleNameMultiPiece(t *testing.T) {
	area := append(isofixture.EncodeNM("a-very-long-", true), isofixture.EncodeNM("alternate-name.txt", false)...)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	name, ok, tooLarge := rrip.AssembleName(entries, 1024)
	require.True(t, ok)
	assert.False(t, tooLarge)
	assert.Equal(t, "a-very-long-alternate-name.txt", name)
}

func TestAssembleNameNeverTerminates(t *testing.T) {
	area := isofixture.EncodeNM("truncated-chain", true)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	_, ok, tooLarge := rrip.AssembleName(entries, 1024)
	assert.False(t, ok)
	assert.False(t, tooLarge)
}

func TestAssembleNameExceedsMaxLen(t *testing.T) {
	area := isofixture.EncodeNM(strings.Repeat("x", 32), false)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	_, ok, tooLarge := rrip.AssembleName(entries, 8)
	assert.False(t, ok)
	assert.True(t, tooLarge)
}
