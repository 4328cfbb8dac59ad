package susp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

func TestWalkDecodesSPAndER(t *testing.T) {
	area := append(isofixture.EncodeSP(0), isofixture.EncodeER("IEEE_P1282", "desc", "src", 1)...)

	entries, err := susp.Walk(area, nil, 32, susp.DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	sp, ok := entries[0].(*susp.SharingProtocolEntry)
	require.True(t, ok)
	assert.EqualValues(t, 0, sp.LenSkp)

	er, ok := entries[1].(*susp.ExtensionsReferenceEntry)
	require.True(t, ok)
	assert.Equal(t, "IEEE_P1282", er.Identifier)
}

func TestWalkFollowsContinuation(t *testing.T) {
	continuation := isofixture.EncodeER("IEEE_P1282", "d", "s", 1)

	var readCount int
	cont := func(start, offset, length uint32) ([]byte, error) {
		readCount++
		assert.EqualValues(t, 5, start)
		assert.EqualValues(t, 10, offset)
		return continuation, nil
	}

	area := isofixture.EncodeCE(5, 10, uint32(len(continuation)))
	entries, err := susp.Walk(area, cont, 32, susp.DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, readCount)
}

func TestWalkDetectsContinuationCycle(t *testing.T) {
	cont := func(start, offset, length uint32) ([]byte, error) {
		return isofixture.EncodeCE(5, 10, 24), nil
	}

	area := isofixture.EncodeCE(5, 10, 24)
	_, err := susp.Walk(area, cont, 32, susp.DefaultRegistry())
	require.Error(t, err)

	werr, ok := err.(*susp.WalkError)
	require.True(t, ok)
	assert.Equal(t, "SuspCycle", werr.Kind)
}

func TestWalkStopsAtTerminator(t *testing.T) {
	area := append(isofixture.EncodeST(), isofixture.EncodeER("X", "d", "s", 1)...)

	entries, err := susp.Walk(area, nil, 32, susp.DefaultRegistry())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWalkRejectsTruncatedEntry(t *testing.T) {
	area := []byte{'S', 'P'}
	_, err := susp.Walk(area, nil, 32, susp.DefaultRegistry())
	require.Error(t, err)
	werr, ok := err.(*susp.WalkError)
	require.True(t, ok)
	assert.Equal(t, "SuspTruncated", werr.Kind)
}
