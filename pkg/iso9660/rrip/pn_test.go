package rrip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

func TestDecodeDeviceNumber(t *testing.T) {
	area := isofixture.EncodePN(0, 0x0103)

	entries, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.NoError(t, err)

	pn, ok := rrip.DecodeDeviceNumber(entries)
	require.True(t, ok)
	assert.EqualValues(t, 0, pn.DevTHigh)
	assert.EqualValues(t, 0x0103, pn.DevTLow)
}

func TestDecodeDeviceNumberTruncated(t *testing.T) {
	full := isofixture.EncodePN(0, 0x0103)
	area := full[:len(full)-4]

	_, err := susp.Walk(area, nil, 8, rrip.Registry())
	require.Error(t, err)
	werr, ok := err.(*susp.WalkError)
	require.True(t, ok)
	assert.Equal(t, "SuspTruncated", werr.Kind)
}
