package rrip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/discreader/iso9660fs/internal/isofixture"
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

func TestIsRelocatedTrue(t *testing.T) {
	entries, err := susp.Walk(isofixture.EncodeRE(), nil, 8, rrip.Registry())
	require.NoError(t, err)
	assert.True(t, rrip.IsRelocated(entries))
}

func TestIsRelocatedFalse(t *testing.T) {
	entries, err := susp.Walk(isofixture.EncodeCL(4096), nil, 8, rrip.Registry())
	require.NoError(t, err)
	assert.False(t, rrip.IsRelocated(entries))
}
