package rrip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
)

func TestIsRockRidgeExtensionRecognizesAllThreeIdentifiers(t *testing.T) {
	assert.True(t, rrip.IsRockRidgeExtension(rrip.ExtensionIdentifierIEEEP1282))
	assert.True(t, rrip.IsRockRidgeExtension(rrip.ExtensionIdentifierIEEE1282))
	assert.True(t, rrip.IsRockRidgeExtension(rrip.ExtensionIdentifierRRIP1991A))
	assert.False(t, rrip.IsRockRidgeExtension("NOT_RRIP"))
}

func TestRegistryCoversAllRockRidgeTags(t *testing.T) {
	reg := rrip.Registry()
	for _, tag := range []string{"PX", "PN", "TF", "NM", "SL", "CL", "RE"} {
		_, ok := reg[tag]
		assert.True(t, ok, "missing decoder for %s", tag)
	}
}
