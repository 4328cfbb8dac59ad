package iso9660

import (
	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

// hierarchy is the resolved (namespace, Rock Ridge) combination a Decoder
// traverses, plus the SP skip_bytes learned from the root directory's
// "." record.
type hierarchy struct {
	namespace    Namespace
	useRockRidge bool
	skipBytes    byte
	rootStart    LogicalBlockAddress
	rootLength   uint32
	rootRecorded DirectoryRecord
}

// resolveHierarchy inspects the root directory's "." record to detect
// Rock Ridge, then picks which on-disc tree (primary or Joliet) to walk
// and whether to prefer RRIP names/attributes, honoring
// cfg.PreferNamespace when the caller pinned a choice.
func resolveHierarchy(bs BlockSource, cfg *Config, pvd *PrimaryVolumeDescriptor, joliet *SupplementaryVolumeDescriptor) (*hierarchy, error) {
	sector, err := bs.ReadSector(pvd.Root.Start)
	if err != nil {
		return nil, err
	}
	recLen := int(sector[0])
	if recLen == 0 || recLen > len(sector) {
		return nil, wrapErrf(KindMalformedField, "root directory extent does not begin with a '.' record")
	}
	dot, err := decodeDirectoryRecord(sector[:recLen], cfg, 0, continuationReaderFor(bs))
	if err != nil {
		return nil, err
	}
	if !dot.IsSelf() {
		return nil, wrapErrf(KindMalformedField, "root directory extent does not begin with a '.' record")
	}

	skipBytes := detectSkipBytes(dot)
	useRockRidge := detectRockRidge(dot)

	namespace := cfg.PreferNamespace
	if namespace == NamespaceAuto {
		switch {
		case useRockRidge:
			namespace = NamespaceRockRidge
		case joliet != nil:
			namespace = NamespaceJoliet
		default:
			namespace = NamespacePrimary
		}
	}

	h := &hierarchy{
		namespace:    namespace,
		useRockRidge: useRockRidge && namespace != NamespaceJoliet,
		skipBytes:    skipBytes,
		rootStart:    pvd.Root.Start,
		rootLength:   pvd.Root.DataLength,
		rootRecorded: *dot,
	}

	if namespace == NamespaceJoliet {
		if joliet == nil {
			return nil, wrapErrf(KindNotFound, "Joliet namespace requested but no Joliet SVD present")
		}
		h.rootStart = joliet.Root.Start
		h.rootLength = joliet.Root.DataLength
	}

	return h, nil
}

// detectRockRidge reports whether the root's "." record advertises Rock
// Ridge, either via an ER entry naming a recognized RRIP revision or
// (some encoders omit ER) the bare presence of a PX entry.
func detectRockRidge(dot *DirectoryRecord) bool {
	for _, entry := range dot.SystemUse {
		if er, ok := entry.(*susp.ExtensionsReferenceEntry); ok && rrip.IsRockRidgeExtension(er.Identifier) {
			return true
		}
	}
	if _, ok := rrip.DecodePosixEntry(dot.SystemUse); ok {
		return true
	}
	return false
}
