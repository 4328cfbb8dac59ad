package iso9660

import (
	"strings"

	"github.com/discreader/iso9660fs/pkg/iso9660/rrip"
)

// resolveName picks a DirectoryRecord's display name: an RRIP NM
// override when Rock Ridge is active and present, otherwise the raw
// identifier decoded for the active namespace (Joliet UCS-2BE, or
// primary strD with the ";version" suffix optionally stripped per
// cfg.StripVersionSuffix).
func resolveName(rec *DirectoryRecord, cfg *Config, namespace Namespace, useRockRidge bool) (string, error) {
	if rec.IsSelf() {
		return ".", nil
	}
	if rec.IsParent() {
		return "..", nil
	}

	if useRockRidge {
		if name, ok, tooLarge := rrip.AssembleName(rec.SystemUse, cfg.MaxAssembledField); ok {
			return name, nil
		} else if tooLarge {
			return "", wrapErrf(KindAssembledFieldTooLarge, "NM alternate name exceeds MaxAssembledField")
		}
	}

	if namespace == NamespaceJoliet {
		name, err := decodeJoliet(rec.IdentifierRaw, cfg)
		if err != nil {
			return "", err
		}
		return name, nil
	}

	name := decodeStrD(rec.IdentifierRaw)
	if cfg.StripVersionSuffix {
		if idx := strings.LastIndexByte(name, ';'); idx >= 0 {
			name = name[:idx]
		}
	}
	return name, nil
}
