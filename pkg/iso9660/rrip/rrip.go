// Copyright © 2018 NVIDIA Corporation

package rrip

import "github.com/discreader/iso9660fs/pkg/iso9660/susp"

// Rock Ridge Interchange Protocol (RRIP, IEEE P1282)
// See ftp://ftp.ymi.com/pub/rockridge/rrip112.ps
//
// This decoder accepts any of the three RRIP extension identifiers a disc
// may advertise via SUSP's ER entry; spec.md §4.7 activates Rock Ridge
// mode on any of them (or on a bare PX with no ER, which some encoders
// omit).
const (
	ExtensionIdentifierIEEEP1282 = "IEEE_P1282"
	ExtensionIdentifierIEEE1282  = "IEEE_1282"
	ExtensionIdentifierRRIP1991A = "RRIP_1991A"
)

// IsRockRidgeExtension reports whether identifier (from an ER entry)
// names a Rock Ridge revision this package understands.
func IsRockRidgeExtension(identifier string) bool {
	switch identifier {
	case ExtensionIdentifierIEEEP1282, ExtensionIdentifierIEEE1282, ExtensionIdentifierRRIP1991A:
		return true
	default:
		return false
	}
}

// Registry returns the SUSP entry decoders for every Rock Ridge field
// this package implements: PX, PN, TF, NM, SL, CL, RE.
func Registry() map[string]susp.EntryDecoder {
	return map[string]susp.EntryDecoder{
		"PX": decodePX,
		"PN": decodePN,
		"TF": decodeTF,
		"NM": decodeNM,
		"SL": decodeSL,
		"CL": decodeCL,
		"RE": decodeRE,
	}
}
