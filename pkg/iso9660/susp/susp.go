// Copyright © 2018 NVIDIA Corporation

package susp

// System Usage Sharing Protocol (SUSP, IEEE P1281)
// See ftp://ftp.ymi.com/pub/rockridge/susp112.ps
//
// This package only decodes: the generic entry-framing, SP/CE/ER/ST, and
// the bounded chain walk that follows CE continuations. Rock Ridge fields
// (PX/PN/TF/NM/SL/CL/RE) live one layer up in pkg/iso9660/rrip so that this
// package stays a pure SUSP implementation, same split as the teacher's
// own susp/rrip package boundary.

// SystemUseEntry is a decoded entry in a directory record's System Use
// area. Entry is a tagged variant keyed by its 2-byte SUSP tag.
type SystemUseEntry interface {
	Tag() string
}

// EntryDecoder decodes the payload of one System Use entry (the bytes
// after the 4-byte tag/len/version header) into a SystemUseEntry. version
// is provided but most Rock Ridge entries tolerate any version per
// spec.md §4.6.
type EntryDecoder func(payload []byte, version byte) (SystemUseEntry, error)
