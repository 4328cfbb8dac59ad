package iso9660

import "github.com/discreader/iso9660fs/pkg/iso9660/isodate"

// EntryDateTime is the 7-byte "recording date and time" field embedded in
// directory records. Decoding lives in pkg/iso9660/isodate so that
// pkg/iso9660/rrip's TF entry (which uses the identical encoding) can
// share it without importing this package.
type EntryDateTime = isodate.EntryDateTime

// DecDateTime is the 17-byte ASCII "YYYYMMDDHHMMSSccZ" field used by the
// PVD/SVD.
type DecDateTime = isodate.DecDateTime
