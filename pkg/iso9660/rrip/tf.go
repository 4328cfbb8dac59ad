package rrip

import (
	"time"

	"github.com/discreader/iso9660fs/pkg/iso9660/isodate"
	"github.com/discreader/iso9660fs/pkg/iso9660/susp"
)

// tfFlag bits select which of the up-to-seven timestamps a TF entry
// carries, and whether they're encoded in EntryDateTime (short) or
// DecDateTime (long) form.
const (
	tfCreation     = 1 << 0
	tfModify       = 1 << 1
	tfAccess       = 1 << 2
	tfAttributes   = 1 << 3
	tfBackup       = 1 << 4
	tfExpiration   = 1 << 5
	tfEffective    = 1 << 6
	tfLongForm     = 1 << 7
)

// Timestamps is the RRIP "TF" entry.
type Timestamps struct {
	Created    *time.Time
	Modified   *time.Time
	Access     *time.Time
	Attributes *time.Time
	Backup     *time.Time
	Expiration *time.Time
	Effective  *time.Time
	LongForm   bool
}

func (tf *Timestamps) Tag() string { return "TF" }

func decodeTF(payload []byte, version byte) (susp.SystemUseEntry, error) {
	if len(payload) < 1 {
		return nil, &susp.WalkError{Kind: "SuspTruncated", Detail: "TF payload truncated"}
	}

	flags := payload[0]
	rest := payload[1:]
	tf := &Timestamps{LongForm: flags&tfLongForm != 0}

	width := 7
	if tf.LongForm {
		width = 17
	}

	take := func() (time.Time, error) {
		if len(rest) < width {
			return time.Time{}, &susp.WalkError{Kind: "SuspTruncated", Detail: "TF timestamp truncated"}
		}
		var t time.Time
		if tf.LongForm {
			var raw isodate.DecDateTime
			copy(raw[:], rest[:width])
			t = raw.Timestamp()
		} else {
			var raw isodate.EntryDateTime
			copy(raw[:], rest[:width])
			t = raw.Timestamp()
		}
		rest = rest[width:]
		return t, nil
	}

	fields := []struct {
		bit  byte
		dest **time.Time
	}{
		{tfCreation, &tf.Created},
		{tfModify, &tf.Modified},
		{tfAccess, &tf.Access},
		{tfAttributes, &tf.Attributes},
		{tfBackup, &tf.Backup},
		{tfExpiration, &tf.Expiration},
		{tfEffective, &tf.Effective},
	}

	for _, f := range fields {
		if flags&f.bit == 0 {
			continue
		}
		t, err := take()
		if err != nil {
			return nil, err
		}
		*f.dest = &t
	}

	return tf, nil
}

// DecodeTimestamps returns the TF entry among entries, if any.
func DecodeTimestamps(entries []susp.SystemUseEntry) (*Timestamps, bool) {
	for _, entry := range entries {
		if tf, ok := entry.(*Timestamps); ok {
			return tf, true
		}
	}
	return nil, false
}
