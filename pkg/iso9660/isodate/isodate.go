// Package isodate decodes the two on-disc timestamp encodings ECMA-119
// and Rock Ridge use. It has no dependencies on the rest of the decoder
// so both pkg/iso9660 and pkg/iso9660/rrip can import it without a cycle
// (RRIP's TF entry uses the same short/long form fields as the volume
// descriptors and directory records).
package isodate

import "time"

// EntryDateTime is the 7-byte "recording date and time" field embedded in
// directory records and RRIP short-form TF timestamps.
type EntryDateTime [7]byte

// Timestamp decodes the field. A field that is entirely zero denotes
// "unspecified" per ECMA-119; the zero time.Time is returned in that case.
func (edt EntryDateTime) Timestamp() time.Time {
	if edt == (EntryDateTime{}) {
		return time.Time{}
	}

	year := int(edt[0]) + 1900
	month := time.Month(edt[1])
	day := int(edt[2])
	hour := int(edt[3])
	minute := int(edt[4])
	second := int(edt[5])
	offsetQuarterHours := int8(edt[6])

	loc := time.FixedZone("", int(offsetQuarterHours)*15*60)
	return time.Date(year, month, day, hour, minute, second, 0, loc).UTC()
}

// DecDateTime is the 17-byte ASCII "YYYYMMDDHHMMSSccZ" field used by the
// PVD/SVD and RRIP long-form TF timestamps.
type DecDateTime [17]byte

// Timestamp decodes the field. All-zero-digit fields denote "unspecified".
func (ddt DecDateTime) Timestamp() time.Time {
	allZero := true
	for _, b := range ddt[:16] {
		if b != '0' {
			allZero = false
			break
		}
	}
	if allZero {
		return time.Time{}
	}

	t, err := time.Parse("20060102150405", string(ddt[0:14]))
	if err != nil {
		return time.Time{}
	}

	centiseconds := parseDigits(ddt[14:16])
	offsetQuarterHours := int8(ddt[16])
	loc := time.FixedZone("", int(offsetQuarterHours)*15*60)

	return t.Add(time.Duration(centiseconds) * 10 * time.Millisecond).In(loc).UTC()
}

func parseDigits(b []byte) int {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
