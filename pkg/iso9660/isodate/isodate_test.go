package isodate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/discreader/iso9660fs/pkg/iso9660/isodate"
)

func TestEntryDateTimeRoundTrip(t *testing.T) {
	edt := isodate.EntryDateTime{121, 3, 4, 5, 6, 7, 0}
	got := edt.Timestamp()
	want := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, want, got)
}

func TestEntryDateTimeUnspecifiedIsZero(t *testing.T) {
	var edt isodate.EntryDateTime
	assert.True(t, edt.Timestamp().IsZero())
}

func TestEntryDateTimeAppliesQuarterHourOffset(t *testing.T) {
	edt := isodate.EntryDateTime{121, 3, 4, 5, 6, 7, 4}
	got := edt.Timestamp()
	want := time.Date(2021, 3, 4, 4, 6, 7, 0, time.UTC)
	assert.Equal(t, want, got)
}

func TestDecDateTimeRoundTrip(t *testing.T) {
	var ddt isodate.DecDateTime
	copy(ddt[:16], []byte("2021030405060700"))
	got := ddt.Timestamp()
	want := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, want, got)
}

func TestDecDateTimeUnspecifiedIsZero(t *testing.T) {
	var ddt isodate.DecDateTime
	copy(ddt[:16], []byte("0000000000000000"))
	assert.True(t, ddt.Timestamp().IsZero())
}

func TestDecDateTimeAppliesCentiseconds(t *testing.T) {
	var ddt isodate.DecDateTime
	copy(ddt[:16], []byte("2021030405060750"))
	got := ddt.Timestamp()
	want := time.Date(2021, 3, 4, 5, 6, 7, 500000000, time.UTC)
	assert.Equal(t, want, got)
}
