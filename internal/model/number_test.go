package model

import (
	"testing"
	"time"
)

func TestFormatDocumentNumber(t *testing.T) {
	day := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		prefix DocumentPrefix
		seq    int64
		want   string
	}{
		{PrefixQuote, 1, "QT202608310001"},
		{PrefixContract, 42, "CT202608310042"},
		{PrefixOrder, 9999, "OD202608319999"},
		{PrefixOrder, 10000, "OD2026083110000"},
	}
	for _, tc := range cases {
		if got := FormatDocumentNumber(tc.prefix, day, tc.seq); got != tc.want {
			t.Errorf("FormatDocumentNumber(%s, %d) = %s, want %s", tc.prefix, tc.seq, got, tc.want)
		}
	}
}

func TestSequenceDateNormalizesToUTC(t *testing.T) {
	east := time.FixedZone("UTC+8", 8*3600)
	// 01:30 on Sep 1 in UTC+8 is still Aug 31 in UTC.
	local := time.Date(2026, 9, 1, 1, 30, 0, 0, east)
	if got := SequenceDate(local); got != "20260831" {
		t.Errorf("SequenceDate = %s, want 20260831", got)
	}
}
