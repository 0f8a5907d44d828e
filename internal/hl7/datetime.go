package hl7

import "time"

// Timestamp layouts of the feed and of the canonical record fields. All
// decode helpers return nil on failure; fallback policy lives here once
// instead of around every call site.
const (
	compactLayout  = "20060102150405"
	compactShort   = "200601021504"
	compactDate    = "20060102"
	isoLayout      = "2006-01-02 15:04:05"
	frLayout       = "02-01-2006 15:04:05"
	frDateLayout   = "02-01-2006"
	clockLayout    = "150405"
	clockOutLayout = "15:04:05"
)

// DecodeCompact decodes a 14-digit compact timestamp (or the first 14
// characters of a longer one) into "YYYY-MM-DD HH:MM:SS".
func DecodeCompact(s string) *string {
	if len(s) > 14 {
		s = s[:14]
	}
	t, err := time.Parse(compactLayout, s)
	if err != nil {
		return nil
	}
	out := t.Format(isoLayout)
	return &out
}

// DecodeCompactFR decodes an exactly 14-digit compact timestamp into the
// day-first "DD-MM-YYYY HH:MM:SS" form used by the ORLine record.
func DecodeCompactFR(s string) *string {
	t, err := time.Parse(compactLayout, s)
	if err != nil {
		return nil
	}
	out := t.Format(frLayout)
	return &out
}

// DecodeDate decodes the date part (first 8 characters) of a compact
// timestamp into "DD-MM-YYYY".
func DecodeDate(s string) *string {
	if len(s) > 8 {
		s = s[:8]
	}
	t, err := time.Parse(compactDate, s)
	if err != nil {
		return nil
	}
	out := t.Format(frDateLayout)
	return &out
}

// DecodeClock decodes a 6-digit HHMMSS string into "HH:MM:SS".
func DecodeClock(s string) *string {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return nil
	}
	out := t.Format(clockOutLayout)
	return &out
}

// NormalizeTimestamp converts a 12- or 14-digit compact timestamp into the
// ISO-like form and preserves the original string when it cannot be
// decoded. This is the best-effort path for message timestamps where a raw
// value beats a dropped one.
func NormalizeTimestamp(s string) string {
	if s == "" {
		return s
	}
	var t time.Time
	var err error
	switch len(s) {
	case 12:
		t, err = time.Parse(compactShort, s)
	case 14:
		t, err = time.Parse(compactLayout, s)
	default:
		return s
	}
	if err != nil {
		return s
	}
	return t.Format(isoLayout)
}

// ParseISO parses the canonical "YYYY-MM-DD HH:MM:SS" record timestamp.
func ParseISO(s string) (time.Time, bool) {
	t, err := time.Parse(isoLayout, s)
	return t, err == nil
}

// ParseFRDate parses the day-first "DD-MM-YYYY" record date.
func ParseFRDate(s string) (time.Time, bool) {
	t, err := time.Parse(frDateLayout, s)
	return t, err == nil
}
