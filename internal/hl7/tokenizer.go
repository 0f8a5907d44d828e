// Package hl7 decodes the two upstream pipe-delimited message dialects
// (WISH and ORLine) into canonical records. Decoding is best-effort: a
// field that is missing, truncated, or malformed resolves to its fallback
// value and never aborts the message.
package hl7

import "strings"

// Field and component delimiters of the feed. The feeds never override
// them via MSH, so they are fixed here.
const (
	fieldSep     = "|"
	componentSep = "^"
)

// Segment is one tokenized message line: an ordered field list tagged with
// its upper-cased segment identifier. Field 0 is the tag itself, matching
// the upstream 1-indexed field numbering.
type Segment struct {
	Tag    string
	Fields []string
}

// Field returns the field at the given pipe position, or empty when the
// segment is shorter than that. An index past the end is an absent field,
// never an error.
func (s Segment) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return s.Fields[i]
}

// Component splits field i on the caret delimiter and returns component j,
// empty when either index is out of range.
func (s Segment) Component(i, j int) string {
	parts := strings.Split(s.Field(i), componentSep)
	if j < 0 || j >= len(parts) {
		return ""
	}
	return parts[j]
}

// Components returns all caret components of field i.
func (s Segment) Components(i int) []string {
	return strings.Split(s.Field(i), componentSep)
}

// Tokenize splits raw message text into segments. File feeds separate
// segments with newlines, wire feeds with carriage returns; both forms
// tokenize identically. Lines are trimmed and empty lines skipped; each
// remaining line becomes one segment. Calling Tokenize twice on the same
// text yields identical output.
func Tokenize(raw string) []Segment {
	raw = strings.ReplaceAll(raw, "\r", "\n")
	var segments []Segment
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, fieldSep)
		segments = append(segments, Segment{
			Tag:    strings.ToUpper(strings.TrimSpace(fields[0])),
			Fields: fields,
		})
	}
	return segments
}
