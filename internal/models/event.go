package models

import "strings"

// EventCode is the canonical ATD event classification, decoded directly
// from the EVN event-type field.
type EventCode string

const (
	EventAdmission    EventCode = "A01"
	EventTransfer     EventCode = "A02"
	EventDischarge    EventCode = "A03"
	EventPreAdmission EventCode = "A05"
)

// Label returns the display label used by journey consumers.
func (c EventCode) Label() string {
	switch c {
	case EventAdmission:
		return "ADMISSION"
	case EventTransfer:
		return "TRANSFER"
	case EventDischarge:
		return "DISCHARGE"
	default:
		return "AUTRE"
	}
}

// ParseEventCode recognizes the ATD codes the journey and census layers
// act on. Any other code (A05, A08, ...) is reported as unknown.
func ParseEventCode(s string) (EventCode, bool) {
	switch EventCode(strings.ToUpper(strings.TrimSpace(s))) {
	case EventAdmission:
		return EventAdmission, true
	case EventTransfer:
		return EventTransfer, true
	case EventDischarge:
		return EventDischarge, true
	}
	return "", false
}

// ClassifyDescription infers an event code from a free-text event
// description. This is the legacy path for feeds that predate the EVN
// event-type field; the canonical path is ParseEventCode and nothing in
// the decoders depends on this.
func ClassifyDescription(desc string) (EventCode, bool) {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "admission"), strings.Contains(d, "entrée"):
		return EventAdmission, true
	case strings.Contains(d, "sortie"):
		return EventDischarge, true
	case strings.Contains(d, "transfert"):
		return EventTransfer, true
	}
	return "", false
}
