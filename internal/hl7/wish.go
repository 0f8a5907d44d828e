package hl7

import (
	"strings"

	"patient-journey/internal/models"
	"patient-journey/internal/reference"
)

// wishSource is the source marker stored on every WISH record.
const wishSource = "U/I"

// DecodeWish builds one ATD record from one WISH message. When a message
// carries repeated segments of the same type, the last one wins; this is
// the upstream emitter's correction mechanism, not a bug to deduplicate.
// Decoding never fails: missing or malformed fields keep their fallback
// value.
func DecodeWish(raw string) *models.WishRecord {
	var msh, evn, pid, pv1 *Segment
	for _, seg := range Tokenize(raw) {
		seg := seg
		switch seg.Tag {
		case "MSH":
			msh = &seg
		case "EVN":
			evn = &seg
		case "PID":
			pid = &seg
		case "PV1":
			pv1 = &seg
		}
	}

	rec := &models.WishRecord{Source: wishSource}

	if msh != nil {
		rec.MessageID = fieldPtr(*msh, 9)
		// Issue timestamp is best-effort: an undecodable value survives
		// verbatim rather than being dropped.
		if raw := fieldPtr(*msh, 6); raw != nil {
			ts := NormalizeTimestamp(*raw)
			rec.IssuedAt = &ts
		}
		// The message date lives in a different MSH field than the issue
		// timestamp: second caret component of field 3, first 14 chars.
		if comp := msh.Component(3, 1); comp != "" {
			rec.MessageDate = DecodeCompact(comp)
		}
	}

	if evn != nil {
		rec.EventCode = fieldPtr(*evn, 1)
		if raw := fieldPtr(*evn, 2); raw != nil {
			rec.EffectiveAt = DecodeCompact(*raw)
		}
	}

	if pid != nil {
		rec.PatientID = fieldPtr(*pid, 3)
	}

	if pv1 != nil {
		rec.PatientClass = fieldPtr(*pv1, 2)
		rec.UnitCode = pv1.Component(3, 0)
		rec.Room = pv1.Component(3, 1)
		rec.Bed = pv1.Component(3, 2)
		if len(pv1.Fields) > 4 {
			adty := pv1.Component(4, 0)
			rec.AdmissionType = &adty
		}
		rec.Department = fieldPtr(*pv1, 10)
		if len(pv1.Fields) > 7 {
			nrpr := pv1.Component(7, 0)
			rec.PhysicianID = &nrpr
			if parts := pv1.Components(7); len(parts) >= 3 {
				name := parts[1] + ", " + parts[2]
				rec.Physician = &name
			}
		}
		rec.ServiceCode = wishServiceCode(*pv1)
		if stay := stayID(*pv1); stay != nil {
			rec.StayID = stay
		}
	}

	if label, ok := reference.UnitLabel(rec.UnitCode); ok {
		rec.UnitLabel = label
	}
	rec.ServiceLabel = reference.ServiceLabel(rec.ServiceCode)

	return rec
}

// wishServiceCode resolves the technical-service code. Canonical layout:
// PV1-3 component 6 carries a hyphen-suffixed code ("...-8BLO"), of which
// the part after the last hyphen is the code. The legacy feed variant
// carries the code verbatim in PV1-11 instead; we fall back to it when
// component 6 is absent. See DESIGN.md for the variant decision.
func wishServiceCode(pv1 Segment) string {
	if comp := pv1.Component(3, 6); comp != "" {
		if idx := strings.LastIndex(comp, "-"); idx >= 0 {
			return comp[idx+1:]
		}
		return comp
	}
	return pv1.Field(11)
}

// stayID reads PV1-19 and strips the single leading "1" the upstream
// system prepends to stay numbers.
func stayID(pv1 Segment) *string {
	if len(pv1.Fields) <= 19 || pv1.Fields[19] == "" {
		return nil
	}
	stay := pv1.Fields[19]
	stay = strings.TrimPrefix(stay, "1")
	return &stay
}

// fieldPtr returns the field at i, or nil when the segment is shorter. A
// present-but-empty field is an empty string, not nil.
func fieldPtr(seg Segment, i int) *string {
	if i >= len(seg.Fields) {
		return nil
	}
	v := seg.Fields[i]
	return &v
}
