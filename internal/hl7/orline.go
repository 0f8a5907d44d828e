package hl7

import (
	"strings"

	"patient-journey/internal/models"
)

// Marker tokens identifying ORLine-issued identifiers inside MSH and PV1.
const (
	orlineMarker       = "^ORLine"
	orlineSuffixMarker = "^^^ORLine"
	theaterPrefix      = "BLOCMLE."
	anesthesiaMarker   = "ANESTHESIA"
)

// DecodeORLine builds one operating-room record from one ORLine message,
// synthesizing fields from up to eight segment types. The operation
// identifier is resolved first-match-wins across MSH-10, PV1 and SCH-1;
// later segments never overwrite it. No decode failure escapes.
func DecodeORLine(raw string) *models.ORRecord {
	rec := &models.ORRecord{}

	// Raw pieces that feed the derived fields after the scan.
	var evnDate *string

	for _, seg := range Tokenize(raw) {
		switch seg.Tag {
		case "MSH":
			rec.MessageID = fieldPtr(seg, 9)
			if raw := fieldPtr(seg, 6); raw != nil {
				rec.MessageDate = DecodeCompactFR(*raw)
			}
			if f8 := seg.Field(8); strings.Contains(f8, componentSep) {
				typ := seg.Component(8, 0)
				rec.MessageType = &typ
			}
			if f10 := seg.Field(10); rec.OperationID == nil && strings.Contains(f10, orlineMarker) {
				op := strings.SplitN(f10, componentSep, 2)[0]
				rec.OperationID = &op
			}

		case "EVN":
			// Canonical operation-date source; the PV2 variant is recorded
			// in DESIGN.md.
			if raw := fieldPtr(seg, 2); raw != nil {
				evnDate = DecodeDate(*raw)
			}

		case "PID":
			rec.PatientID = fieldPtr(seg, 3)
			if raw := fieldPtr(seg, 7); raw != nil {
				rec.BirthDate = DecodeCompactFR(*raw)
			}
			rec.Sex = fieldPtr(seg, 8)

		case "PV1":
			if stay := stayID(seg); stay != nil {
				rec.StayID = stay
			}
			if rec.OperationID == nil {
				for _, fld := range seg.Fields {
					if strings.HasSuffix(fld, orlineSuffixMarker) {
						op := strings.SplitN(fld, componentSep, 2)[0]
						rec.OperationID = &op
						break
					}
				}
			}
			if rec.TheaterID == nil {
				for _, comp := range seg.Components(3) {
					if strings.HasPrefix(comp, theaterPrefix) {
						theater := strings.Split(comp, ".")[1]
						rec.TheaterID = &theater
						break
					}
				}
			}

		case "PV2":
			if raw := fieldPtr(seg, 8); raw != nil && *raw != "" {
				rec.RoomArrival = DecodeCompact(*raw)
			}

		case "SCH":
			if rec.OperationID == nil && len(seg.Fields) > 1 {
				op := seg.Component(1, 0)
				rec.OperationID = &op
			}
			decodeSchedulingBlock(seg, rec)
			if typ := seg.Component(7, 1); typ != "" {
				rec.OperationType = &typ
			}
			if len(seg.Fields) > 20 {
				if chir := strings.TrimSpace(seg.Fields[20]); chir != "" {
					rec.Surgeon = &chir
				}
			}

		case "OBX":
			if len(seg.Fields) > 4 && strings.Contains(seg.Field(3), anesthesiaMarker) {
				rec.Anesthesia = fieldPtr(seg, 5)
			}

		case "AIP":
			if len(seg.Fields) > 4 {
				parts := seg.Components(4)
				discip := parts[len(parts)-1]
				rec.Discipline = &discip
			}

		case "AIL":
			if rec.TheaterID == nil && strings.Contains(seg.Field(3), ".") {
				after := strings.Split(seg.Field(3), ".")[1]
				if len(after) > 2 {
					after = after[:2]
				}
				rec.TheaterID = &after
			}
		}
	}

	// Operation date: EVN when the message carries one, otherwise it
	// equals the previous scheduled date.
	switch {
	case evnDate != nil:
		rec.OperationDate = evnDate
	case rec.PrevScheduled != nil:
		rec.OperationDate = rec.PrevScheduled
	}
	rec.Planning = planningBucket(rec.OperationDate, rec.PrevScheduled)

	return rec
}

// decodeSchedulingBlock reads the caret-delimited SCH-11 timing block:
// component 2 = expected duration, component 3 = previous scheduled date
// plus start time, component 4 = end time.
func decodeSchedulingBlock(sch Segment, rec *models.ORRecord) {
	if len(sch.Fields) <= 11 {
		return
	}
	info := sch.Components(11)
	if len(info) < 5 {
		return
	}
	start := info[3]
	rec.PrevScheduled = DecodeDate(start)
	if len(start) >= 14 {
		rec.ScheduledStart = DecodeClock(start[8:14])
	}
	if len(info[4]) >= 14 {
		rec.ScheduledEnd = DecodeClock(info[4][8:14])
	}
	dur := info[2]
	rec.ExpectedDuration = &dur
}

// planningBucket classifies how far in advance the operation was
// scheduled. Left unset when either date is missing or unparseable.
func planningBucket(opDate, prevDate *string) *string {
	if opDate == nil || prevDate == nil {
		return nil
	}
	op, ok := ParseFRDate(*opDate)
	if !ok {
		return nil
	}
	prev, ok := ParseFRDate(*prevDate)
	if !ok {
		return nil
	}
	days := int(op.Sub(prev).Hours() / 24)
	var bucket string
	switch {
	case days == 0:
		bucket = models.PlanningSameDay
	case days < 7:
		bucket = models.PlanningShortTerm
	default:
		bucket = models.PlanningLongTerm
	}
	return &bucket
}
