package hl7

import (
	"testing"

	"patient-journey/internal/models"
)

const orlineScheduled = "MSH|^~\\&|ORL|SND|RCV|FAC|20250610081500|SEC|SIU^S12|MSG777|OP123^ORLine\n" +
	"EVN|S12|20250612000000\n" +
	"PID|1||PAT42||||19800101120000|M\n" +
	"PV1|1|I|BLOCMLE.05^SALLE||||||||||||||||1778899\n" +
	"SCH|FALLBACK123^X||||||X^ELECTIVE||||^^90^20250610073000^20250610090000|||||||||DR MARTIN\n" +
	"OBX|1|TX|ANESTHESIA^TYPE||GENERAL\n" +
	"AIP|1|||1234^DUPONT^J^^^^ORTHO"

func TestDecodeORLine_FullMessage(t *testing.T) {
	rec := DecodeORLine(orlineScheduled)

	assertStr(t, "MessageID", rec.MessageID, "MSG777")
	assertStr(t, "MessageDate", rec.MessageDate, "10-06-2025 08:15:00")
	assertStr(t, "MessageType", rec.MessageType, "SIU")
	assertStr(t, "PatientID", rec.PatientID, "PAT42")
	assertStr(t, "BirthDate", rec.BirthDate, "01-01-1980 12:00:00")
	assertStr(t, "Sex", rec.Sex, "M")
	assertStr(t, "StayID", rec.StayID, "778899")
	assertStr(t, "OperationID", rec.OperationID, "OP123")
	assertStr(t, "TheaterID", rec.TheaterID, "05")
	assertStr(t, "OperationDate", rec.OperationDate, "12-06-2025")
	assertStr(t, "PrevScheduled", rec.PrevScheduled, "10-06-2025")
	assertStr(t, "ScheduledStart", rec.ScheduledStart, "07:30:00")
	assertStr(t, "ScheduledEnd", rec.ScheduledEnd, "09:00:00")
	assertStr(t, "ExpectedDuration", rec.ExpectedDuration, "90")
	assertStr(t, "OperationType", rec.OperationType, "ELECTIVE")
	assertStr(t, "Surgeon", rec.Surgeon, "DR MARTIN")
	assertStr(t, "Anesthesia", rec.Anesthesia, "GENERAL")
	assertStr(t, "Discipline", rec.Discipline, "ORTHO")
	// 12-06 minus 10-06 is two days out
	assertStr(t, "Planning", rec.Planning, models.PlanningShortTerm)
}

func TestDecodeORLine_OperationIDPriorityChain(t *testing.T) {
	// MSH-10 outranks PV1 and SCH even when all three are present.
	rec := DecodeORLine(orlineScheduled)
	assertStr(t, "OperationID", rec.OperationID, "OP123")

	// PV1 marker outranks SCH.
	pv1Only := "PV1|1|I|X|OP456^^^ORLine\nSCH|FALLBACK123^X"
	rec = DecodeORLine(pv1Only)
	assertStr(t, "OperationID", rec.OperationID, "OP456")

	// SCH is the last resort.
	schOnly := "SCH|FALLBACK123^X"
	rec = DecodeORLine(schOnly)
	assertStr(t, "OperationID", rec.OperationID, "FALLBACK123")
}

func TestDecodeORLine_PlanningBuckets(t *testing.T) {
	message := func(evn, sched string) string {
		return "EVN|S12|" + evn + "\n" +
			"SCH|OP1^X||||||||||^^60^" + sched + "^" + sched
	}
	cases := []struct {
		name string
		evn  string
		prev string
		want string
	}{
		{"same day", "20250610000000", "20250610073000", models.PlanningSameDay},
		{"two days", "20250612000000", "20250610073000", models.PlanningShortTerm},
		{"ten days", "20250620000000", "20250610073000", models.PlanningLongTerm},
	}
	for _, c := range cases {
		rec := DecodeORLine(message(c.evn, c.prev))
		if rec.Planning == nil {
			t.Errorf("%s: expected %q, got nil", c.name, c.want)
			continue
		}
		if *rec.Planning != c.want {
			t.Errorf("%s: expected %q, got %q", c.name, c.want, *rec.Planning)
		}
	}
}

func TestDecodeORLine_PlanningUnsetWithoutDates(t *testing.T) {
	rec := DecodeORLine("SCH|OP1^X")
	if rec.Planning != nil {
		t.Errorf("Expected nil planning, got %q", *rec.Planning)
	}
}

func TestDecodeORLine_OperationDateFallsBackToSchedule(t *testing.T) {
	// No EVN segment: the previous scheduled date stands in.
	raw := "SCH|OP1^X||||||||||^^60^20250610073000^20250610090000"
	rec := DecodeORLine(raw)
	assertStr(t, "OperationDate", rec.OperationDate, "10-06-2025")
	assertStr(t, "Planning", rec.Planning, models.PlanningSameDay)
}

func TestDecodeORLine_TheaterFromAILFallback(t *testing.T) {
	raw := "AIL|1||SALLE.071"
	rec := DecodeORLine(raw)
	assertStr(t, "TheaterID", rec.TheaterID, "07")

	// PV1 theater wins over AIL when both are present.
	both := "PV1|1|I|BLOCMLE.03^X\nAIL|1||SALLE.071"
	rec = DecodeORLine(both)
	assertStr(t, "TheaterID", rec.TheaterID, "03")
}

func TestDecodeORLine_RoomArrival(t *testing.T) {
	raw := "PV2||||||||20250610071500"
	rec := DecodeORLine(raw)
	assertStr(t, "RoomArrival", rec.RoomArrival, "2025-06-10 07:15:00")
}

func TestDecodeORLine_ShortSchedulingBlockIgnored(t *testing.T) {
	raw := "SCH|OP1^X||||||||||^^90"
	rec := DecodeORLine(raw)
	if rec.PrevScheduled != nil || rec.ExpectedDuration != nil {
		t.Error("Expected timing fields to stay nil for a short scheduling block")
	}
}
