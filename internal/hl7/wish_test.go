package hl7

import "testing"

const wishAdmission = "MSH|^~\\&|WISH|HIS^20250105120000|LAB|HOSP|20250105120500|SEC|ADT^A01|MSG00001\n" +
	"EVN|A01|20250105113000\n" +
	"PID|1||12345678\n" +
	"PV1|1|I|310^102^A^^^^CARDIO-8BLO|U|||1234^DUPONT^JEAN|||CHIR|8REV||||||||1450123"

func TestDecodeWish_FullMessage(t *testing.T) {
	rec := DecodeWish(wishAdmission)

	if rec.Source != "U/I" {
		t.Errorf("Expected source U/I, got %q", rec.Source)
	}
	assertStr(t, "MessageID", rec.MessageID, "MSG00001")
	assertStr(t, "MessageDate", rec.MessageDate, "2025-01-05 12:00:00")
	assertStr(t, "IssuedAt", rec.IssuedAt, "2025-01-05 12:05:00")
	assertStr(t, "EventCode", rec.EventCode, "A01")
	assertStr(t, "EffectiveAt", rec.EffectiveAt, "2025-01-05 11:30:00")
	assertStr(t, "PatientID", rec.PatientID, "12345678")
	assertStr(t, "PatientClass", rec.PatientClass, "I")
	assertStr(t, "AdmissionType", rec.AdmissionType, "U")
	assertStr(t, "StayID", rec.StayID, "450123")
	assertStr(t, "Department", rec.Department, "CHIR")
	assertStr(t, "PhysicianID", rec.PhysicianID, "1234")
	assertStr(t, "Physician", rec.Physician, "DUPONT, JEAN")

	if rec.UnitCode != "310" || rec.Room != "102" || rec.Bed != "A" {
		t.Errorf("Unexpected location: %q %q %q", rec.UnitCode, rec.Room, rec.Bed)
	}
	if rec.UnitLabel != "310-SOINS INTENSIFS" {
		t.Errorf("Unexpected unit label %q", rec.UnitLabel)
	}
	if rec.ServiceCode != "8BLO" {
		t.Errorf("Expected service 8BLO from hyphen suffix, got %q", rec.ServiceCode)
	}
	if rec.ServiceLabel != "BLOC OPERTAOIRE-MLE" {
		t.Errorf("Unexpected service label %q", rec.ServiceLabel)
	}
}

func TestDecodeWish_RepeatedSegmentLastWins(t *testing.T) {
	raw := "EVN|A01|20250105100000\nEVN|A02|20250105110000"
	rec := DecodeWish(raw)
	assertStr(t, "EventCode", rec.EventCode, "A02")
	assertStr(t, "EffectiveAt", rec.EffectiveAt, "2025-01-05 11:00:00")
}

func TestDecodeWish_ServiceFallbackToLegacyField(t *testing.T) {
	raw := "PV1|1|I|310^102^A|||||||CHIR|8REV||||||||1450123"
	rec := DecodeWish(raw)
	if rec.ServiceCode != "8REV" {
		t.Errorf("Expected legacy fallback 8REV, got %q", rec.ServiceCode)
	}
	if rec.ServiceLabel != "SALLE REVEIL-MLE" {
		t.Errorf("Unexpected service label %q", rec.ServiceLabel)
	}
}

func TestDecodeWish_MissingSegments(t *testing.T) {
	rec := DecodeWish("MSH|^~\\&|WISH")
	if rec.Source != "U/I" {
		t.Errorf("Expected source U/I, got %q", rec.Source)
	}
	if rec.EventCode != nil || rec.PatientID != nil || rec.StayID != nil {
		t.Error("Expected nil fields for absent segments")
	}
	if rec.UnitCode != "" || rec.UnitLabel != "" {
		t.Errorf("Expected empty unit fields, got %q %q", rec.UnitCode, rec.UnitLabel)
	}
}

func TestDecodeWish_UnknownUnitKeepsCodeDropsLabel(t *testing.T) {
	raw := "PV1|1|I|999^1^B"
	rec := DecodeWish(raw)
	if rec.UnitCode != "999" {
		t.Errorf("Expected raw unit code, got %q", rec.UnitCode)
	}
	if rec.UnitLabel != "" {
		t.Errorf("Expected empty label for unknown unit, got %q", rec.UnitLabel)
	}
}

func TestDecodeWish_MalformedTimestampIsNil(t *testing.T) {
	rec := DecodeWish("EVN|A01|garbage")
	assertStr(t, "EventCode", rec.EventCode, "A01")
	if rec.EffectiveAt != nil {
		t.Errorf("Expected nil EffectiveAt, got %q", *rec.EffectiveAt)
	}
}

func TestDecodeWish_MalformedIssueTimestampKeptVerbatim(t *testing.T) {
	rec := DecodeWish("MSH|^~\\&|WISH|HIS|LAB|HOSP|not-a-date")
	assertStr(t, "IssuedAt", rec.IssuedAt, "not-a-date")
}

func TestDecodeWish_StayPrefixStrippedOnce(t *testing.T) {
	raw := "PV1|1|I|310||||||||||||||||1100045"
	rec := DecodeWish(raw)
	assertStr(t, "StayID", rec.StayID, "100045")
}

func assertStr(t *testing.T, name string, got *string, want string) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected %q, got nil", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s: expected %q, got %q", name, want, *got)
	}
}
