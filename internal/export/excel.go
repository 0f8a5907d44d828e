// Package export renders the stored message sets as a spreadsheet for
// offline analysis.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"patient-journey/internal/models"
)

const (
	wishSheet   = "Wish Messages"
	orlineSheet = "Orline Messages"
)

var wishHeaders = []string{
	"ID", "Message ID", "Message Date", "Event Code", "Stay", "Patient",
	"Class", "Admission Type", "Source", "Effective At", "Unit", "Unit Label",
	"Room", "Bed", "Service", "Service Label", "Department", "Physician ID",
	"Physician", "Issued At",
}

var orlineHeaders = []string{
	"ID", "Patient", "Stay", "Operation", "Operation Date", "Prev Scheduled",
	"Planning", "Scheduled Start", "Theater", "Room Arrival", "Scheduled End",
	"Expected Duration", "Anesthesia", "Discipline", "Operation Type",
	"Surgeon", "Birth Date", "Sex",
}

// WriteWorkbook writes both message sets as one workbook with a sheet per
// dialect.
func WriteWorkbook(w io.Writer, wish []models.WishRecord, orline []models.ORRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", wishSheet)
	if _, err := f.NewSheet(orlineSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRows(f, wishSheet, wishHeaders, wishRows(wish)); err != nil {
		return err
	}
	if err := writeRows(f, orlineSheet, orlineHeaders, orlineRows(orline)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func wishRows(records []models.WishRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.ID, deref(r.MessageID), deref(r.MessageDate), deref(r.EventCode),
			deref(r.StayID), deref(r.PatientID), deref(r.PatientClass),
			deref(r.AdmissionType), r.Source, deref(r.EffectiveAt), r.UnitCode,
			r.UnitLabel, r.Room, r.Bed, r.ServiceCode, r.ServiceLabel,
			deref(r.Department), deref(r.PhysicianID), deref(r.Physician),
			deref(r.IssuedAt),
		})
	}
	return rows
}

func orlineRows(records []models.ORRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.ID, deref(r.PatientID), deref(r.StayID), deref(r.OperationID),
			deref(r.OperationDate), deref(r.PrevScheduled), deref(r.Planning),
			deref(r.ScheduledStart), deref(r.TheaterID), deref(r.RoomArrival),
			deref(r.ScheduledEnd), deref(r.ExpectedDuration), deref(r.Anesthesia),
			deref(r.Discipline), deref(r.OperationType), deref(r.Surgeon),
			deref(r.BirthDate), deref(r.Sex),
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
