// Package store adapts the SQL layer to the record types the rest of the
// application works with.
package store

import (
	"context"
	"database/sql"

	"patient-journey/internal/db"
	"patient-journey/internal/models"
)

// MessageStore is the persistence surface the HTTP handlers and the
// ingestion pipeline depend on.
type MessageStore interface {
	SaveWish(ctx context.Context, rec *models.WishRecord, raw string) (int64, error)
	SaveOrline(ctx context.Context, rec *models.ORRecord, raw string) (int64, error)
	ListWish(ctx context.Context, limit, offset int) ([]models.WishRecord, error)
	ListOrline(ctx context.Context, limit, offset int) ([]models.ORRecord, error)
	AllWish(ctx context.Context) ([]models.WishRecord, error)
	AllOrline(ctx context.Context) ([]models.ORRecord, error)
	WishByPatient(ctx context.Context, patientID string) ([]models.WishRecord, error)
	WishByStay(ctx context.Context, patientID, stayID string) ([]models.WishRecord, error)
	OrlineByPatient(ctx context.Context, patientID string) ([]models.ORRecord, error)
	OrlineByStay(ctx context.Context, patientID, stayID string) ([]models.ORRecord, error)
	WishPatients(ctx context.Context) ([]string, error)
	OrlinePatients(ctx context.Context) ([]string, error)
	StaysByPatient(ctx context.Context, patientID string) ([]string, error)
	Clear(ctx context.Context) error
}

type PostgresStore struct {
	q *db.Queries
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{q: db.New(conn)}
}

// Init creates the schema; safe to call on every start.
func (s *PostgresStore) Init(ctx context.Context) error {
	return s.q.EnsureSchema(ctx)
}

func (s *PostgresStore) SaveWish(ctx context.Context, rec *models.WishRecord, raw string) (int64, error) {
	return s.q.InsertWish(ctx, db.WishMessage{
		MessageID:     nullable(rec.MessageID),
		MessageDate:   nullable(rec.MessageDate),
		EventCode:     nullable(rec.EventCode),
		StayID:        nullable(rec.StayID),
		PatientID:     nullable(rec.PatientID),
		PatientClass:  nullable(rec.PatientClass),
		AdmissionType: nullable(rec.AdmissionType),
		Source:        rec.Source,
		EffectiveAt:   nullable(rec.EffectiveAt),
		UnitCode:      rec.UnitCode,
		UnitLabel:     rec.UnitLabel,
		Room:          rec.Room,
		Bed:           rec.Bed,
		ServiceCode:   rec.ServiceCode,
		ServiceLabel:  rec.ServiceLabel,
		Department:    nullable(rec.Department),
		PhysicianID:   nullable(rec.PhysicianID),
		Physician:     nullable(rec.Physician),
		IssuedAt:      nullable(rec.IssuedAt),
		RawMessage:    raw,
	})
}

func (s *PostgresStore) SaveOrline(ctx context.Context, rec *models.ORRecord, raw string) (int64, error) {
	return s.q.InsertOrline(ctx, db.OrlineMessage{
		MessageID:        nullable(rec.MessageID),
		MessageDate:      nullable(rec.MessageDate),
		MessageType:      nullable(rec.MessageType),
		PatientID:        nullable(rec.PatientID),
		StayID:           nullable(rec.StayID),
		OperationID:      nullable(rec.OperationID),
		OperationDate:    nullable(rec.OperationDate),
		PrevScheduled:    nullable(rec.PrevScheduled),
		Planning:         nullable(rec.Planning),
		ScheduledStart:   nullable(rec.ScheduledStart),
		TheaterID:        nullable(rec.TheaterID),
		RoomArrival:      nullable(rec.RoomArrival),
		ScheduledEnd:     nullable(rec.ScheduledEnd),
		ExpectedDuration: nullable(rec.ExpectedDuration),
		Anesthesia:       nullable(rec.Anesthesia),
		Discipline:       nullable(rec.Discipline),
		OperationType:    nullable(rec.OperationType),
		Surgeon:          nullable(rec.Surgeon),
		BirthDate:        nullable(rec.BirthDate),
		Sex:              nullable(rec.Sex),
		RawMessage:       raw,
	})
}

func (s *PostgresStore) ListWish(ctx context.Context, limit, offset int) ([]models.WishRecord, error) {
	rows, err := s.q.ListWish(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return wishRecords(rows), nil
}

func (s *PostgresStore) ListOrline(ctx context.Context, limit, offset int) ([]models.ORRecord, error) {
	rows, err := s.q.ListOrline(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return orlineRecords(rows), nil
}

func (s *PostgresStore) AllWish(ctx context.Context) ([]models.WishRecord, error) {
	rows, err := s.q.AllWish(ctx)
	if err != nil {
		return nil, err
	}
	return wishRecords(rows), nil
}

func (s *PostgresStore) AllOrline(ctx context.Context) ([]models.ORRecord, error) {
	rows, err := s.q.AllOrline(ctx)
	if err != nil {
		return nil, err
	}
	return orlineRecords(rows), nil
}

func (s *PostgresStore) WishByPatient(ctx context.Context, patientID string) ([]models.WishRecord, error) {
	rows, err := s.q.WishByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return wishRecords(rows), nil
}

func (s *PostgresStore) WishByStay(ctx context.Context, patientID, stayID string) ([]models.WishRecord, error) {
	rows, err := s.q.WishByStay(ctx, patientID, stayID)
	if err != nil {
		return nil, err
	}
	return wishRecords(rows), nil
}

func (s *PostgresStore) OrlineByPatient(ctx context.Context, patientID string) ([]models.ORRecord, error) {
	rows, err := s.q.OrlineByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return orlineRecords(rows), nil
}

func (s *PostgresStore) OrlineByStay(ctx context.Context, patientID, stayID string) ([]models.ORRecord, error) {
	rows, err := s.q.OrlineByStay(ctx, patientID, stayID)
	if err != nil {
		return nil, err
	}
	return orlineRecords(rows), nil
}

func (s *PostgresStore) WishPatients(ctx context.Context) ([]string, error) {
	return s.q.DistinctWishPatients(ctx)
}

func (s *PostgresStore) OrlinePatients(ctx context.Context) ([]string, error) {
	return s.q.DistinctOrlinePatients(ctx)
}

func (s *PostgresStore) StaysByPatient(ctx context.Context, patientID string) ([]string, error) {
	return s.q.StaysByPatient(ctx, patientID)
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	return s.q.TruncateAll(ctx)
}

func wishRecords(rows []db.WishMessage) []models.WishRecord {
	out := make([]models.WishRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, models.WishRecord{
			ID:            m.ID,
			MessageID:     ptr(m.MessageID),
			MessageDate:   ptr(m.MessageDate),
			EventCode:     ptr(m.EventCode),
			StayID:        ptr(m.StayID),
			PatientID:     ptr(m.PatientID),
			PatientClass:  ptr(m.PatientClass),
			AdmissionType: ptr(m.AdmissionType),
			Source:        m.Source,
			EffectiveAt:   ptr(m.EffectiveAt),
			UnitCode:      m.UnitCode,
			UnitLabel:     m.UnitLabel,
			Room:          m.Room,
			Bed:           m.Bed,
			ServiceCode:   m.ServiceCode,
			ServiceLabel:  m.ServiceLabel,
			Department:    ptr(m.Department),
			PhysicianID:   ptr(m.PhysicianID),
			Physician:     ptr(m.Physician),
			IssuedAt:      ptr(m.IssuedAt),
		})
	}
	return out
}

func orlineRecords(rows []db.OrlineMessage) []models.ORRecord {
	out := make([]models.ORRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, models.ORRecord{
			ID:               m.ID,
			MessageID:        ptr(m.MessageID),
			MessageDate:      ptr(m.MessageDate),
			MessageType:      ptr(m.MessageType),
			PatientID:        ptr(m.PatientID),
			StayID:           ptr(m.StayID),
			OperationID:      ptr(m.OperationID),
			OperationDate:    ptr(m.OperationDate),
			PrevScheduled:    ptr(m.PrevScheduled),
			Planning:         ptr(m.Planning),
			ScheduledStart:   ptr(m.ScheduledStart),
			TheaterID:        ptr(m.TheaterID),
			RoomArrival:      ptr(m.RoomArrival),
			ScheduledEnd:     ptr(m.ScheduledEnd),
			ExpectedDuration: ptr(m.ExpectedDuration),
			Anesthesia:       ptr(m.Anesthesia),
			Discipline:       ptr(m.Discipline),
			OperationType:    ptr(m.OperationType),
			Surgeon:          ptr(m.Surgeon),
			BirthDate:        ptr(m.BirthDate),
			Sex:              ptr(m.Sex),
		})
	}
	return out
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
