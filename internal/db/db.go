package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// WishMessage is the hl7_message_wish row. Column names follow the
// upstream system so existing reporting queries keep working; fields
// decoded from optional segments are nullable.
type WishMessage struct {
	ID            int64
	MessageID     sql.NullString
	MessageDate   sql.NullString
	EventCode     sql.NullString
	StayID        sql.NullString
	PatientID     sql.NullString
	PatientClass  sql.NullString
	AdmissionType sql.NullString
	Source        string
	EffectiveAt   sql.NullString
	UnitCode      string
	UnitLabel     string
	Room          string
	Bed           string
	ServiceCode   string
	ServiceLabel  string
	Department    sql.NullString
	PhysicianID   sql.NullString
	Physician     sql.NullString
	IssuedAt      sql.NullString
	RawMessage    string
}

// OrlineMessage is the hl7_message_orline row.
type OrlineMessage struct {
	ID               int64
	MessageID        sql.NullString
	MessageDate      sql.NullString
	MessageType      sql.NullString
	PatientID        sql.NullString
	StayID           sql.NullString
	OperationID      sql.NullString
	OperationDate    sql.NullString
	PrevScheduled    sql.NullString
	Planning         sql.NullString
	ScheduledStart   sql.NullString
	TheaterID        sql.NullString
	RoomArrival      sql.NullString
	ScheduledEnd     sql.NullString
	ExpectedDuration sql.NullString
	Anesthesia       sql.NullString
	Discipline       sql.NullString
	OperationType    sql.NullString
	Surgeon          sql.NullString
	BirthDate        sql.NullString
	Sex              sql.NullString
	RawMessage       string
}

const schema = `
CREATE TABLE IF NOT EXISTS hl7_message_wish (
    id BIGSERIAL PRIMARY KEY,
    message_id TEXT,
    date_message TEXT,
    clrs_cd TEXT,
    nsej TEXT,
    cbmrn TEXT,
    cbtype TEXT,
    cbadty TEXT,
    tsv TEXT NOT NULL DEFAULT '',
    clfrom TEXT,
    clnsid TEXT NOT NULL DEFAULT '',
    nsdscr TEXT NOT NULL DEFAULT '',
    clroom TEXT NOT NULL DEFAULT '',
    clbed TEXT NOT NULL DEFAULT '',
    clsvtc TEXT NOT NULL DEFAULT '',
    tectxtfr TEXT NOT NULL DEFAULT '',
    cldept TEXT,
    nrpr TEXT,
    nomm TEXT,
    cltima TEXT,
    raw_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_wish_patient ON hl7_message_wish (cbmrn);
CREATE INDEX IF NOT EXISTS idx_wish_stay ON hl7_message_wish (nsej);

CREATE TABLE IF NOT EXISTS hl7_message_orline (
    id BIGSERIAL PRIMARY KEY,
    message_id TEXT,
    date_message TEXT,
    message_type TEXT,
    id_pat TEXT,
    id_sejour TEXT,
    id_ope TEXT,
    date_ope TEXT,
    date_ope_prev TEXT,
    planning TEXT,
    heu_deb_ope_prev TEXT,
    id_sal_ope TEXT,
    arr_sal_ope TEXT,
    heu_fin_ope_prev TEXT,
    tps_ope_prev TEXT,
    anesth TEXT,
    discip TEXT,
    type_ope TEXT,
    chir TEXT,
    naissance TEXT,
    sexe TEXT,
    raw_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_orline_patient ON hl7_message_orline (id_pat);
CREATE INDEX IF NOT EXISTS idx_orline_stay ON hl7_message_orline (id_sejour);
`

const wishColumns = "id, message_id, date_message, clrs_cd, nsej, cbmrn, cbtype, cbadty, tsv, clfrom, clnsid, nsdscr, clroom, clbed, clsvtc, tectxtfr, cldept, nrpr, nomm, cltima, raw_message"

const orlineColumns = "id, message_id, date_message, message_type, id_pat, id_sejour, id_ope, date_ope, date_ope_prev, planning, heu_deb_ope_prev, id_sal_ope, arr_sal_ope, heu_fin_ope_prev, tps_ope_prev, anesth, discip, type_ope, chir, naissance, sexe, raw_message"

// Queries interface mimicking sqlc generated code.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) DB() *sql.DB { return q.db }

// EnsureSchema creates the message tables when they do not exist yet.
func (q *Queries) EnsureSchema(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, schema)
	return err
}

func (q *Queries) InsertWish(ctx context.Context, arg WishMessage) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO hl7_message_wish (message_id, date_message, clrs_cd, nsej, cbmrn, cbtype, cbadty, tsv, clfrom, clnsid, nsdscr, clroom, clbed, clsvtc, tectxtfr, cldept, nrpr, nomm, cltima, raw_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20) RETURNING id`,
		arg.MessageID, arg.MessageDate, arg.EventCode, arg.StayID, arg.PatientID,
		arg.PatientClass, arg.AdmissionType, arg.Source, arg.EffectiveAt, arg.UnitCode,
		arg.UnitLabel, arg.Room, arg.Bed, arg.ServiceCode, arg.ServiceLabel,
		arg.Department, arg.PhysicianID, arg.Physician, arg.IssuedAt, arg.RawMessage,
	).Scan(&id)
	return id, err
}

func (q *Queries) InsertOrline(ctx context.Context, arg OrlineMessage) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO hl7_message_orline (message_id, date_message, message_type, id_pat, id_sejour, id_ope, date_ope, date_ope_prev, planning, heu_deb_ope_prev, id_sal_ope, arr_sal_ope, heu_fin_ope_prev, tps_ope_prev, anesth, discip, type_ope, chir, naissance, sexe, raw_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21) RETURNING id`,
		arg.MessageID, arg.MessageDate, arg.MessageType, arg.PatientID, arg.StayID,
		arg.OperationID, arg.OperationDate, arg.PrevScheduled, arg.Planning, arg.ScheduledStart,
		arg.TheaterID, arg.RoomArrival, arg.ScheduledEnd, arg.ExpectedDuration, arg.Anesthesia,
		arg.Discipline, arg.OperationType, arg.Surgeon, arg.BirthDate, arg.Sex, arg.RawMessage,
	).Scan(&id)
	return id, err
}

func (q *Queries) ListWish(ctx context.Context, limit, offset int) ([]WishMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+wishColumns+" FROM hl7_message_wish ORDER BY id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWishRows(rows)
}

func (q *Queries) ListOrline(ctx context.Context, limit, offset int) ([]OrlineMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+orlineColumns+" FROM hl7_message_orline ORDER BY id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrlineRows(rows)
}

func (q *Queries) AllWish(ctx context.Context) ([]WishMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+wishColumns+" FROM hl7_message_wish ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWishRows(rows)
}

func (q *Queries) AllOrline(ctx context.Context) ([]OrlineMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+orlineColumns+" FROM hl7_message_orline ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrlineRows(rows)
}

func (q *Queries) WishByPatient(ctx context.Context, patientID string) ([]WishMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+wishColumns+" FROM hl7_message_wish WHERE cbmrn = $1 ORDER BY id", patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWishRows(rows)
}

func (q *Queries) WishByStay(ctx context.Context, patientID, stayID string) ([]WishMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+wishColumns+" FROM hl7_message_wish WHERE cbmrn = $1 AND nsej = $2 ORDER BY id", patientID, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWishRows(rows)
}

func (q *Queries) OrlineByPatient(ctx context.Context, patientID string) ([]OrlineMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+orlineColumns+" FROM hl7_message_orline WHERE id_pat = $1 ORDER BY id", patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrlineRows(rows)
}

func (q *Queries) OrlineByStay(ctx context.Context, patientID, stayID string) ([]OrlineMessage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+orlineColumns+" FROM hl7_message_orline WHERE id_pat = $1 AND id_sejour = $2 ORDER BY id", patientID, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrlineRows(rows)
}

func (q *Queries) DistinctWishPatients(ctx context.Context) ([]string, error) {
	return q.distinctColumn(ctx, "SELECT DISTINCT cbmrn FROM hl7_message_wish WHERE cbmrn IS NOT NULL AND cbmrn <> '' ORDER BY cbmrn")
}

func (q *Queries) DistinctOrlinePatients(ctx context.Context) ([]string, error) {
	return q.distinctColumn(ctx, "SELECT DISTINCT id_pat FROM hl7_message_orline WHERE id_pat IS NOT NULL AND id_pat <> '' ORDER BY id_pat")
}

func (q *Queries) StaysByPatient(ctx context.Context, patientID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT DISTINCT nsej FROM hl7_message_wish WHERE cbmrn = $1 AND nsej IS NOT NULL AND nsej <> '' ORDER BY nsej", patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stays []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		stays = append(stays, s)
	}
	return stays, rows.Err()
}

func (q *Queries) TruncateAll(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "TRUNCATE hl7_message_wish, hl7_message_orline RESTART IDENTITY")
	return err
}

func (q *Queries) distinctColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func scanWishRows(rows *sql.Rows) ([]WishMessage, error) {
	var items []WishMessage
	for rows.Next() {
		var m WishMessage
		if err := rows.Scan(&m.ID, &m.MessageID, &m.MessageDate, &m.EventCode, &m.StayID,
			&m.PatientID, &m.PatientClass, &m.AdmissionType, &m.Source, &m.EffectiveAt,
			&m.UnitCode, &m.UnitLabel, &m.Room, &m.Bed, &m.ServiceCode, &m.ServiceLabel,
			&m.Department, &m.PhysicianID, &m.Physician, &m.IssuedAt, &m.RawMessage); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func scanOrlineRows(rows *sql.Rows) ([]OrlineMessage, error) {
	var items []OrlineMessage
	for rows.Next() {
		var m OrlineMessage
		if err := rows.Scan(&m.ID, &m.MessageID, &m.MessageDate, &m.MessageType, &m.PatientID,
			&m.StayID, &m.OperationID, &m.OperationDate, &m.PrevScheduled, &m.Planning,
			&m.ScheduledStart, &m.TheaterID, &m.RoomArrival, &m.ScheduledEnd, &m.ExpectedDuration,
			&m.Anesthesia, &m.Discipline, &m.OperationType, &m.Surgeon, &m.BirthDate, &m.Sex,
			&m.RawMessage); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
