package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-journey/internal/models"
)

var wishCols = []string{
	"id", "message_id", "date_message", "clrs_cd", "nsej", "cbmrn", "cbtype",
	"cbadty", "tsv", "clfrom", "clnsid", "nsdscr", "clroom", "clbed", "clsvtc",
	"tectxtfr", "cldept", "nrpr", "nomm", "cltima", "raw_message",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPostgresStore(conn), mock
}

func TestSaveWish(t *testing.T) {
	st, mock := newMockStore(t)

	code := "A01"
	stay := "450123"
	rec := &models.WishRecord{
		EventCode: &code,
		StayID:    &stay,
		Source:    "U/I",
		UnitCode:  "310",
	}

	mock.ExpectQuery("INSERT INTO hl7_message_wish").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := st.SaveWish(context.Background(), rec, "MSH|raw")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOrline(t *testing.T) {
	st, mock := newMockStore(t)

	op := "OP123"
	rec := &models.ORRecord{OperationID: &op}

	mock.ExpectQuery("INSERT INTO hl7_message_orline").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := st.SaveOrline(context.Background(), rec, "MSH|raw")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishByStay_MapsNullsToNilPointers(t *testing.T) {
	st, mock := newMockStore(t)

	rows := sqlmock.NewRows(wishCols).AddRow(
		int64(1), "MSG1", nil, "A01", "450123", "12345678", nil,
		nil, "U/I", "2025-01-05 08:00:00", "310", "310-SOINS INTENSIFS", "102", "A", "8BLO",
		"BLOC OPERTAOIRE-MLE", nil, nil, nil, nil, "MSH|raw",
	)
	mock.ExpectQuery("FROM hl7_message_wish WHERE cbmrn = .+ AND nsej =").
		WithArgs("12345678", "450123").
		WillReturnRows(rows)

	records, err := st.WishByStay(context.Background(), "12345678", "450123")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.NotNil(t, rec.EventCode)
	assert.Equal(t, "A01", *rec.EventCode)
	assert.Nil(t, rec.MessageDate)
	assert.Nil(t, rec.Department)
	assert.Equal(t, "310", rec.UnitCode)
	assert.Equal(t, "U/I", rec.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrlineByPatient(t *testing.T) {
	st, mock := newMockStore(t)

	cols := []string{
		"id", "message_id", "date_message", "message_type", "id_pat", "id_sejour",
		"id_ope", "date_ope", "date_ope_prev", "planning", "heu_deb_ope_prev",
		"id_sal_ope", "arr_sal_ope", "heu_fin_ope_prev", "tps_ope_prev", "anesth",
		"discip", "type_ope", "chir", "naissance", "sexe", "raw_message",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		int64(4), nil, nil, nil, "PAT42", "778899",
		"OP123", "12-06-2025", "10-06-2025", ">D1,<D7", "07:30:00",
		"05", nil, "09:00:00", "90", nil,
		"ORTHO", nil, nil, nil, nil, "MSH|raw",
	)
	mock.ExpectQuery("FROM hl7_message_orline WHERE id_pat =").
		WithArgs("PAT42").
		WillReturnRows(rows)

	records, err := st.OrlineByPatient(context.Background(), "PAT42")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Planning)
	assert.Equal(t, models.PlanningShortTerm, *records[0].Planning)
	assert.Nil(t, records[0].Surgeon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaysByPatient(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT DISTINCT nsej FROM hl7_message_wish").
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"nsej"}).AddRow("450123").AddRow("450200"))

	stays, err := st.StaysByPatient(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, []string{"450123", "450200"}, stays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("TRUNCATE hl7_message_wish, hl7_message_orline").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, st.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
