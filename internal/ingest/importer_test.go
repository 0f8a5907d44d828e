package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"patient-journey/internal/models"
	"patient-journey/internal/ws"
)

type mockStore struct {
	SaveWishFunc   func(ctx context.Context, rec *models.WishRecord, raw string) (int64, error)
	SaveOrlineFunc func(ctx context.Context, rec *models.ORRecord, raw string) (int64, error)
}

func (m *mockStore) SaveWish(ctx context.Context, rec *models.WishRecord, raw string) (int64, error) {
	return m.SaveWishFunc(ctx, rec, raw)
}

func (m *mockStore) SaveOrline(ctx context.Context, rec *models.ORRecord, raw string) (int64, error) {
	return m.SaveOrlineFunc(ctx, rec, raw)
}

func (m *mockStore) ListWish(context.Context, int, int) ([]models.WishRecord, error) { return nil, nil }
func (m *mockStore) ListOrline(context.Context, int, int) ([]models.ORRecord, error) {
	return nil, nil
}
func (m *mockStore) AllWish(context.Context) ([]models.WishRecord, error)  { return nil, nil }
func (m *mockStore) AllOrline(context.Context) ([]models.ORRecord, error)  { return nil, nil }
func (m *mockStore) WishByPatient(context.Context, string) ([]models.WishRecord, error) {
	return nil, nil
}
func (m *mockStore) WishByStay(context.Context, string, string) ([]models.WishRecord, error) {
	return nil, nil
}
func (m *mockStore) OrlineByPatient(context.Context, string) ([]models.ORRecord, error) {
	return nil, nil
}
func (m *mockStore) OrlineByStay(context.Context, string, string) ([]models.ORRecord, error) {
	return nil, nil
}
func (m *mockStore) WishPatients(context.Context) ([]string, error)          { return nil, nil }
func (m *mockStore) OrlinePatients(context.Context) ([]string, error)        { return nil, nil }
func (m *mockStore) StaysByPatient(context.Context, string) ([]string, error) { return nil, nil }
func (m *mockStore) Clear(context.Context) error                             { return nil }

type mockBroadcaster struct {
	notices []ws.Notice
}

func (m *mockBroadcaster) Broadcast(n ws.Notice) {
	m.notices = append(m.notices, n)
}

const sampleWish = "MSH|^~\\&|WISH|HIS^20250105120000|LAB|HOSP|20250105120500|SEC|ADT^A01|MSG1\n" +
	"EVN|A01|20250105113000\n" +
	"PID|1||12345678\n" +
	"PV1|1|I|310^102^A||||||||||||||||1450123"

func TestImportMessage_WishStoresAndBroadcasts(t *testing.T) {
	var savedRaw string
	st := &mockStore{
		SaveWishFunc: func(ctx context.Context, rec *models.WishRecord, raw string) (int64, error) {
			savedRaw = raw
			if rec.EventCode == nil || *rec.EventCode != "A01" {
				t.Errorf("Unexpected decoded record %+v", rec)
			}
			return 42, nil
		},
	}
	hub := &mockBroadcaster{}
	im := NewImporter(st, hub, nil)

	id, err := im.ImportMessage(context.Background(), sampleWish, DialectWish)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != 42 {
		t.Errorf("Expected id 42, got %d", id)
	}
	if savedRaw != sampleWish {
		t.Error("Raw message must be stored verbatim")
	}
	if len(hub.notices) != 1 {
		t.Fatalf("Expected 1 notice, got %d", len(hub.notices))
	}
	n := hub.notices[0]
	if n.Source != "wish" || n.PatientID != "12345678" || n.MessageID != 42 {
		t.Errorf("Unexpected notice %+v", n)
	}
}

func TestImportMessage_StoreErrorSurfaces(t *testing.T) {
	st := &mockStore{
		SaveWishFunc: func(context.Context, *models.WishRecord, string) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	im := NewImporter(st, nil, nil)

	_, err := im.ImportMessage(context.Background(), sampleWish, DialectWish)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "store wish message") {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
}

func TestImportFolder_ProcessesKnownExtensionsOnly(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.hl7":   sampleWish,
		"b.txt":   sampleWish,
		"c.dat":   sampleWish,
		"d.xml":   sampleWish,
		"skip.js": sampleWish,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count := 0
	st := &mockStore{
		SaveWishFunc: func(context.Context, *models.WishRecord, string) (int64, error) {
			count++
			return int64(count), nil
		},
	}
	im := NewImporter(st, nil, nil)

	report, err := im.ImportFolder(context.Background(), dir, DialectWish)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Processed != 4 {
		t.Errorf("Expected 4 processed files, got %d", report.Processed)
	}
	if report.Failed != 0 {
		t.Errorf("Expected no failures, got %d", report.Failed)
	}
}

func TestImportFolder_StorageFailureCountedNotFatal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.hl7", "b.hl7"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sampleWish), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	calls := 0
	st := &mockStore{
		SaveWishFunc: func(context.Context, *models.WishRecord, string) (int64, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("boom")
			}
			return int64(calls), nil
		},
	}
	im := NewImporter(st, nil, nil)

	report, err := im.ImportFolder(context.Background(), dir, DialectWish)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Processed != 1 || report.Failed != 1 {
		t.Errorf("Expected 1 processed and 1 failed, got %d/%d", report.Processed, report.Failed)
	}
}

func TestReadMessageFile_Latin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.hl7")
	// 0xE9 is é in ISO 8859-1 and invalid on its own in UTF-8.
	content := []byte("PV1|1|I|310^chambre priv\xe9e")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := ReadMessageFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(text, "privée") {
		t.Errorf("Expected latin-1 decoding, got %q", text)
	}
}

func TestSniffDialect(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Dialect
	}{
		{"orline marker", "MSH|^~\\&|X|||||||MSG1|OP1^ORLine", DialectORLine},
		{"scheduling segment", "SCH|OP1^X", DialectORLine},
		{"personnel segment", "AIP|1|||X^Y^^^^Z", DialectORLine},
		{"plain atd", sampleWish, DialectWish},
	}
	for _, c := range cases {
		if got := SniffDialect(c.raw); got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}
