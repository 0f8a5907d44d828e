// Package ingest moves raw HL7 messages from files and MLLP connections
// through the decoders into the store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"patient-journey/internal/hl7"
	"patient-journey/internal/store"
	"patient-journey/internal/ws"
)

// Dialect names one of the two upstream feeds.
type Dialect string

const (
	DialectWish   Dialect = "wish"
	DialectORLine Dialect = "orline"
)

// Message files arrive with whatever extension the emitting interface
// engine was configured with.
var messageExtensions = map[string]bool{
	".hl7": true,
	".txt": true,
	".dat": true,
	".xml": true,
}

// Broadcaster receives a notice for every stored message.
type Broadcaster interface {
	Broadcast(ws.Notice)
}

// Report summarizes one folder import.
type Report struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Files     []string `json:"files,omitempty"`
}

type Importer struct {
	store  store.MessageStore
	hub    Broadcaster
	logger *zap.Logger
}

// NewImporter wires an importer; hub may be nil when no live feed is
// attached.
func NewImporter(st store.MessageStore, hub Broadcaster, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: st, hub: hub, logger: logger}
}

// ImportMessage decodes one raw message and stores the record. Decoding
// itself cannot fail; only storage errors surface.
func (im *Importer) ImportMessage(ctx context.Context, raw string, dialect Dialect) (int64, error) {
	switch dialect {
	case DialectWish:
		rec := hl7.DecodeWish(raw)
		id, err := im.store.SaveWish(ctx, rec, raw)
		if err != nil {
			return 0, fmt.Errorf("store wish message: %w", err)
		}
		im.notify(ws.Notice{Source: string(dialect), PatientID: strDeref(rec.PatientID), StayID: strDeref(rec.StayID), MessageID: id})
		return id, nil
	case DialectORLine:
		rec := hl7.DecodeORLine(raw)
		id, err := im.store.SaveOrline(ctx, rec, raw)
		if err != nil {
			return 0, fmt.Errorf("store orline message: %w", err)
		}
		im.notify(ws.Notice{Source: string(dialect), PatientID: strDeref(rec.PatientID), StayID: strDeref(rec.StayID), MessageID: id})
		return id, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", dialect)
	}
}

// ImportFolder reads every message file in dir and stores the decoded
// records. A file that cannot be read or stored is counted and logged,
// never fatal for the batch.
func (im *Importer) ImportFolder(ctx context.Context, dir string, dialect Dialect) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}

	report := &Report{}
	for _, entry := range entries {
		if entry.IsDir() || !messageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := ReadMessageFile(path)
		if err != nil {
			im.logger.Warn("unreadable message file skipped",
				zap.String("file", path), zap.Error(err))
			report.Failed++
			continue
		}
		if _, err := im.ImportMessage(ctx, raw, dialect); err != nil {
			im.logger.Warn("message import failed",
				zap.String("file", path), zap.Error(err))
			report.Failed++
			continue
		}
		report.Processed++
		report.Files = append(report.Files, entry.Name())
	}
	im.logger.Info("folder import finished",
		zap.String("folder", dir),
		zap.String("dialect", string(dialect)),
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed))
	return report, nil
}

// ReadMessageFile reads a message file as UTF-8, falling back to
// ISO 8859-1 for files produced by the legacy interface engine.
func ReadMessageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1 %s: %w", path, err)
	}
	return string(decoded), nil
}

// SniffDialect guesses the feed a raw message belongs to. Operating-room
// messages carry the ORLine marker or scheduling segments; everything
// else is an ATD message.
func SniffDialect(raw string) Dialect {
	if strings.Contains(raw, "^ORLine") {
		return DialectORLine
	}
	for _, seg := range hl7.Tokenize(raw) {
		switch seg.Tag {
		case "SCH", "AIP", "AIL", "OBX":
			return DialectORLine
		}
	}
	return DialectWish
}

func (im *Importer) notify(n ws.Notice) {
	if im.hub != nil {
		im.hub.Broadcast(n)
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
