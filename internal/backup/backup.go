// Package backup exports all records to a self-describing JSON document and
// restores them into a store.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shipcam/shipcam/internal/model"
)

// Version is written into every exported document.
const Version = "1.0.0"

var ErrNothingToExport = errors.New("no records to export")

// Document is the on-disk backup format.
type Document struct {
	Version     string         `json:"version"`
	ExportDate  time.Time      `json:"exportDate"`
	DeviceInfo  string         `json:"deviceInfo"`
	RecordCount int            `json:"recordCount"`
	Records     []model.Record `json:"records"`
}

// Export wraps records into a Document.
func Export(records []model.Record, deviceInfo string, now time.Time) (Document, error) {
	if len(records) == 0 {
		return Document{}, ErrNothingToExport
	}
	return Document{
		Version:     Version,
		ExportDate:  now.UTC(),
		DeviceInfo:  deviceInfo,
		RecordCount: len(records),
		Records:     records,
	}, nil
}

// Filename is the default file name for a backup taken at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("photo_backup_%s.json", now.Format(model.DateLayout))
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Saver stores one restored record.
type Saver interface {
	Save(ctx context.Context, r model.Record) (int64, error)
}

// Failure is one record that could not be restored.
type Failure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// Report summarises a restore.
type Report struct {
	Imported int       `json:"imported"`
	IDs      []int64   `json:"ids"`
	Failed   []Failure `json:"failed,omitempty"`
}

type rawDocument struct {
	Version string            `json:"version"`
	Records []json.RawMessage `json:"records"`
}

// Restore reads a backup document and saves each record with a fresh id.
// A document that cannot be parsed, or has no records array, is rejected
// before anything is written. Individual records that fail to decode or
// save are listed in the Report and the rest are still restored.
func Restore(ctx context.Context, r io.Reader, saver Saver) (Report, error) {
	var doc rawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Report{}, &model.ImportFormatError{Reason: "parse document", Err: err}
	}
	if doc.Records == nil {
		return Report{}, &model.ImportFormatError{Reason: "missing records array"}
	}

	rep := Report{IDs: []int64{}}
	for i, raw := range doc.Records {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		var rec model.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			rep.Failed = append(rep.Failed, Failure{Index: i, Error: err.Error()})
			continue
		}
		rec.ID = 0
		if err := checkSlotKeys(rec); err != nil {
			rep.Failed = append(rep.Failed, Failure{Index: i, Error: err.Error()})
			continue
		}

		id, err := saver.Save(ctx, rec)
		if err != nil {
			rep.Failed = append(rep.Failed, Failure{Index: i, Error: err.Error()})
			continue
		}
		rep.Imported++
		rep.IDs = append(rep.IDs, id)
	}
	return rep, nil
}

func checkSlotKeys(r model.Record) error {
	for id := range r.Photos {
		if !model.ValidCategoryID(id) {
			return model.NewValidationError("photos", fmt.Sprintf("invalid category id %q", id))
		}
	}
	return nil
}
