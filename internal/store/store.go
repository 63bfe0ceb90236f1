// Package store provides the record, suggestion and settings storage
// interfaces and their SQLite implementation.
package store

import (
	"context"

	"github.com/shipcam/shipcam/internal/model"
)

// SearchParams holds record filters. Empty fields always match.
type SearchParams struct {
	Customer    string // case-insensitive substring
	Destination string // case-insensitive substring
	DateFrom    string // inclusive, YYYY-MM-DD
	DateTo      string // inclusive, YYYY-MM-DD
	Limit       int    // 0 means unlimited
}

// RecordStore persists committed capture records.
type RecordStore interface {
	// Save assigns a fresh id (and createdAt when zero) and returns the id.
	// Suggestion updates for customer and destination are best-effort.
	Save(ctx context.Context, r model.Record) (int64, error)

	// Get returns the record or an error wrapping model.ErrNotFound.
	Get(ctx context.Context, id int64) (model.Record, error)

	// GetAll returns every record, newest first.
	GetAll(ctx context.Context) ([]model.Record, error)

	// Search returns matching records, newest first.
	Search(ctx context.Context, p SearchParams) ([]model.Record, error)

	// Delete permanently removes a record. Missing ids are a no-op.
	Delete(ctx context.Context, id int64) (bool, error)
}

// SuggestionIndex ranks previously entered free-text values.
type SuggestionIndex interface {
	RecordSuggestion(ctx context.Context, typ, value string) error
	TopValues(ctx context.Context, typ string, limit int) ([]string, error)
}

// Settings is a durable string-keyed blob store.
type Settings interface {
	// GetSetting reports ok=false when key is absent.
	GetSetting(ctx context.Context, key string) (value string, ok bool, err error)
	PutSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Store is everything the SQLite implementation offers.
type Store interface {
	RecordStore
	SuggestionIndex
	Settings

	// Close closes the store.
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
