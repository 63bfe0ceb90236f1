package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/shipcam/shipcam/internal/model"
)

// Save inserts a record. Any id on r is ignored.
func (s *SQLiteStore) Save(ctx context.Context, r model.Record) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	photos, err := json.Marshal(r.Photos)
	if err != nil {
		return 0, fmt.Errorf("encode photos: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, model.NewStorageError("begin save", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (date, customer, destination, notes, photos, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Date, r.Customer, r.Destination, r.Notes, string(photos), formatTime(r.CreatedAt))
	if err != nil {
		return 0, model.NewStorageError("insert record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, model.NewStorageError("record id", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, model.NewStorageError("commit record", err)
	}
	s.log.Debug("record saved", "id", id, "customer", r.Customer, "photos", r.PhotoCount())

	// Best-effort: the record is already durable.
	for typ, value := range map[string]string{
		model.SuggestCustomer:    r.Customer,
		model.SuggestDestination: r.Destination,
	} {
		if err := s.RecordSuggestion(ctx, typ, value); err != nil {
			s.log.Warn("update suggestion", "type", typ, "value", value, "err", err)
		}
	}

	return id, nil
}

// Get retrieves a record by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (model.Record, error) {
	if r, ok := s.cache.Get(id); ok {
		r.Photos = r.Photos.Clone()
		return r, nil
	}

	query, args, err := sq.Select(recordColumns...).From("records").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Record{}, err
	}

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, fmt.Errorf("record %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Record{}, model.NewStorageError("get record", err)
	}

	s.cache.Add(id, r)
	r.Photos = r.Photos.Clone()
	return r, nil
}

// GetAll returns every record, newest first.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]model.Record, error) {
	return s.Search(ctx, SearchParams{})
}

// Delete permanently removes a record.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, model.NewStorageError("delete record", err)
	}
	s.cache.Remove(id)

	n, err := res.RowsAffected()
	if err != nil {
		return false, model.NewStorageError("delete record", err)
	}
	if n > 0 {
		s.log.Debug("record deleted", "id", id)
	}
	return n > 0, nil
}

func queryRecords(ctx context.Context, db *sql.DB, q sq.SelectBuilder) ([]model.Record, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewStorageError("query records", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("query records", err)
	}
	return records, nil
}

// containsFold reports whether needle is a case-insensitive substring of s.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}
