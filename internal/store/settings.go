package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shipcam/shipcam/internal/model"
)

// GetSetting reads a settings blob.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, model.NewStorageError("get setting "+key, err)
	}
	return value, true, nil
}

// PutSetting writes a settings blob, replacing any previous value.
func (s *SQLiteStore) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(s.now()))
	return model.NewStorageError("put setting "+key, err)
}

// DeleteSetting removes a settings blob. Missing keys are a no-op.
func (s *SQLiteStore) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return model.NewStorageError("delete setting "+key, err)
}
