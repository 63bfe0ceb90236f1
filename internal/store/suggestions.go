package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/shipcam/shipcam/internal/model"
)

// SuggestionID is the deterministic key of a suggestion.
func SuggestionID(typ, value string) string {
	return strings.ToLower(typ) + "_" + strings.ToLower(strings.TrimSpace(value))
}

// RecordSuggestion upserts a suggestion: count+1, latest casing, lastUsed now.
// Blank values are ignored.
func (s *SQLiteStore) RecordSuggestion(ctx context.Context, typ, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !model.ValidSuggestionTypes[typ] {
		return model.NewValidationError("type", fmt.Sprintf("unknown suggestion type %q", typ))
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions (id, type, value, count, last_used) VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET
			count = suggestions.count + 1,
			value = excluded.value,
			last_used = excluded.last_used`,
		SuggestionID(typ, value), typ, value, formatTime(s.now()))
	if err != nil {
		return model.NewStorageError("upsert suggestion", err)
	}

	return s.pruneSuggestions(ctx, typ)
}

// pruneSuggestions keeps the suggestionCap best-ranked entries of typ.
func (s *SQLiteStore) pruneSuggestions(ctx context.Context, typ string) error {
	if s.suggestionCap <= 0 {
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM suggestions WHERE type = ? AND id NOT IN (
			SELECT id FROM suggestions WHERE type = ?
			ORDER BY count DESC, last_used DESC, value ASC
			LIMIT ?)`,
		typ, typ, s.suggestionCap)
	if err != nil {
		return model.NewStorageError("prune suggestions", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.log.Debug("suggestions pruned", "type", typ, "removed", n)
	}
	return nil
}

// Suggestions returns ranked suggestions of typ. limit <= 0 returns all.
func (s *SQLiteStore) Suggestions(ctx context.Context, typ string, limit int) ([]model.Suggestion, error) {
	q := sq.Select("id", "type", "value", "count", "last_used").
		From("suggestions").
		Where(sq.Eq{"type": typ}).
		OrderBy("count DESC", "last_used DESC", "value ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewStorageError("query suggestions", err)
	}
	defer rows.Close()

	var out []model.Suggestion
	for rows.Next() {
		var sg model.Suggestion
		var lastUsed string
		if err := rows.Scan(&sg.ID, &sg.Type, &sg.Value, &sg.Count, &lastUsed); err != nil {
			return nil, err
		}
		sg.LastUsed = parseTime(lastUsed)
		out = append(out, sg)
	}
	return out, rows.Err()
}

// TopValues returns suggestion display values of typ, most used first.
func (s *SQLiteStore) TopValues(ctx context.Context, typ string, limit int) ([]string, error) {
	sgs, err := s.Suggestions(ctx, typ, limit)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(sgs))
	for _, sg := range sgs {
		values = append(values, sg.Value)
	}
	return values, nil
}
