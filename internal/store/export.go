package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/shipcam/shipcam/internal/model"
)

// ExportAll returns every record oldest first, so a re-import assigns ids in
// chronological order.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Record, error) {
	q := sq.Select(recordColumns...).From("records").OrderBy("created_at ASC", "id ASC")
	return queryRecords(ctx, s.db, q)
}
