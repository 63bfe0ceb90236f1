package store

import (
	"context"
	"os"

	"github.com/shipcam/shipcam/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string          `json:"db_path"`
	DBSizeBytes int64           `json:"db_size_bytes"`
	Records     int             `json:"records"`
	Photos      int             `json:"photos"`
	Skipped     int             `json:"skipped"`
	Suggestions int             `json:"suggestions"`
	Customers   []CustomerStats `json:"customers"`
}

// CustomerStats holds per-customer counts.
type CustomerStats struct {
	Customer string `json:"customer"`
	Records  int    `json:"records"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&st.Records); err != nil {
		return nil, model.NewStorageError("count records", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suggestions`).Scan(&st.Suggestions); err != nil {
		return nil, model.NewStorageError("count suggestions", err)
	}
	// json_each reports a JSON null as SQL NULL in value, so dispatch on type.
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN j.type = 'array' THEN json_array_length(j.value) ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN j.type = 'null' THEN 1 ELSE 0 END), 0)
		FROM records r, json_each(r.photos) j`).Scan(&st.Photos, &st.Skipped)
	if err != nil {
		return nil, model.NewStorageError("count photos", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT customer, COUNT(*) AS cnt
		FROM records
		GROUP BY customer ORDER BY cnt DESC, customer ASC`)
	if err != nil {
		return nil, model.NewStorageError("customer stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs CustomerStats
		if err := rows.Scan(&cs.Customer, &cs.Records); err != nil {
			return nil, model.NewStorageError("customer stats", err)
		}
		st.Customers = append(st.Customers, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("customer stats", err)
	}

	return st, nil
}
