package store

import (
	"context"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"

	"github.com/shipcam/shipcam/internal/model"
)

// Search finds records matching all given filters, newest first.
//
// SQLite's LIKE only folds ASCII, so LIKE narrows the scan for ASCII needles
// and the final substring match is always done with Unicode folding.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Record, error) {
	customer := strings.TrimSpace(p.Customer)
	destination := strings.TrimSpace(p.Destination)

	q := sq.Select(recordColumns...).From("records").OrderBy("created_at DESC", "id DESC")

	if customer != "" && isASCII(customer) {
		q = q.Where("customer LIKE ? ESCAPE '\\'", likePattern(customer))
	}
	if destination != "" && isASCII(destination) {
		q = q.Where("destination LIKE ? ESCAPE '\\'", likePattern(destination))
	}
	if p.DateFrom != "" {
		q = q.Where(sq.GtOrEq{"date": p.DateFrom})
	}
	if p.DateTo != "" {
		q = q.Where(sq.LtOrEq{"date": p.DateTo})
	}

	records, err := queryRecords(ctx, s.db, q)
	if err != nil {
		return nil, err
	}

	out := records[:0]
	for _, r := range records {
		if customer != "" && !containsFold(r.Customer, customer) {
			continue
		}
		if destination != "" && !containsFold(r.Destination, destination) {
			continue
		}
		out = append(out, r)
		if p.Limit > 0 && len(out) == p.Limit {
			break
		}
	}
	return out, nil
}

func likePattern(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(v) + "%"
}

func isASCII(v string) bool {
	for _, c := range v {
		if c > unicode.MaxASCII {
			return false
		}
	}
	return true
}
