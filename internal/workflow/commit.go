package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/shipcam/shipcam/internal/model"
)

// Saver persists a finished record and returns its id.
type Saver interface {
	Save(ctx context.Context, r model.Record) (int64, error)
}

// Record builds the record a completed capture would produce. Unset slots
// and slots for categories outside the snapshot are left out.
func Record(s State, now time.Time) model.Record {
	photos := make(model.Slots, len(s.Slots))
	for _, c := range s.Categories {
		slot := s.Slot(c.ID)
		if slot.State == model.SlotUnset {
			continue
		}
		photos[c.ID] = slot
	}
	return model.Record{
		Date:        s.Form.Date,
		Customer:    s.Form.Customer,
		Destination: s.Form.Destination,
		Notes:       s.Form.Notes,
		Photos:      photos.Clone(),
		CreatedAt:   now.UTC(),
	}
}

// Commit saves a completed capture as one record.
func Commit(ctx context.Context, s State, saver Saver, now time.Time) (model.Record, error) {
	if !s.Completed() {
		return model.Record{}, ErrNotCompleted
	}
	if s.SavedRecord != 0 {
		return model.Record{}, fmt.Errorf("%w as record %d", ErrAlreadySaved, s.SavedRecord)
	}
	r := Record(s, now)
	id, err := saver.Save(ctx, r)
	if err != nil {
		return model.Record{}, err
	}
	r.ID = id
	return r, nil
}
