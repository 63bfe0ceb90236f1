package workflow

import (
	"context"
	"fmt"

	"github.com/shipcam/shipcam/internal/annotate"
	"github.com/shipcam/shipcam/internal/model"
)

// ChooseConversion answers the yes/no question of a choice category.
// Answering no skips the category and advances.
func ChooseConversion(s State, needed bool) (State, error) {
	if s.Completed() {
		return s, ErrCompleted
	}
	cur := s.Current()
	if !cur.HasChoice {
		return s, ErrNoChoice
	}
	if s.Slot(cur.ID).State == model.SlotPhotos {
		return s, ErrChoiceMade
	}

	next := s.clone()
	if needed {
		next.Slots[cur.ID] = model.PhotoListSlot()
		return next, nil
	}
	next.Slots[cur.ID] = model.SkippedSlot()
	return Advance(next), nil
}

// AddPhotos annotates files into the current category. Files are processed
// one at a time; failed files are reported and left out.
func AddPhotos(ctx context.Context, s State, a annotate.Annotator, files []annotate.File) (State, []error, error) {
	if s.Completed() {
		return s, nil, ErrCompleted
	}
	cur := s.Current()
	slot := s.Slot(cur.ID)
	if slot.State == model.SlotSkipped {
		return s, nil, ErrSkipped
	}

	photos, errs := annotate.Batch(ctx, a, files, annotate.Context{
		Date:        s.Form.Date,
		Customer:    s.Form.Customer,
		Destination: s.Form.Destination,
		Category:    cur.Label(),
	})

	next := s.clone()
	next.Slots[cur.ID] = model.PhotoListSlot(append(next.Slots[cur.ID].Photos, photos...)...)
	return next, errs, nil
}

// RemovePhoto drops the photo at index from a category's list.
func RemovePhoto(s State, categoryID string, index int) (State, error) {
	if model.FindCategory(s.Categories, categoryID) < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	slot := s.Slot(categoryID)
	if slot.State != model.SlotPhotos || index < 0 || index >= len(slot.Photos) {
		return s, fmt.Errorf("%w: %d", ErrPhotoIndex, index)
	}

	next := s.clone()
	photos := next.Slots[categoryID].Photos
	next.Slots[categoryID] = model.PhotoListSlot(append(photos[:index:index], photos[index+1:]...)...)
	return next, nil
}

// Advance moves to the next category, completing the capture after the last.
func Advance(s State) State {
	if s.Completed() {
		return s
	}
	next := s.clone()
	if next.Step >= len(next.Categories)-1 {
		next.Phase = PhaseCompleted
		return next
	}
	next.Step++
	return next
}

// Retreat moves back one category. From a completed capture it reopens the
// last category.
func Retreat(s State) State {
	next := s.clone()
	if next.Completed() {
		next.Phase = PhaseCapturing
		next.Step = len(next.Categories) - 1
		return next
	}
	if next.Step > 0 {
		next.Step--
	}
	return next
}
