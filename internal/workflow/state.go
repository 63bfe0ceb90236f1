// Package workflow implements the category-driven capture state machine.
//
// A State is a plain value: every transition takes a State and returns a new
// one, leaving its argument untouched. Session persists the single active
// State between process invocations.
package workflow

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/validation"
)

var (
	ErrNoCategories    = errors.New("workflow: no categories to capture")
	ErrNotCompleted    = errors.New("workflow: capture not completed")
	ErrCompleted       = errors.New("workflow: capture already completed")
	ErrNoChoice        = errors.New("workflow: current category has no choice")
	ErrChoiceMade      = errors.New("workflow: choice already made")
	ErrSkipped         = errors.New("workflow: category was skipped")
	ErrPhotoIndex      = errors.New("workflow: photo index out of range")
	ErrUnknownCategory = errors.New("workflow: category not in this capture")
	ErrAlreadySaved    = errors.New("workflow: capture already saved")
)

// Phase is the coarse position of a capture.
type Phase string

const (
	PhaseCapturing Phase = "capturing"
	PhaseCompleted Phase = "completed"
)

// Form is the shipment context entered before capturing.
type Form struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Customer    string `json:"customer" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	Notes       string `json:"notes"`
}

func (f Form) trimmed() Form {
	return Form{
		Date:        strings.TrimSpace(f.Date),
		Customer:    strings.TrimSpace(f.Customer),
		Destination: strings.TrimSpace(f.Destination),
		Notes:       strings.TrimSpace(f.Notes),
	}
}

// State is one capture session.
type State struct {
	SessionID   string           `json:"sessionId"`
	Categories  []model.Category `json:"categories"`
	Step        int              `json:"step"`
	Form        Form             `json:"form"`
	Slots       model.Slots      `json:"slots"`
	Phase       Phase            `json:"phase"`
	StartedAt   time.Time        `json:"startedAt"`
	SavedRecord int64            `json:"savedRecord,omitempty"` // set once stored
}

// Start validates form and begins a capture over a snapshot of categories.
func Start(categories []model.Category, form Form, now time.Time) (State, error) {
	form = form.trimmed()
	if err := validation.Struct(form); err != nil {
		return State{}, err
	}
	if len(categories) == 0 {
		return State{}, ErrNoCategories
	}
	return State{
		SessionID:  uuid.NewString(),
		Categories: append([]model.Category(nil), categories...),
		Form:       form,
		Slots:      model.Slots{},
		Phase:      PhaseCapturing,
		StartedAt:  now.UTC(),
	}, nil
}

// Current returns the category at the current step.
func (s State) Current() model.Category {
	return s.Categories[s.Step]
}

// Completed reports whether every step has been passed.
func (s State) Completed() bool { return s.Phase == PhaseCompleted }

// Slot returns the slot of the given category.
func (s State) Slot(categoryID string) model.PhotoSlot {
	return s.Slots.Get(categoryID)
}

// PhotoCount totals captured photos across slots.
func (s State) PhotoCount() int {
	n := 0
	for _, slot := range s.Slots {
		n += len(slot.Photos)
	}
	return n
}

// NeedsChoice reports whether the current category is waiting on a yes/no
// decision.
func (s State) NeedsChoice() bool {
	if s.Completed() || !s.Current().HasChoice {
		return false
	}
	return s.Slot(s.Current().ID).State != model.SlotPhotos
}

func (s State) clone() State {
	next := s
	next.Categories = append([]model.Category(nil), s.Categories...)
	next.Slots = s.Slots.Clone()
	return next
}
