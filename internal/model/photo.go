package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Photo is an annotated image embedded as a data URI.
type Photo struct {
	Data         string    `json:"data"`
	Timestamp    time.Time `json:"timestamp"`
	OriginalName string    `json:"originalName"`
}

// SlotState is the capture outcome of one category.
type SlotState int

const (
	// SlotUnset means the category was not visited or the decision is pending.
	SlotUnset SlotState = iota
	// SlotSkipped means the user declined a choice category.
	SlotSkipped
	// SlotPhotos holds zero or more photos.
	SlotPhotos
)

func (s SlotState) String() string {
	switch s {
	case SlotSkipped:
		return "skipped"
	case SlotPhotos:
		return "photos"
	default:
		return "unset"
	}
}

// PhotoSlot is the per-category container within a workflow or record.
// Photos is only meaningful when State is SlotPhotos.
type PhotoSlot struct {
	State  SlotState
	Photos []Photo
}

// SkippedSlot returns a declined slot.
func SkippedSlot() PhotoSlot { return PhotoSlot{State: SlotSkipped} }

// PhotoListSlot returns a photo list slot holding a copy of photos.
func PhotoListSlot(photos ...Photo) PhotoSlot {
	return PhotoSlot{State: SlotPhotos, Photos: append([]Photo{}, photos...)}
}

// MarshalJSON encodes skipped slots as null and photo lists as arrays.
func (p PhotoSlot) MarshalJSON() ([]byte, error) {
	if p.State != SlotPhotos {
		return []byte("null"), nil
	}
	photos := p.Photos
	if photos == nil {
		photos = []Photo{}
	}
	return json.Marshal(photos)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *PhotoSlot) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = SkippedSlot()
		return nil
	}
	var photos []Photo
	if err := json.Unmarshal(b, &photos); err != nil {
		return fmt.Errorf("photo slot: %w", err)
	}
	*p = PhotoListSlot(photos...)
	return nil
}

// Slots maps category id to its slot. Unset slots are never encoded.
type Slots map[string]PhotoSlot

// MarshalJSON drops unset slots.
func (s Slots) MarshalJSON() ([]byte, error) {
	out := make(map[string]PhotoSlot, len(s))
	for id, slot := range s {
		if slot.State == SlotUnset {
			continue
		}
		out[id] = slot
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes each slot independently so null maps to skipped.
func (s *Slots) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Slots, len(raw))
	for id, v := range raw {
		var slot PhotoSlot
		if err := slot.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		out[id] = slot
	}
	*s = out
	return nil
}

// Get returns the slot for id, SlotUnset when absent.
func (s Slots) Get(id string) PhotoSlot {
	return s[id]
}

// Clone deep-copies the map and photo slices.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for id, slot := range s {
		c := PhotoSlot{State: slot.State}
		if slot.Photos != nil {
			c.Photos = append([]Photo{}, slot.Photos...)
		}
		out[id] = c
	}
	return out
}
