package model

import "time"

// DateLayout is the calendar date format of Record.Date.
const DateLayout = "2006-01-02"

// Record is a committed capture session. Never mutated after commit.
type Record struct {
	ID          int64     `json:"id,omitempty"`
	Date        string    `json:"date"`
	Customer    string    `json:"customer"`
	Destination string    `json:"destination"`
	Notes       string    `json:"notes"`
	Photos      Slots     `json:"photos"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PhotoCount is the number of photos across all slots.
func (r Record) PhotoCount() int {
	n := 0
	for _, s := range r.Photos {
		n += len(s.Photos)
	}
	return n
}

// Suggestion types.
const (
	SuggestCustomer    = "customer"
	SuggestDestination = "destination"
)

// ValidSuggestionTypes are the allowed suggestion types.
var ValidSuggestionTypes = map[string]bool{
	SuggestCustomer:    true,
	SuggestDestination: true,
}

// Suggestion is a frequency-ranked free-text value used for autocomplete.
type Suggestion struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Value    string    `json:"value"`
	Count    int       `json:"count"`
	LastUsed time.Time `json:"lastUsed"`
}
