// Package model defines the core capture data types.
package model

import "regexp"

// Category is one step of the capture sequence. ID is referenced by saved
// records and must never change once used.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameEn    string `json:"nameEn"`
	HasChoice bool   `json:"hasChoice"`
}

// Label is the bilingual display name burned into watermarks.
func (c Category) Label() string {
	if c.NameEn == "" {
		return c.Name
	}
	return c.Name + " " + c.NameEn
}

// FindCategory returns the index of id in cats, or -1.
func FindCategory(cats []Category, id string) int {
	for i, c := range cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

var categoryIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidCategoryID reports whether id is safe to use as a slot key and as
// part of a file name.
func ValidCategoryID(id string) bool {
	return categoryIDPattern.MatchString(id)
}
