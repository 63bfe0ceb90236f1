package model

import "testing"

func TestValidCategoryID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"conversion_frame", true},
		{"cat_01jabcdef0123456789xyzabc", true},
		{"box-2", true},
		{"", false},
		{"../escaped", false},
		{"/../../../escaped", false},
		{`a\b`, false},
		{"盒子", false},
	}
	for _, tt := range tests {
		if got := ValidCategoryID(tt.id); got != tt.want {
			t.Errorf("ValidCategoryID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
