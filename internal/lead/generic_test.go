package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGenericName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"keyword_exact", "Roofing", true},
		{"keyword_exact_lower", "roofing", true},
		{"keyword_exact_mixed_case", "CONSULTING", true},
		{"short_with_keyword", "Roofing Pros", true},
		{"short_with_keyword_2", "Acme Plumbing", true},
		{"long_contains_keyword", "Roofing Solutions of Denver LLC", false}, // 31 chars
		{"long_contains_keyword_2", "Advanced Roofing Solutions Group LLC", false},
		{"long_equal_keyword_impossible", "Property Management", true}, // 19 chars, under threshold
		{"specific_no_keyword", "Acme Corp", false},
		{"specific_long", "Globex International Holdings", false},
		{"two_word_keyword", "Pest Control", true},
		{"keyword_substring_of_word", "Consultingo", true}, // 11 chars, contains "consulting"
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGenericName(tt.in), "input %q", tt.in)
		})
	}
}

func TestIsGenericName_LengthBoundary(t *testing.T) {
	// 24 chars containing a keyword: generic. 25 chars: specific unless equal.
	short := "Roofing and Gutter Works" // 24 chars
	long := "Roofing and Gutter Workss" // 25 chars
	assert.Len(t, short, 24)
	assert.Len(t, long, 25)
	assert.True(t, IsGenericName(short))
	assert.False(t, IsGenericName(long))
}
