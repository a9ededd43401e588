package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareText(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		decoded  string
		score    float64
		matched  bool
	}{
		{"identical", "HELLO", "HELLO", 1.0, true},
		{"one substitution", "HELLO", "HELLA", 0.8, false},
		{"completely different", "abc", "xyz", 0.0, false},
		{"longer decoded", "HELLO", "HELLO!!!!!", 0.5, false},
		{"both empty", "", "", 1.0, true},
		{"multibyte runes", "grüße", "gruße", 0.8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareText(tt.expected, tt.decoded)
			assert.InDelta(t, tt.score, got.MatchScore, 1e-9)
			assert.Equal(t, tt.matched, got.Matched)
			assert.Equal(t, tt.expected, got.ExpectedText)
		})
	}
}
