package service

import (
	"unicode/utf8"

	"github.com/anime-shed/qr-decoder-go/pkg/models"

	"github.com/arbovm/levenshtein"
)

// CompareText scores decoded against expected as 1 - distance/longest,
// so identical strings score 1 and disjoint ones approach 0.
func CompareText(expected, decoded string) *models.TextComparison {
	longest := utf8.RuneCountInString(expected)
	if n := utf8.RuneCountInString(decoded); n > longest {
		longest = n
	}

	score := 1.0
	if longest > 0 {
		score = 1 - float64(levenshtein.Distance(expected, decoded))/float64(longest)
	}

	return &models.TextComparison{
		ExpectedText: expected,
		MatchScore:   score,
		Matched:      expected == decoded,
	}
}
