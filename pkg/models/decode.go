package models

import "time"

// DecodeRequest is the transport-neutral input of the pipeline.
type DecodeRequest struct {
	RequestID    string
	ImageURL     string
	ExpectedText string
}

// DecodeResult is the outcome of one pipeline run. Texts holds every decoded
// string in detection order; only the first is surfaced to clients.
type DecodeResult struct {
	ImageURL       string
	Texts          []string
	BytesFetched   int64
	ProcessingTime time.Duration
	Comparison     *TextComparison
}

// Found reports whether at least one code was decoded.
func (r *DecodeResult) Found() bool {
	return r != nil && len(r.Texts) > 0
}

// FirstText returns the first decoded string, or "" when none was found.
func (r *DecodeResult) FirstText() string {
	if !r.Found() {
		return ""
	}
	return r.Texts[0]
}

// TextComparison compares the decoded text with a caller-supplied expectation.
type TextComparison struct {
	ExpectedText string  `json:"expected_text"`
	MatchScore   float64 `json:"match_score"`
	Matched      bool    `json:"matched"`
}
