package transcription

import "strings"

// Word is a word-level alignment estimate within a segment. Spans are not
// guaranteed non-overlapping across segments.
type Word struct {
	Text        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Segment is one continuous speech span as determined by VAD filtering.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Transcript is the structured result of one transcription call. It is
// immutable after creation and owned by the caller once returned.
type Transcript struct {
	FullText string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Duration returns the end timestamp of the last segment in seconds.
func (t *Transcript) Duration() float64 {
	if t == nil || len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// joinSegmentTexts builds the full text as the space-joined segment texts in
// emission order; Transcript.FullText always equals this concatenation.
func joinSegmentTexts(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}
