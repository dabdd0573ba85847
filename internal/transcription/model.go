package transcription

import (
	"context"
	"time"
)

// Options configures a single transcription request. The pipeline uses
// DefaultOptions; the values are not caller-tunable by design.
type Options struct {
	BeamSize       int           `json:"beam_size"`
	WordTimestamps bool          `json:"word_timestamps"`
	VADFilter      bool          `json:"vad_filter"`
	MinSilence     time.Duration `json:"-"`
}

// DefaultOptions returns the fixed decoding configuration: beam width 5,
// word-level timestamps, VAD filtering with a 500 ms minimum silence gap.
func DefaultOptions() Options {
	return Options{
		BeamSize:       5,
		WordTimestamps: true,
		VADFilter:      true,
		MinSilence:     500 * time.Millisecond,
	}
}

// Info describes whole-waveform metadata reported by the model.
type Info struct {
	Language            string
	LanguageProbability float64
	Duration            float64
}

// RawWord mirrors a model-emitted word span.
type RawWord struct {
	Text        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// RawSegment mirrors a model-emitted segment. Words may be empty.
type RawSegment struct {
	Text  string    `json:"text"`
	Start float64   `json:"start"`
	End   float64   `json:"end"`
	Words []RawWord `json:"words"`
}

// SegmentStream is a lazy, single-pass iterator over model output. Next
// returns io.EOF after the final segment. The stream is non-restartable and
// must be fully drained before the owning Model accepts another request.
type SegmentStream interface {
	Next() (RawSegment, error)
	Close() error
}

// Model is the speech-recognition collaborator. It consumes a waveform path
// plus decoding options and yields a segment stream and whole-file info. A
// Model may be reused sequentially across many calls on one goroutine;
// concurrent use is unsafe.
type Model interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (SegmentStream, Info, error)
	Close() error
}
