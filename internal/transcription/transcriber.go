package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"vidscribe/internal/language"
	"vidscribe/internal/logging"
)

// ErrNoSpeech reports that voice-activity filtering left no segments. It is a
// valid, expected outcome for silent or speech-free input, not a failure.
var ErrNoSpeech = errors.New("no speech detected")

// Transcriber converts a normalized waveform into a structured Transcript
// using the loaded model, applying the fixed decoding options.
type Transcriber struct {
	model  Model
	opts   Options
	logger *slog.Logger
}

// NewTranscriber wraps a loaded model. A nil logger discards diagnostics.
func NewTranscriber(model Model, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		model:  model,
		opts:   DefaultOptions(),
		logger: logging.WithComponent(logger, "transcriber"),
	}
}

// Transcribe runs the model on waveformPath and materializes its single-pass
// segment stream into a Transcript. Returns ErrNoSpeech when VAD filtering
// yields no segments; any other error means the model malfunctioned.
func (t *Transcriber) Transcribe(ctx context.Context, waveformPath string) (*Transcript, error) {
	stream, info, err := t.model.Transcribe(ctx, waveformPath, t.opts)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", waveformPath, err)
	}
	defer stream.Close()

	// The stream is non-restartable: drain it completely before testing
	// emptiness or joining text.
	var segments []Segment
	for {
		raw, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transcribe %s: %w", waveformPath, err)
		}
		segments = append(segments, convertSegment(raw))
	}

	if len(segments) == 0 {
		t.logger.Warn("no speech detected in audio",
			logging.String(logging.FieldWaveform, waveformPath))
		return nil, ErrNoSpeech
	}

	lang := language.ToISO2(info.Language)
	if lang == "" {
		lang = info.Language
	}

	transcript := &Transcript{
		FullText: joinSegmentTexts(segments),
		Segments: segments,
		Language: lang,
	}
	t.logger.Debug("transcription complete",
		logging.String(logging.FieldWaveform, waveformPath),
		logging.Int("segments", len(segments)),
		logging.String("language", lang),
		logging.Float64("language_probability", info.LanguageProbability))
	return transcript, nil
}

// convertSegment copies model output verbatim. A segment with no words keeps
// an empty word slice rather than failing.
func convertSegment(raw RawSegment) Segment {
	words := make([]Word, len(raw.Words))
	for i, w := range raw.Words {
		words[i] = Word{Text: w.Text, Start: w.Start, End: w.End, Probability: w.Probability}
	}
	return Segment{Text: raw.Text, Start: raw.Start, End: raw.End, Words: words}
}
