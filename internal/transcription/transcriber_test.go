package transcription

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeStream replays scripted segments and records how far it was read.
type fakeStream struct {
	segments []RawSegment
	err      error // returned after the scripted segments
	pos      int
	closed   bool
}

func (s *fakeStream) Next() (RawSegment, error) {
	if s.pos < len(s.segments) {
		seg := s.segments[s.pos]
		s.pos++
		return seg, nil
	}
	if s.err != nil {
		return RawSegment{}, s.err
	}
	return RawSegment{}, io.EOF
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeModel struct {
	stream *fakeStream
	info   Info
	err    error
	opts   Options
}

func (m *fakeModel) Transcribe(_ context.Context, _ string, opts Options) (SegmentStream, Info, error) {
	m.opts = opts
	if m.err != nil {
		return nil, Info{}, m.err
	}
	return m.stream, m.info, nil
}

func (m *fakeModel) Close() error { return nil }

func TestTranscribeBuildsTranscript(t *testing.T) {
	model := &fakeModel{
		stream: &fakeStream{segments: []RawSegment{
			{Text: " Hello world.", Start: 0, End: 2.5, Words: []RawWord{
				{Text: " Hello", Start: 0, End: 1.0, Probability: 0.97},
				{Text: " world.", Start: 1.1, End: 2.5, Probability: 0.94},
			}},
			{Text: " Second thought.", Start: 3.0, End: 4.8},
		}},
		info: Info{Language: "en", LanguageProbability: 0.99, Duration: 5},
	}
	transcriber := NewTranscriber(model, nil)

	transcript, err := transcriber.Transcribe(context.Background(), "/tmp/audio.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript.FullText != " Hello world.  Second thought." {
		t.Fatalf("full text = %q", transcript.FullText)
	}
	if transcript.Language != "en" {
		t.Fatalf("language = %q", transcript.Language)
	}
	if len(transcript.Segments) != 2 {
		t.Fatalf("segments = %d", len(transcript.Segments))
	}
	// Segment without words keeps an empty word slice, not an error.
	if transcript.Segments[1].Words == nil || len(transcript.Segments[1].Words) != 0 {
		t.Fatalf("wordless segment should have empty words, got %#v", transcript.Segments[1].Words)
	}
	first := transcript.Segments[0]
	if first.End < first.Start {
		t.Fatalf("segment times inverted: %+v", first)
	}
	for _, word := range first.Words {
		if word.Probability < 0 || word.Probability > 1 {
			t.Fatalf("word probability out of range: %+v", word)
		}
		if word.End < word.Start {
			t.Fatalf("word times inverted: %+v", word)
		}
	}
	if !model.stream.closed {
		t.Fatal("segment stream should be closed after use")
	}
}

func TestTranscribeUsesFixedOptions(t *testing.T) {
	model := &fakeModel{stream: &fakeStream{segments: []RawSegment{{Text: "hi"}}}, info: Info{Language: "en"}}
	transcriber := NewTranscriber(model, nil)

	if _, err := transcriber.Transcribe(context.Background(), "a.wav"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if model.opts.BeamSize != 5 {
		t.Fatalf("beam size = %d, want 5", model.opts.BeamSize)
	}
	if !model.opts.WordTimestamps || !model.opts.VADFilter {
		t.Fatalf("word timestamps and VAD filter must be enabled: %+v", model.opts)
	}
	if got := model.opts.MinSilence.Milliseconds(); got != 500 {
		t.Fatalf("min silence = %dms, want 500ms", got)
	}
}

func TestTranscribeNoSpeech(t *testing.T) {
	model := &fakeModel{stream: &fakeStream{}, info: Info{Language: "en"}}
	transcriber := NewTranscriber(model, nil)

	transcript, err := transcriber.Transcribe(context.Background(), "silence.wav")
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
	if transcript != nil {
		t.Fatal("no transcript expected for silent input")
	}
}

func TestTranscribeModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("corrupted model state")}
	transcriber := NewTranscriber(model, nil)

	if _, err := transcriber.Transcribe(context.Background(), "a.wav"); err == nil || errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestTranscribeStreamErrorMidway(t *testing.T) {
	model := &fakeModel{
		stream: &fakeStream{
			segments: []RawSegment{{Text: "partial"}},
			err:      errors.New("decode failure"),
		},
		info: Info{Language: "en"},
	}
	transcriber := NewTranscriber(model, nil)

	_, err := transcriber.Transcribe(context.Background(), "a.wav")
	if err == nil || !strings.Contains(err.Error(), "decode failure") {
		t.Fatalf("expected stream error to surface, got %v", err)
	}
}

func TestTranscribeNormalizesLanguageCode(t *testing.T) {
	model := &fakeModel{
		stream: &fakeStream{segments: []RawSegment{{Text: "bonjour"}}},
		info:   Info{Language: "fre"},
	}
	transcriber := NewTranscriber(model, nil)

	transcript, err := transcriber.Transcribe(context.Background(), "a.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript.Language != "fr" {
		t.Fatalf("language = %q, want fr", transcript.Language)
	}
}

func TestTranscriptDuration(t *testing.T) {
	var empty *Transcript
	if empty.Duration() != 0 {
		t.Fatal("nil transcript duration should be 0")
	}
	tr := &Transcript{Segments: []Segment{{End: 2}, {End: 7.5}}}
	if tr.Duration() != 7.5 {
		t.Fatalf("duration = %v", tr.Duration())
	}
}
