package processor

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"vidscribe/internal/extraction"
	"vidscribe/internal/transcription"
)

// missingFFmpeg forces the primary extraction strategy to fail so tests run
// deterministically on hosts with or without ffmpeg installed.
const missingFFmpeg = "vidscribe-test-no-such-ffmpeg"

type scriptedStream struct {
	segments []transcription.RawSegment
	pos      int
}

func (s *scriptedStream) Next() (transcription.RawSegment, error) {
	if s.pos >= len(s.segments) {
		return transcription.RawSegment{}, io.EOF
	}
	seg := s.segments[s.pos]
	s.pos++
	return seg, nil
}

func (s *scriptedStream) Close() error { return nil }

type scriptedModel struct {
	segments []transcription.RawSegment
	info     transcription.Info
	err      error
	closed   bool
}

func (m *scriptedModel) Transcribe(context.Context, string, transcription.Options) (transcription.SegmentStream, transcription.Info, error) {
	if m.err != nil {
		return nil, transcription.Info{}, m.err
	}
	return &scriptedStream{segments: m.segments}, m.info, nil
}

func (m *scriptedModel) Close() error {
	m.closed = true
	return nil
}

func writeTone(t *testing.T, path string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wave: %v", err)
	}
	defer file.Close()

	const rate = 22050
	frames := rate / 2
	data := make([]int, frames)
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*250*float64(i)/rate))
	}
	encoder := gowav.NewEncoder(file, rate, 16, 1, 1)
	if err := encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("write wave: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestProcessProducesTranscript(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "talk.wav")
	writeTone(t, video)

	model := &scriptedModel{
		segments: []transcription.RawSegment{
			{Text: " One sentence spoken.", Start: 0, End: 4.9, Words: []transcription.RawWord{
				{Text: " One", Start: 0, End: 0.5, Probability: 0.99},
				{Text: " sentence", Start: 0.6, End: 1.4, Probability: 0.97},
				{Text: " spoken.", Start: 1.5, End: 4.9, Probability: 0.92},
			}},
		},
		info: transcription.Info{Language: "en", Duration: 10},
	}
	proc := NewWithModel(context.Background(), missingFFmpeg, model, nil)
	defer proc.Close()

	transcript, err := proc.Process(context.Background(), video, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if transcript == nil {
		t.Fatal("expected transcript")
	}
	if transcript.FullText != " One sentence spoken." {
		t.Fatalf("full text = %q", transcript.FullText)
	}
	if len(transcript.Segments) != 1 || transcript.Segments[0].End > 5 {
		t.Fatalf("unexpected segments: %+v", transcript.Segments)
	}
	if transcript.Language != "en" {
		t.Fatalf("language = %q", transcript.Language)
	}
	for _, word := range transcript.Segments[0].Words {
		if word.Probability < 0 || word.Probability > 1 {
			t.Fatalf("probability out of range: %+v", word)
		}
	}
}

func TestProcessNoSpeechIsAbsentNotError(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "silence.wav")
	writeTone(t, video)

	proc := NewWithModel(context.Background(), missingFFmpeg, &scriptedModel{info: transcription.Info{Language: "en"}}, nil)
	defer proc.Close()

	transcript, err := proc.Process(context.Background(), video, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("no-speech should not error: %v", err)
	}
	if transcript != nil {
		t.Fatal("expected absent transcript for silent input")
	}
}

func TestProcessModelFailureIsAbsentNotError(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "talk.wav")
	writeTone(t, video)

	proc := NewWithModel(context.Background(), missingFFmpeg, &scriptedModel{err: errors.New("model exploded")}, nil)
	defer proc.Close()

	transcript, err := proc.Process(context.Background(), video, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("transcription failure should not propagate: %v", err)
	}
	if transcript != nil {
		t.Fatal("expected absent transcript after model failure")
	}
}

func TestProcessExtractionFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "noaudio.mp4")
	if err := os.WriteFile(video, []byte("\x00\x00\x00\x18ftypmp42"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	proc := NewWithModel(context.Background(), missingFFmpeg, &scriptedModel{}, nil)
	defer proc.Close()

	_, err := proc.Process(context.Background(), video, filepath.Join(dir, "out"))
	if err == nil {
		t.Fatal("expected extraction error")
	}
	var extractErr *extraction.ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *extraction.ExtractError, got %T: %v", err, err)
	}
}

func TestCloseReleasesModel(t *testing.T) {
	model := &scriptedModel{}
	proc := NewWithModel(context.Background(), missingFFmpeg, model, nil)
	if err := proc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !model.closed {
		t.Fatal("model should be closed")
	}
	if err := proc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestCapabilityProbe(t *testing.T) {
	proc := NewWithModel(context.Background(), missingFFmpeg, &scriptedModel{}, nil)
	defer proc.Close()
	if proc.HasFFmpeg() {
		t.Fatal("probe should report missing ffmpeg")
	}
}
