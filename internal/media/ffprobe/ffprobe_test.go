package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{Index: 0, CodecType: "video"},
			{Index: 1, CodecType: "audio", Channels: 6},
			{Index: 2, CodecType: "audio", Channels: 2},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	audio := result.AudioStreams()
	if audio[0].Index != 1 || audio[1].Index != 2 {
		t.Fatalf("unexpected audio stream order: %#v", audio)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.AudioStreamCount() != 0 {
		t.Fatalf("expected no audio streams, got %d", result.AudioStreamCount())
	}
}

func TestInspectParsesStubOutput(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := `#!/bin/sh
cat <<'EOF'
{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac","channels":2,"sample_rate":"48000"}],"format":{"filename":"clip.mp4","nb_streams":1,"duration":"10.0","format_name":"mov,mp4"}}
EOF
`
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), stub, "clip.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected one audio stream, got %d", result.AudioStreamCount())
	}
	if result.Format.FormatName != "mov,mp4" {
		t.Fatalf("unexpected format name: %s", result.Format.FormatName)
	}
	if result.DurationSeconds() != 10 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
