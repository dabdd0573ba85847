// Package srt renders transcripts as SubRip subtitle files.
package srt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"vidscribe/internal/transcription"
)

// Write renders the transcript's segments as numbered SubRip cues.
func Write(w io.Writer, transcript *transcription.Transcript) error {
	if transcript == nil {
		return fmt.Errorf("srt: nil transcript")
	}
	for i, segment := range transcript.Segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, formatTimestamp(segment.Start), formatTimestamp(segment.End), text)
		if err != nil {
			return fmt.Errorf("srt: write cue %d: %w", i+1, err)
		}
	}
	return nil
}

// WriteFile renders the transcript to path, overwriting any existing file.
func WriteFile(path string, transcript *transcription.Transcript) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("srt: %w", err)
	}
	if err := Write(file, transcript); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// formatTimestamp renders seconds as the SubRip HH:MM:SS,mmm form.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	millis -= h * 3600000
	m := millis / 60000
	millis -= m * 60000
	s := millis / 1000
	millis -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}
