package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vidscribe/internal/logging"
	"vidscribe/internal/media/wave"
)

// WaveformName is the fixed file name written under the output directory.
// Concurrent extractions into the same directory race on this path and must
// be serialized by the caller.
const WaveformName = "audio.wav"

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Extractor converts a video file into a normalized mono 16 kHz 16-bit PCM
// waveform, preferring ffmpeg and falling back to the in-process decoder.
type Extractor struct {
	ffmpegBinary string
	logger       *slog.Logger
	runner       CommandRunner
}

// New creates an Extractor. An empty binary defaults to "ffmpeg"; a nil
// logger discards diagnostics.
func New(ffmpegBinary string, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Extractor{
		ffmpegBinary: ffmpegBinary,
		logger:       logging.WithComponent(logger, "extractor"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// Extract produces outputDir/audio.wav from videoPath. The primary strategy
// is an ffmpeg invocation; when that fails (missing binary or non-zero exit)
// the in-process wave decoder takes over. If both strategies fail the
// returned error is an *ExtractError carrying both causes, and no partial
// output file is left behind.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputDir string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("extract audio: source: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("extract audio: ensure output dir: %w", err)
	}
	dest := filepath.Join(outputDir, WaveformName)

	primaryErr := e.runFFmpeg(ctx, videoPath, dest)
	if primaryErr == nil {
		e.logger.Debug("waveform extracted via ffmpeg",
			logging.String(logging.FieldVideo, videoPath),
			logging.String(logging.FieldWaveform, dest))
		return dest, nil
	}

	e.logger.Warn("ffmpeg extraction failed, trying fallback decoder",
		logging.String(logging.FieldVideo, videoPath),
		logging.Error(primaryErr))

	if fallbackErr := wave.Normalize(videoPath, dest); fallbackErr != nil {
		// Guarantee no partial waveform survives a double failure.
		_ = os.Remove(dest)
		return "", &ExtractError{Video: videoPath, PrimaryErr: primaryErr, FallbackErr: fallbackErr}
	}

	e.logger.Debug("waveform extracted via fallback decoder",
		logging.String(logging.FieldVideo, videoPath),
		logging.String(logging.FieldWaveform, dest))
	return dest, nil
}

func (e *Extractor) runFFmpeg(ctx context.Context, videoPath, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		dest,
	}
	output, err := e.run(ctx, e.ffmpegBinary, args...)
	if err != nil {
		// ffmpeg can leave a truncated file when it dies mid-write.
		_ = os.Remove(dest)
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}
