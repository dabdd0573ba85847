package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/extraction"
	"vidscribe/internal/logging"
	"vidscribe/internal/transcription"
)

// Processor owns the loaded speech model, the capability probe, and the
// extract-then-transcribe sequence. Construct once, reuse sequentially, and
// Close when done; concurrent use of one instance is unsafe.
type Processor struct {
	extractor   *extraction.Extractor
	transcriber *transcription.Transcriber
	model       transcription.Model
	hasFFmpeg   bool
	logger      *slog.Logger
}

// New loads the speech-recognition model and probes for ffmpeg. A model load
// failure is fatal: the pipeline is unusable without it. The ffmpeg probe
// only feeds diagnostics; extraction reacts to actual invocation failure
// regardless of the probe result.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Processor, error) {
	model, err := transcription.LoadFasterWhisper(ctx, transcription.WhisperConfig{
		ModelSize:   cfg.Whisper.ModelSize,
		Runner:      cfg.Whisper.Runner,
		Device:      cfg.Whisper.Device,
		ComputeType: cfg.Whisper.ComputeType,
		LoadTimeout: time.Duration(cfg.Whisper.LoadTimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}
	return newWithModel(ctx, cfg.FFmpegBinary(), model, logger), nil
}

// NewWithModel builds a Processor around an already-loaded model. Used by
// tests and callers that manage the model lifecycle themselves.
func NewWithModel(ctx context.Context, ffmpegBinary string, model transcription.Model, logger *slog.Logger) *Processor {
	return newWithModel(ctx, ffmpegBinary, model, logger)
}

func newWithModel(ctx context.Context, ffmpegBinary string, model transcription.Model, logger *slog.Logger) *Processor {
	log := logging.WithComponent(logger, "processor")

	status := deps.Probe(ctx, deps.Requirement{
		Name:        "FFmpeg",
		Command:     ffmpegBinary,
		VersionArgs: []string{"-version"},
	})
	if !status.Available {
		log.Warn("ffmpeg not found; extraction will rely on the fallback decoder",
			logging.String("detail", status.Detail))
	}

	return &Processor{
		extractor:   extraction.New(ffmpegBinary, logger),
		transcriber: transcription.NewTranscriber(model, logger),
		model:       model,
		hasFFmpeg:   status.Available,
		logger:      log,
	}
}

// HasFFmpeg reports the construction-time capability probe result.
func (p *Processor) HasFFmpeg() bool {
	return p.hasFFmpeg
}

// Extractor exposes the waveform extractor for callers that only need audio.
func (p *Processor) Extractor() *extraction.Extractor {
	return p.extractor
}

// Process extracts the audio track of videoPath into outputDir and
// transcribes it. Extraction failures propagate as errors. Transcription
// failures and speech-free input both yield (nil, nil); the two outcomes are
// distinguished in the logs, not the return value.
func (p *Processor) Process(ctx context.Context, videoPath, outputDir string) (*transcription.Transcript, error) {
	log := p.logger.With(logging.String(logging.FieldRunID, uuid.NewString()))
	log.Info("processing video", logging.String(logging.FieldVideo, videoPath))

	wavePath, err := p.extractor.Extract(ctx, videoPath, outputDir)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", videoPath, err)
	}

	transcript, err := p.transcriber.Transcribe(ctx, wavePath)
	if err != nil {
		if errors.Is(err, transcription.ErrNoSpeech) {
			log.Info("no speech detected",
				logging.String(logging.FieldVideo, videoPath),
				logging.String(logging.FieldWaveform, wavePath))
			return nil, nil
		}
		log.Error("transcription failed",
			logging.String(logging.FieldVideo, videoPath),
			logging.String(logging.FieldWaveform, wavePath),
			logging.Error(err))
		return nil, nil
	}

	log.Info("transcription complete",
		logging.String(logging.FieldVideo, videoPath),
		logging.Int("segments", len(transcript.Segments)),
		logging.String("language", transcript.Language),
		logging.Float64("duration_seconds", transcript.Duration()))
	return transcript, nil
}

// Close releases the loaded model's resources.
func (p *Processor) Close() error {
	if p.model == nil {
		return nil
	}
	err := p.model.Close()
	p.model = nil
	return err
}
