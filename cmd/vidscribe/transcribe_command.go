package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/fileutil"
	"vidscribe/internal/language"
	"vidscribe/internal/processor"
	"vidscribe/internal/srt"
	"vidscribe/internal/transcriptcache"
	"vidscribe/internal/transcription"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var srtPath string
	var asJSON bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Extract audio from a video and transcribe the speech",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve video path: %w", err)
			}
			if _, err := os.Stat(video); err != nil {
				return fmt.Errorf("inspect video %q: %w", video, err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			release, err := acquireWorkLock(cfg)
			if err != nil {
				return err
			}
			defer release()

			fingerprint, err := fileutil.Fingerprint(video)
			if err != nil {
				return fmt.Errorf("fingerprint video: %w", err)
			}

			var cache *transcriptcache.Store
			if cfg.Cache.Enabled && !noCache {
				cache, err = transcriptcache.Open(cfg.Cache.Path)
				if err != nil {
					return fmt.Errorf("open transcript cache: %w", err)
				}
				defer cache.Close()

				cached, ok, err := cache.Get(cmd.Context(), fingerprint, cfg.Whisper.ModelSize)
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using cached transcript for %s\n", filepath.Base(video))
					return emitTranscript(cmd, video, cached, srtPath, asJSON)
				}
			}

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = filepath.Join(cfg.Paths.WorkDir, videoStem(video))
			} else if dir, err = config.ExpandPath(dir); err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			proc, err := processor.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer proc.Close()

			transcript, err := proc.Process(cmd.Context(), video, dir)
			if err != nil {
				return err
			}
			if transcript == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No speech detected in %s\n", filepath.Base(video))
				return nil
			}

			if cache != nil {
				if err := cache.Put(cmd.Context(), fingerprint, cfg.Whisper.ModelSize, transcript); err != nil {
					logger.Warn("failed to cache transcript", "error", err)
				}
			}

			return emitTranscript(cmd, video, transcript, srtPath, asJSON)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the extracted waveform (defaults under work_dir)")
	cmd.Flags().StringVar(&srtPath, "srt", "", "Also write the transcript as an SRT subtitle file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the transcript as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the transcript cache for this run")
	return cmd
}

// acquireWorkLock guards the work directory against concurrent runs sharing
// scratch output paths.
func acquireWorkLock(cfg *config.Config) (func(), error) {
	lock := flock.New(filepath.Join(cfg.Paths.WorkDir, "vidscribe.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire work directory lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another vidscribe run holds the work directory lock at %s", lock.Path())
	}
	return func() { _ = lock.Unlock() }, nil
}

func videoStem(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return "video"
	}
	return base
}

type transcriptOutput struct {
	Video        string                    `json:"video"`
	Language     string                    `json:"language"`
	LanguageName string                    `json:"language_name,omitempty"`
	Duration     float64                   `json:"duration_seconds"`
	Transcript   *transcription.Transcript `json:"transcript"`
}

func emitTranscript(cmd *cobra.Command, video string, transcript *transcription.Transcript, srtPath string, asJSON bool) error {
	if srtPath != "" {
		target, err := config.ExpandPath(srtPath)
		if err != nil {
			return fmt.Errorf("resolve srt path: %w", err)
		}
		if err := writeSubtitles(target, transcript); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote subtitles to %s\n", target)
	}

	if asJSON {
		return writeJSON(cmd, transcriptOutput{
			Video:        video,
			Language:     transcript.Language,
			LanguageName: language.DisplayName(transcript.Language),
			Duration:     transcript.Duration(),
			Transcript:   transcript,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Video:    %s\n", video)
	fmt.Fprintf(out, "Language: %s\n", describeLanguage(transcript.Language))
	fmt.Fprintf(out, "Duration: %s of speech\n", formatClock(transcript.Duration()))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSegmentTable(transcript.Segments))
	return nil
}

func renderSegmentTable(segments []transcription.Segment) string {
	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			formatClock(seg.Start),
			formatClock(seg.End),
			strings.TrimSpace(seg.Text),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	)
}

func describeLanguage(code string) string {
	if code == "" {
		return "unknown"
	}
	name := language.DisplayName(code)
	if name == "" || strings.EqualFold(name, code) {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := seconds - float64(hours*3600+minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

func writeSubtitles(path string, transcript *transcription.Transcript) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create srt directory: %w", err)
	}
	return srt.WriteFile(path, transcript)
}
