package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/extraction"
	"vidscribe/internal/logging"
	"vidscribe/internal/media/wave"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Extract the normalized audio track from a video without transcribing",
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

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = filepath.Join(cfg.Paths.WorkDir, videoStem(video))
			} else if dir, err = config.ExpandPath(dir); err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			ffmpeg := deps.Probe(cmd.Context(), deps.Defaults(cfg.FFmpegBinary(), cfg.Whisper.Runner)[0])
			if !ffmpeg.Available {
				logger.Warn("ffmpeg unavailable, extraction limited to wave containers",
					logging.String("detail", ffmpeg.Detail))
			}

			extractor := extraction.New(cfg.FFmpegBinary(), logger)
			wavePath, err := extractor.Extract(cmd.Context(), video, dir)
			if err != nil {
				return err
			}
			if err := wave.Verify(wavePath); err != nil {
				return fmt.Errorf("verify extracted audio: %w", err)
			}

			info, err := wave.Probe(wavePath)
			if err != nil {
				return fmt.Errorf("probe extracted audio: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted audio to %s\n", wavePath)
			fmt.Fprintf(out, "  %d Hz, %d-bit, %d channel(s), %s\n",
				info.SampleRate, info.BitDepth, info.Channels, formatClock(info.Duration))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the extracted waveform (defaults under work_dir)")
	return cmd
}
