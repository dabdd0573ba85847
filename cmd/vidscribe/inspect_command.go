package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/media/ffprobe"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <video>",
		Short: "Show container and stream details for a media file",
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

			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), video)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:     %s\n", video)
			fmt.Fprintf(out, "Format:   %s\n", result.Format.FormatName)
			fmt.Fprintf(out, "Duration: %s\n", formatClock(result.DurationSeconds()))
			fmt.Fprintf(out, "Audio streams: %d\n", result.AudioStreamCount())
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderStreamTable(result.Streams))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the probe result as JSON")
	return cmd
}

func renderStreamTable(streams []ffprobe.Stream) string {
	rows := make([][]string, 0, len(streams))
	for _, stream := range streams {
		detail := ""
		if strings.EqualFold(stream.CodecType, "audio") {
			detail = fmt.Sprintf("%s Hz, %d channel(s)", stream.SampleRate, stream.Channels)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", stream.Index),
			stream.CodecType,
			stream.CodecName,
			detail,
		})
	}
	return renderTable(
		[]string{"#", "Type", "Codec", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}
