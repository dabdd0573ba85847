package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidscribe/internal/deps"
	"vidscribe/internal/transcriptcache"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, external tool availability, and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Work dir", statusInfo, cfg.Paths.WorkDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Log dir", statusInfo, cfg.Paths.LogDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Model", statusInfo,
				fmt.Sprintf("%s (%s/%s)", cfg.Whisper.ModelSize, cfg.Whisper.Device, cfg.Whisper.ComputeType), colorize))
			fmt.Fprintln(out, renderStatusLine("Cache enabled", statusInfo, yesNo(cfg.Cache.Enabled), colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("External tools", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := deps.Check(cmd.Context(), deps.Defaults(cfg.FFmpegBinary(), cfg.Whisper.Runner))
			for _, status := range statuses {
				kind := statusOK
				message := status.Command
				if !status.Available {
					kind = statusError
					if status.Optional {
						kind = statusWarn
					}
					message = status.Detail
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Transcript cache", colorize) {
				fmt.Fprintln(out, line)
			}
			if !cfg.Cache.Enabled {
				fmt.Fprintln(out, renderStatusLine("Cache", statusInfo, "disabled", colorize))
				return nil
			}
			store, err := transcriptcache.Open(cfg.Cache.Path)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Cache", statusWarn, err.Error(), colorize))
				return nil
			}
			defer store.Close()
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Cache", statusWarn, err.Error(), colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Cache", statusOK,
				fmt.Sprintf("%d transcript(s) at %s", stats.Entries, store.Path()), colorize))
			return nil
		},
	}
}
