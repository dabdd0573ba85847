package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"vidscribe/internal/transcriptcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Transcript cache maintenance",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func (c *commandContext) openCache() (*transcriptcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, errors.New("transcript cache is disabled in configuration")
	}
	return transcriptcache.Open(cfg.Cache.Path)
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached transcript counts by language",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", store.Path())
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			if stats.Entries == 0 {
				return nil
			}

			codes := make([]string, 0, len(stats.Languages))
			for code := range stats.Languages {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				rows = append(rows, []string{
					describeLanguage(code),
					fmt.Sprintf("%d", stats.Languages[code]),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Language", "Transcripts"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				if errors.Is(err, transcriptcache.ErrSchemaMismatch) {
					return rebuildCache(cmd, ctx)
				}
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached transcript(s)\n", removed)
			return nil
		},
	}
}

// rebuildCache removes an incompatible database file so the next run can
// recreate it with the current schema.
func rebuildCache(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(cfg.Cache.Path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove incompatible cache: %w", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed incompatible cache database at %s\n", cfg.Cache.Path)
	return nil
}
