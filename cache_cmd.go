package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/focusbox/internal/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Manage the speech clip cache",
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show where clips are cached and how much space they use",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			mgr, err := openCache()
			if err != nil {
				return err
			}
			defer mgr.Close() //nolint:errcheck

			stats := mgr.Stats()
			kw := keyword
			if !styled() {
				kw = plain
			}
			printCacheStats(os.Stdout, stats, kw)
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached clip",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			mgr, err := openCache()
			if err != nil {
				return err
			}
			defer mgr.Close() //nolint:errcheck

			before := mgr.Stats().Disk
			if err := mgr.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Removed %d clips (%s)\n", before.Items, humanize.IBytes(uint64(before.Size))) //nolint:gosec
			return nil
		},
	}
)

// printCacheStats writes one line per tier. A fresh process has an empty
// memory tier, so only its capacity is informative there.
func printCacheStats(w io.Writer, stats cache.ManagerStats, kw func(...string) string) {
	fmt.Fprintf(w, "Cache %s\n", kw(stats.Dir))
	for _, l := range []cache.Level{cache.LevelMemory, cache.LevelDisk} {
		tier := stats.Tier(l)
		fmt.Fprintf(w, "  %-6s %d clips, %s of %s\n", l, tier.Items,
			humanize.IBytes(uint64(tier.Size)), humanize.IBytes(uint64(tier.Capacity))) //nolint:gosec
	}
}

func openCache() (*cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewManager(cfg.CacheSettings(), log.Default())
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
