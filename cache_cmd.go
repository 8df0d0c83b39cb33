package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tranenterprises/MotivationFiles2.0-sub001/internal/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the layered quote cache",
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show per-tier entry counts and sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := newCacheManager()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			out := cmd.OutOrStdout()
			stats := m.Stats()
			for _, tier := range cache.Tiers() {
				s := stats[tier]
				fmt.Fprintf(out, "%-12s %5d entries  %10s\n",
					tier.String(), s.Items, humanize.Bytes(uint64(s.SizeBytes))) //nolint:gosec
			}
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear [TIER]",
		Short: "Remove owned entries from one tier, or all tiers",
		Long: paragraph(
			fmt.Sprintf("\nRemove every entry the cache owns in the given tier (%s, %s or %s), or in all tiers when no tier is named. Unrelated data sharing the persisted namespaces is left untouched.",
				keyword("ephemeral"), keyword("persistent"), keyword("session")),
		),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newCacheManager()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			tiers := cache.Tiers()
			if len(args) == 1 {
				tier, err := cache.ParseTier(args[0])
				if err != nil {
					return fmt.Errorf("%w: %s", err, args[0])
				}
				tiers = []cache.Tier{tier}
			}

			for _, tier := range tiers {
				if err := m.Clear(tier); err != nil {
					return fmt.Errorf("unable to clear %s tier: %w", tier, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s tier\n", tier)
			}
			return nil
		},
	}

	cacheInvalidateCmd = &cobra.Command{
		Use:     "invalidate PATTERN...",
		Short:   "Drop entries whose keys contain any pattern",
		Example: paragraph("motivate cache invalidate today_quote\nmotivate cache invalidate archive quote_count"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newCacheManager()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			m.Invalidate(args...)
			fmt.Fprintf(cmd.OutOrStdout(), "invalidated entries matching %v\n", args)
			return nil
		},
	}
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheInvalidateCmd)
}
