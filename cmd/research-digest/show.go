// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/report"
	"github.com/pdiddy/research-digest/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored weekly run or one of its papers",
	Long: `Show prints a committed run without fetching anything. Without --week
it prints the latest run. With --slug it prints a single paper and its
score breakdown.`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("week", "", "ISO week key, e.g. 2026-W42 (default: latest run)")
	showCmd.Flags().String("slug", "", "print only the paper with this slug")
	showCmd.Flags().String("format", report.FormatNameTable, "output format: table, json, csl")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	week, _ := cmd.Flags().GetString("week")
	slug, _ := cmd.Flags().GetString("slug")
	format, _ := cmd.Flags().GetString("format")

	if week != "" {
		if _, _, err := types.ParseWeekKey(week); err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := cmd.Context()

	if slug != "" {
		p, err := st.PaperBySlug(ctx, week, slug)
		if err != nil {
			return fmt.Errorf("looking up %q: %w", slug, err)
		}
		if format == report.FormatNameJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}
		report.FormatPaper(p, os.Stdout)
		return nil
	}

	var run types.WeeklyRun
	if week == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.RunByWeek(ctx, week)
	}
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, run, format)
}
