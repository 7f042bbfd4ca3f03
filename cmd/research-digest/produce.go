// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/pipeline"
	"github.com/pdiddy/research-digest/internal/report"
)

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Produce the digest for the current ISO week",
	Long: `Produce fetches candidates for every configured topic, filters, dedups
against earlier weeks, ranks and selects them, and commits the run together
with its ledger entries. If the week already has a run it is printed
unchanged; --force recomputes it.`,
	RunE: runProduce,
}

func init() {
	produceCmd.Flags().Bool("force", false, "recompute the current week even if a run exists")
	produceCmd.Flags().String("format", report.FormatNameTable, "output format: table, json, csl")

	rootCmd.AddCommand(produceCmd)
}

func runProduce(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	run, err := pipeline.New(st, logger).ProduceWeek(ctx, cfg, force)
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, run, format)
}
