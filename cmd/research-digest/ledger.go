// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the published-paper ledger and stored runs",
}

var ledgerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count ledger keys in total and per week",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.LedgerStats(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Printf("%d DOIs, %d titles\n", stats.DOIs, stats.Titles)
		if len(stats.Weeks) == 0 {
			return nil
		}
		fmt.Printf("\n%-10s  %6s  %6s\n", "Week", "DOIs", "Titles")
		for _, w := range stats.Weeks {
			fmt.Printf("%-10s  %6d  %6d\n", w.WeekKey, w.DOIs, w.Titles)
		}
		return nil
	},
}

var ledgerRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored weekly runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Println("No runs stored.")
			return nil
		}
		fmt.Printf("%-10s  %-36s  %-20s  %s\n", "Week", "Run", "Generated", "Papers")
		for _, r := range runs {
			fmt.Printf("%-10s  %-36s  %-20s  %d\n",
				r.WeekKey, r.RunID, r.GeneratedAt.Format("2006-01-02 15:04"), r.Papers)
		}
		return nil
	},
}

func init() {
	ledgerStatsCmd.Flags().Bool("json", false, "output as JSON")
	ledgerRunsCmd.Flags().Bool("json", false, "output as JSON")

	ledgerCmd.AddCommand(ledgerStatsCmd, ledgerRunsCmd)
	rootCmd.AddCommand(ledgerCmd)
}
