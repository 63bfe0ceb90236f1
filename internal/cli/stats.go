package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	if jsonOutput() {
		printJSON(cmd.OutOrStdout(), stats)
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s (%d bytes)\n", color.CyanString("database"), stats.DBPath, stats.DBSizeBytes)
	fmt.Fprintf(w, "records: %d  photos: %d  skipped: %d  suggestions: %d\n",
		stats.Records, stats.Photos, stats.Skipped, stats.Suggestions)
	for _, c := range stats.Customers {
		fmt.Fprintf(w, "  %-30s %d\n", c.Customer, c.Records)
	}
}
