package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipcam/shipcam/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:       "suggest customer|destination",
		Short:     "Show the most used customers or destinations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{model.SuggestCustomer, model.SuggestDestination},
		Run:       runSuggest,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if jsonOutput() {
		sgs, err := s.Suggestions(cmd.Context(), args[0], limit)
		if err != nil {
			exitErr("suggest", err)
		}
		printJSON(cmd.OutOrStdout(), sgs)
		return
	}

	values, err := s.TopValues(cmd.Context(), args[0], limit)
	if err != nil {
		exitErr("suggest", err)
	}
	for _, v := range values {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
}
