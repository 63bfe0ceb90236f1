package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipcam/shipcam/internal/category"
	"github.com/shipcam/shipcam/internal/model"
)

func init() {
	categoriesCmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage capture categories",
		Long: "Categories are captured in list order. Editing them never changes saved\n" +
			"records, and an active capture keeps the list it started with.",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories in capture order",
		Args:  cobra.NoArgs,
		Run:   runCategoriesList,
	}

	add := &cobra.Command{
		Use:   "add NAME NAME_EN",
		Short: "Append a category",
		Args:  cobra.ExactArgs(2),
		Run:   runCategoriesAdd,
	}
	add.Flags().Bool("choice", false, "Ask a yes/no question before capturing")

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Rename a category or change its choice flag",
		Args:  cobra.ExactArgs(1),
		Run:   runCategoriesUpdate,
	}
	update.Flags().String("name", "", "New name")
	update.Flags().String("name-en", "", "New English name")
	update.Flags().Bool("choice", false, "Ask a yes/no question before capturing")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a category",
		Args:  cobra.ExactArgs(1),
		Run:   runCategoriesRm,
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in categories",
		Args:  cobra.NoArgs,
		Run:   runCategoriesReset,
	}
	reset.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	categoriesCmd.AddCommand(list, add, update, rm, reset)
	RootCmd.AddCommand(categoriesCmd)
}

func withRegistry(cmd *cobra.Command, fn func(r *category.Registry) ([]model.Category, error)) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cats, err := fn(category.NewRegistry(s, appLog))
	if err != nil {
		exitErr(cmd.Name(), err)
	}
	printCategories(cmd, cats)
}

func printCategories(cmd *cobra.Command, cats []model.Category) {
	if jsonOutput() {
		printJSON(cmd.OutOrStdout(), cats)
		return
	}
	w := cmd.OutOrStdout()
	for i, c := range cats {
		choice := ""
		if c.HasChoice {
			choice = color.YellowString(" [yes/no]")
		}
		fmt.Fprintf(w, "%2d. %-22s %s%s\n", i+1, color.CyanString(c.ID), c.Label(), choice)
	}
}

func runCategoriesList(cmd *cobra.Command, args []string) {
	withRegistry(cmd, func(r *category.Registry) ([]model.Category, error) {
		return r.List(cmd.Context())
	})
}

func runCategoriesAdd(cmd *cobra.Command, args []string) {
	choice, _ := cmd.Flags().GetBool("choice")
	withRegistry(cmd, func(r *category.Registry) ([]model.Category, error) {
		return r.Add(cmd.Context(), args[0], args[1], choice)
	})
}

func runCategoriesUpdate(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	nameEn, _ := cmd.Flags().GetString("name-en")
	choice, _ := cmd.Flags().GetBool("choice")

	withRegistry(cmd, func(r *category.Registry) ([]model.Category, error) {
		if !cmd.Flags().Changed("choice") {
			cats, err := r.List(cmd.Context())
			if err != nil {
				return nil, err
			}
			i := model.FindCategory(cats, args[0])
			if i < 0 {
				return nil, fmt.Errorf("category %q: %w", args[0], model.ErrNotFound)
			}
			choice = cats[i].HasChoice
		}
		return r.Update(cmd.Context(), args[0], name, nameEn, choice)
	})
}

func runCategoriesRm(cmd *cobra.Command, args []string) {
	withRegistry(cmd, func(r *category.Registry) ([]model.Category, error) {
		return r.Remove(cmd.Context(), args[0])
	})
}

func runCategoriesReset(cmd *cobra.Command, args []string) {
	if err := confirm(cmd, "Replace all categories with the built-in set?"); err != nil {
		exitErr("reset", err)
	}
	withRegistry(cmd, func(r *category.Registry) ([]model.Category, error) {
		return r.ResetToDefault(cmd.Context())
	})
}

