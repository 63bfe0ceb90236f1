package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipcam/shipcam/internal/annotate"
	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/store"
)

func init() {
	recordsCmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"rec"},
		Short:   "Browse saved records",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		Run:   runRecordsList,
	}
	list.Flags().StringP("customer", "c", "", "Customer contains (case-insensitive)")
	list.Flags().String("destination", "", "Destination contains (case-insensitive)")
	list.Flags().String("from", "", "Earliest date (YYYY-MM-DD, inclusive)")
	list.Flags().String("to", "", "Latest date (YYYY-MM-DD, inclusive)")
	list.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		Run:   runRecordsGet,
	}
	get.Flags().Bool("full", false, "Include photo payloads")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		Run:   runRecordsRm,
	}
	rm.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	photos := &cobra.Command{
		Use:   "photos ID",
		Short: "Write a record's annotated photos as JPEG files",
		Args:  cobra.ExactArgs(1),
		Run:   runRecordsPhotos,
	}
	photos.Flags().StringP("out", "o", ".", "Output directory")

	recordsCmd.AddCommand(list, get, rm, photos)
	RootCmd.AddCommand(recordsCmd)
}

func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		exitErr("parse id", fmt.Errorf("invalid record id %q", arg))
	}
	return id
}

func runRecordsList(cmd *cobra.Command, args []string) {
	customer, _ := cmd.Flags().GetString("customer")
	destination, _ := cmd.Flags().GetString("destination")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.Search(cmd.Context(), store.SearchParams{
		Customer:    customer,
		Destination: destination,
		DateFrom:    from,
		DateTo:      to,
		Limit:       limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	sums := make([]recordSummary, 0, len(records))
	for _, r := range records {
		sums = append(sums, newRecordSummary(r, false))
	}
	if jsonOutput() {
		printJSON(cmd.OutOrStdout(), sums)
		return
	}

	w := cmd.OutOrStdout()
	if len(sums) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}
	for _, r := range sums {
		fmt.Fprintf(w, "%s  %s  %-24s %-20s %3d photos  %s\n",
			color.CyanString("#%-5d", r.ID), r.Date, r.Customer, r.Destination, r.Photos, r.FirstPhoto)
	}
}

func runRecordsGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	full, _ := cmd.Flags().GetBool("full")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := s.Get(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}

	if full {
		printJSON(cmd.OutOrStdout(), r)
		return
	}
	sum := newRecordSummary(r, true)
	if jsonOutput() {
		printJSON(cmd.OutOrStdout(), sum)
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s → %s  %s\n", color.CyanString("#%d", sum.ID), sum.Customer, sum.Destination, sum.Date)
	if sum.Notes != "" {
		fmt.Fprintf(w, "notes: %s\n", sum.Notes)
	}
	ids := make([]string, 0, len(sum.Slots))
	for id := range sum.Slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %-24s %d photos\n", id, sum.Slots[id])
	}
	for _, id := range sum.Skipped {
		fmt.Fprintf(w, "  %-24s %s\n", id, color.New(color.Faint).Sprint("skipped"))
	}
	fmt.Fprintf(w, "created %s\n", sum.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func runRecordsRm(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := confirm(cmd, fmt.Sprintf("Delete record %d?", id)); err != nil {
		exitErr("rm", err)
	}
	deleted, err := s.Delete(cmd.Context(), id)
	if err != nil {
		exitErr("rm", err)
	}
	if !deleted {
		exitErr("rm", fmt.Errorf("record %d: %w", id, model.ErrNotFound))
	}
	printOK(cmd, map[string]any{"id": id}, fmt.Sprintf("deleted record %d", id))
}

func runRecordsPhotos(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	r, err := s.Get(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}

	paths, err := writePhotos(out, r)
	if err != nil {
		exitErr("write photos", err)
	}
	printOK(cmd, map[string]any{"id": id, "files": paths}, fmt.Sprintf("wrote %d files to %s", len(paths), out))
}

// writePhotos writes every photo of r as <dir>/<id>_<category>_<n>.jpg.
func writePhotos(dir string, r model.Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	cats := sortedSlotIDs(r)

	var paths []string
	var errs []error
	for _, cat := range cats {
		if !model.ValidCategoryID(cat) {
			errs = append(errs, fmt.Errorf("category %q: unsafe id, photos not written", cat))
			continue
		}
		for i, p := range r.Photos[cat].Photos {
			data, err := annotate.DecodeDataURI(p.Data)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s #%d: %w", cat, i+1, err))
				continue
			}
			path := filepath.Join(dir, photoFileName(r.ID, cat, i))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				errs = append(errs, err)
				continue
			}
			paths = append(paths, path)
		}
	}
	return paths, errors.Join(errs...)
}

func sortedSlotIDs(r model.Record) []string {
	ids := make([]string, 0, len(r.Photos))
	for id := range r.Photos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func photoFileName(id int64, category string, index int) string {
	return fmt.Sprintf("%d_%s_%d.jpg", id, category, index+1)
}
