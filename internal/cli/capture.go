package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipcam/shipcam/internal/annotate"
	"github.com/shipcam/shipcam/internal/category"
	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/store"
	"github.com/shipcam/shipcam/internal/workflow"
)

func init() {
	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Run a capture session",
		Long: "A capture walks through every category in order. Each step takes photos,\n" +
			"or a yes/no answer for choice categories, and the finished session is\n" +
			"committed as one record.",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start a new capture",
		Args:  cobra.NoArgs,
		Run:   runCaptureStart,
	}
	start.Flags().String("date", time.Now().Format(model.DateLayout), "Shipment date (YYYY-MM-DD)")
	start.Flags().StringP("customer", "c", "", "Customer (required)")
	start.Flags().String("destination", "", "Destination (required)")
	start.Flags().String("notes", "", "Free-form notes")
	start.MarkFlagRequired("customer")
	start.MarkFlagRequired("destination")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current capture",
		Args:  cobra.NoArgs,
		Run:   runCaptureStatus,
	}

	choose := &cobra.Command{
		Use:       "choose yes|no",
		Short:     "Answer the current category's yes/no question",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"yes", "no"},
		Run:       runCaptureChoose,
	}

	add := &cobra.Command{
		Use:   "add FILE...",
		Short: "Annotate and add photos to the current category",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCaptureAdd,
	}

	rm := &cobra.Command{
		Use:   "rm CATEGORY INDEX",
		Short: "Remove a photo (INDEX is 1-based, as shown by status)",
		Args:  cobra.ExactArgs(2),
		Run:   runCaptureRm,
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "Go to the next category, completing the capture after the last",
		Args:  cobra.NoArgs,
		Run:   stepRunner(workflow.Advance),
	}

	prev := &cobra.Command{
		Use:   "prev",
		Short: "Go back one category",
		Args:  cobra.NoArgs,
		Run:   stepRunner(workflow.Retreat),
	}

	commit := &cobra.Command{
		Use:   "commit",
		Short: "Save the completed capture as a record",
		Args:  cobra.NoArgs,
		Run:   runCaptureCommit,
	}

	abandon := &cobra.Command{
		Use:   "abandon",
		Short: "Discard the current capture",
		Args:  cobra.NoArgs,
		Run:   runCaptureAbandon,
	}
	abandon.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	captureCmd.AddCommand(start, status, choose, add, rm, next, prev, commit, abandon)
	RootCmd.AddCommand(captureCmd)
}

// withSession opens the store and loads the active capture.
func withSession(cmd *cobra.Command, fn func(s *store.SQLiteStore, sess *workflow.Session, st workflow.State)) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess := workflow.NewSession(s, appLog)
	st, err := sess.Load(cmd.Context())
	if err != nil {
		exitErr("load capture", err)
	}
	fn(s, sess, st)
}

func saveAndShow(cmd *cobra.Command, sess *workflow.Session, st workflow.State) {
	if err := sess.Save(cmd.Context(), st); err != nil {
		exitErr("save capture", err)
	}
	printStatus(cmd, st)
}

func runCaptureStart(cmd *cobra.Command, args []string) {
	date, _ := cmd.Flags().GetString("date")
	customer, _ := cmd.Flags().GetString("customer")
	destination, _ := cmd.Flags().GetString("destination")
	notes, _ := cmd.Flags().GetString("notes")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cats, err := category.NewRegistry(s, appLog).List(cmd.Context())
	if err != nil {
		exitErr("list categories", err)
	}

	st, err := workflow.NewSession(s, appLog).Begin(cmd.Context(), cats, workflow.Form{
		Date:        date,
		Customer:    customer,
		Destination: destination,
		Notes:       notes,
	}, time.Now())
	if err != nil {
		exitErr("start capture", err)
	}
	printStatus(cmd, st)
}

func runCaptureStatus(cmd *cobra.Command, args []string) {
	withSession(cmd, func(_ *store.SQLiteStore, _ *workflow.Session, st workflow.State) {
		printStatus(cmd, st)
	})
}

func runCaptureChoose(cmd *cobra.Command, args []string) {
	withSession(cmd, func(_ *store.SQLiteStore, sess *workflow.Session, st workflow.State) {
		next, err := workflow.ChooseConversion(st, args[0] == "yes")
		if err != nil {
			exitErr("choose", err)
		}
		saveAndShow(cmd, sess, next)
	})
}

func runCaptureAdd(cmd *cobra.Command, args []string) {
	withSession(cmd, func(_ *store.SQLiteStore, sess *workflow.Session, st workflow.State) {
		var files []annotate.File
		var failed []error
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				failed = append(failed, &model.AnnotationError{File: path, Err: err})
				continue
			}
			files = append(files, annotate.File{Name: filepath.Base(path), Data: data})
		}

		pipeline := annotate.New(annotate.Options{MaxDimension: cfg.MaxDimension, Quality: cfg.JPEGQuality})
		next, errs, err := workflow.AddPhotos(cmd.Context(), st, pipeline, files)
		if err != nil {
			exitErr("add photos", err)
		}
		failed = append(failed, errs...)
		for _, e := range failed {
			appLog.Warn("photo not added", "error", e)
			fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("skipped:"), e)
		}
		saveAndShow(cmd, sess, next)
	})
}

func runCaptureRm(cmd *cobra.Command, args []string) {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		exitErr("parse index", err)
	}
	withSession(cmd, func(_ *store.SQLiteStore, sess *workflow.Session, st workflow.State) {
		next, err := workflow.RemovePhoto(st, args[0], index-1)
		if err != nil {
			exitErr("remove photo", err)
		}
		saveAndShow(cmd, sess, next)
	})
}

func stepRunner(step func(workflow.State) workflow.State) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		withSession(cmd, func(_ *store.SQLiteStore, sess *workflow.Session, st workflow.State) {
			saveAndShow(cmd, sess, step(st))
		})
	}
}

func runCaptureCommit(cmd *cobra.Command, args []string) {
	withSession(cmd, func(s *store.SQLiteStore, sess *workflow.Session, st workflow.State) {
		r, err := sess.Commit(cmd.Context(), st, s, time.Now())
		if errors.Is(err, workflow.ErrNotCleared) {
			fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("warning:"), err)
			fmt.Fprintln(cmd.ErrOrStderr(), "run `shipcam capture abandon` to clear it")
		} else if err != nil {
			exitErr("commit", err)
		}
		printOK(cmd, map[string]any{"id": r.ID, "photos": r.PhotoCount()},
			fmt.Sprintf("saved record %d with %d photos", r.ID, r.PhotoCount()))
	})
}

func runCaptureAbandon(cmd *cobra.Command, args []string) {
	withSession(cmd, func(_ *store.SQLiteStore, sess *workflow.Session, st workflow.State) {
		if err := confirm(cmd, fmt.Sprintf("Discard capture for %s (%d photos)?", st.Form.Customer, st.PhotoCount())); err != nil {
			exitErr("abandon", err)
		}
		if err := sess.Abandon(cmd.Context()); err != nil {
			exitErr("abandon", err)
		}
		printOK(cmd, map[string]any{"session": st.SessionID}, "capture discarded")
	})
}
