// Package cli implements the shipcam CLI commands.
package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shipcam/shipcam/internal/config"
	"github.com/shipcam/shipcam/internal/logger"
	"github.com/shipcam/shipcam/internal/store"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var (
	dbPath     string
	configFile string
	formatFlag string

	cfg    *config.Config
	appLog *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "shipcam",
	Short: "Categorized shipment photo capture",
	Long: "Walk through packing categories, capture watermarked photos and keep them as\n" +
		"searchable local records. SQLite-backed, single binary.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.DBPath = dbPath
		}
		cfg = c
		appLog = logger.New(c.Env, c.LogLevel)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SHIPCAM_DB_PATH or ~/.shipcam/shipcam.db)")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.shipcam/config.yaml or ./config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", formatText, "Output format: json or text")

	cobra.OnInitialize(useColor)
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath,
		store.WithLogger(appLog),
		store.WithSuggestionCap(cfg.SuggestionCap))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s %s: %v\n", color.RedString("error:"), msg, err)
	os.Exit(1)
}

func jsonOutput() bool { return formatFlag == formatJSON }

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// printOK writes a one-line {"ok":true,...} result in json mode, or msg
// otherwise.
func printOK(cmd *cobra.Command, fields map[string]any, msg string) {
	if jsonOutput() {
		out := map[string]any{"ok": true}
		for k, v := range fields {
			out[k] = v
		}
		b, _ := json.Marshal(out)
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓"), msg)
}

var errNotConfirmed = errors.New("not confirmed")

// confirm asks a yes/no question on the terminal. Without a terminal the
// caller must pass --yes.
func confirm(cmd *cobra.Command, prompt string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%w: stdin is not a terminal, pass --yes", errNotConfirmed)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", color.YellowString(prompt))
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return errNotConfirmed
	}
}

// useColor turns color off when stdout is not a terminal.
func useColor() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}
