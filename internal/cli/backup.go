package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipcam/shipcam/internal/backup"
)

func init() {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import all records",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write every record to a JSON backup",
		Args:  cobra.NoArgs,
		Run:   runBackupExport,
	}
	export.Flags().StringP("out", "o", "", "Output file, - for stdout (default: photo_backup_<date>.json)")

	imp := &cobra.Command{
		Use:   "import FILE",
		Short: "Restore records from a JSON backup (- for stdin)",
		Long: "Restore records from a JSON backup. Records get new ids and are added to\n" +
			"the existing ones. Records that cannot be read are reported and skipped.",
		Args: cobra.ExactArgs(1),
		Run:  runBackupImport,
	}

	backupCmd.AddCommand(export, imp)
	RootCmd.AddCommand(backupCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	now := time.Now()
	doc, err := backup.Export(records, cfg.DeviceInfo, now)
	if err != nil {
		exitErr("export", err)
	}

	if out == "-" {
		if err := backup.Write(cmd.OutOrStdout(), doc); err != nil {
			exitErr("export", err)
		}
		return
	}
	if out == "" {
		out = backup.Filename(now)
	}

	f, err := os.Create(out)
	if err != nil {
		exitErr("export", err)
	}
	if err := errors.Join(backup.Write(f, doc), f.Close()); err != nil {
		exitErr("export", err)
	}
	appLog.Info("backup written", "file", out, "records", doc.RecordCount)
	printOK(cmd, map[string]any{"file": out, "records": doc.RecordCount},
		fmt.Sprintf("exported %d records to %s", doc.RecordCount, out))
}

func runBackupImport(cmd *cobra.Command, args []string) {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open backup", err)
		}
		defer f.Close()
		in = f
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rep, err := backup.Restore(cmd.Context(), in, s)
	if err != nil {
		exitErr("import", err)
	}

	for _, f := range rep.Failed {
		appLog.Warn("record not imported", "index", f.Index, "error", f.Error)
	}
	if jsonOutput() {
		printJSON(cmd.OutOrStdout(), map[string]any{"ok": true, "imported": rep.Imported, "ids": rep.IDs, "failed": rep.Failed})
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓"), fmt.Sprintf("imported %d records", rep.Imported))
	if len(rep.Failed) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("%d records skipped, see log", len(rep.Failed)))
	}
}
