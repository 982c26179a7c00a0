package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/importer"
)

// maxListedFailures bounds the failures printed in the text summary.
const maxListedFailures = 20

type importOptions struct {
	file    string
	sheet   string
	dryRun  bool
	strict  bool
	noHead  bool
	jsonOut bool
}

func importCmd(flags *globalFlags) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import --file PATH",
		Short: "Import a parts file into the catalog",
		Long: `Import a parts file into the catalog.

Supported files:
  .xlsx                    first worksheet (or --sheet), header row skipped
  .csv                     UTF-8, header row skipped
  .sqlite .sqlite3 .db     desktop catalog database read with SOURCE_DESKTOP_QUERY

Columns: part number, description, manufacturer, unit of measure, note,
and an optional alternate part number.

Records that fail are logged and skipped; the rest of the file is still
imported. With --strict (or IMPORT_FAIL_ON_ERRORS=true) any failure makes
the command exit non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Source file to import (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Reconcile against an empty in-memory catalog without writing")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when any record fails")
	cmd.Flags().BoolVar(&opts.noHead, "no-header", false, "Treat the first row as data")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, flags *globalFlags, opts *importOptions) error {
	cfg, logger, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if opts.sheet != "" {
		cfg.Source.Sheet = opts.sheet
	}
	if opts.noHead {
		cfg.Source.SkipHeader = false
	}

	ctx := cmd.Context()
	name := filepath.Base(opts.file)

	src, err := importer.ReadFile(ctx, opts.file, name, cfg.Source, logger)
	if err != nil {
		return err
	}

	var opener core.SessionOpener
	var recorder core.RunRecorder
	if !opts.dryRun {
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database", "name", database.DatabaseName(cfg.Database.URL))

		opener = database.NewCatalog(pool)
		recorder = database.NewRunStore(pool)
	}

	service := core.NewService(opener, recorder, cfg.Import, logger)
	result, err := service.Import(ctx, core.ImportRequest{
		FileName: name,
		Format:   string(src.Format),
		Records:  src.Records.Records(),
		DryRun:   opts.dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printSummary(out, src, result)
	}

	return checkResult(result, opts.strict, cfg.Import)
}

// checkResult decides the exit status. Per-record failures only fail the
// command in strict mode; a failed commit or cancellation always does.
func checkResult(result *core.ImportResult, strict bool, cfg config.ImportConfig) error {
	if result.CommitFailures > 0 {
		return fmt.Errorf("import finished with %d failed commits, %d records lost", result.CommitFailures, result.Lost)
	}
	if result.Cancelled {
		return fmt.Errorf("import cancelled after %d of %d records", result.Processed+result.Failed, result.Total)
	}
	if (strict || cfg.FailOnErrors) && result.Failed > 0 {
		return fmt.Errorf("import finished with %d failed records", result.Failed)
	}
	return nil
}

func printSummary(w io.Writer, src *importer.Source, result *core.ImportResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	mode := ""
	if result.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(tw, "Import %s%s\n", result.RunID, mode)
	fmt.Fprintf(tw, "  File:\t%s (%s)\n", result.FileName, result.Format)
	fmt.Fprintf(tw, "  Rows read:\t%d (%d without part number, %d repeated)\n", src.Rows, src.Skipped, src.Repeated)
	fmt.Fprintf(tw, "  Records:\t%d\n", result.Total)
	fmt.Fprintf(tw, "  New:\t%d\n", result.New)
	fmt.Fprintf(tw, "  Duplicates skipped:\t%d\n", result.Duplicates)
	fmt.Fprintf(tw, "  Alternates linked:\t%d\n", result.Alternates)
	fmt.Fprintf(tw, "  Catalog entries created:\t%d\n", result.EntriesCreated)
	fmt.Fprintf(tw, "  Alternate links created:\t%d\n", result.LinksCreated)
	if result.AlternatesSkipped > 0 {
		fmt.Fprintf(tw, "  Alternates already present:\t%d\n", result.AlternatesSkipped)
	}
	fmt.Fprintf(tw, "  Failed:\t%d\n", result.Failed)
	fmt.Fprintf(tw, "  Commits:\t%d\n", result.Commits)
	if result.CommitFailures > 0 {
		fmt.Fprintf(tw, "  Failed commits:\t%d (%d records lost)\n", result.CommitFailures, result.Lost)
	}
	fmt.Fprintf(tw, "  Duration:\t%s\n", result.Duration.Round(time.Millisecond))
	tw.Flush()

	if len(result.Failures) == 0 {
		return
	}

	fmt.Fprintln(w, "\nFailed records:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ROW\tPART NUMBER\tMANUFACTURER\tKIND\tREASON")
	for i, f := range result.Failures {
		if i == maxListedFailures {
			fmt.Fprintf(tw, "  ...\t%d more\t\t\t\n", len(result.Failures)-maxListedFailures)
			break
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", f.Index+1, f.PartNumber, f.Manufacturer, f.Kind, f.Reason)
	}
	tw.Flush()
}
