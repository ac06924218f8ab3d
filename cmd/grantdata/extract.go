// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grantdata/internal/batch"
	"github.com/pdiddy/grantdata/internal/pdftext"
	"github.com/pdiddy/grantdata/internal/section"
	"github.com/pdiddy/grantdata/internal/sheet"
	"github.com/pdiddy/grantdata/internal/store"
	"github.com/pdiddy/grantdata/pkg/types"
)

// projectsSheet is the worksheet name of extracted tables.
const projectsSheet = "Projects"

var extractCmd = &cobra.Command{
	Use:   "extract <report.pdf>...",
	Short: "Extract project summaries from portfolio PDF reports",
	Long: `Extract reads each PDF page by page. Pages that contain a project summary
heading ("Projektsammanfattning" or "Project summary") are split into the
fields focus area, title, objectives, summary, coordinator, other partners,
total budgeted cost and total requested contribution. Other partners are
also split into one column per organisation.

Each input is written to <output-dir>/<name>.<format> unless --output is
given, in which case all inputs are merged into that one file. With
--format sqlite the runs are stored in the project database instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "output file (merges all inputs)")
	extractCmd.Flags().String("output-dir", "", "directory for per-input output files (default output)")
	extractCmd.Flags().String("format", "", "output format: xlsx, json, yaml, or sqlite (default from --output extension, then config, else xlsx)")
	extractCmd.Flags().String("backend", "", "PDF text backend: native or pdftotext (default native)")
	extractCmd.Flags().Int("workers", 0, "pages extracted concurrently (default 1)")
	extractCmd.Flags().String("lang", "", "column names: sv or en (default sv)")
	extractCmd.Flags().String("db", "", "project database for --format sqlite (default output/projects.db)")
	extractCmd.Flags().Bool("stats", true, "print filled-value counts per column")

	viper.BindPFlag("extract.output_dir", extractCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("extract.format", extractCmd.Flags().Lookup("format"))
	viper.BindPFlag("extract.backend", extractCmd.Flags().Lookup("backend"))
	viper.BindPFlag("extract.workers", extractCmd.Flags().Lookup("workers"))
	viper.BindPFlag("extract.language", extractCmd.Flags().Lookup("lang"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Extract
	output, _ := cmd.Flags().GetString("output")
	showStats, _ := cmd.Flags().GetBool("stats")

	lang, err := section.ParseLanguage(cfg.Language)
	if err != nil {
		return err
	}
	var explicit types.OutputFormat
	if cmd.Flags().Changed("format") {
		f, _ := cmd.Flags().GetString("format")
		explicit = types.OutputFormat(f)
	}
	format, err := resolveFormat(explicit, cfg.Format, output)
	if err != nil {
		return err
	}
	db, err := sqlitePath(cmd, format, output)
	if err != nil {
		return err
	}
	reader, err := pdftext.NewReader(cfg.Backend)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	opts := batch.Options{Workers: cfg.Workers, Logger: logger}

	var merged *batch.Batch
	found := 0
	for _, path := range args {
		b, pages, err := extractFile(ctx, reader, path, opts, out)
		if errors.Is(err, batch.ErrNoProjects) {
			logger.Warn("no project data found", "source", path)
			continue
		}
		if err != nil {
			return err
		}
		found++

		switch {
		case format == types.FormatSQLite:
			if err := saveRun(ctx, db, b, pages, out); err != nil {
				return err
			}
		case output != "":
			if merged == nil {
				merged = &batch.Batch{Source: b.Source}
			}
			merged.Merge(b)
		default:
			dest := defaultOutput(cfg.OutputDir, path, format)
			if err := writeBatch(b, dest, format, lang); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %d projects to %s\n", len(b.Entries), dest)
		}
		if showStats {
			printStats(out, b, lang)
		}
	}

	if found == 0 {
		fmt.Fprintln(out, "No project data found")
		return batch.ErrNoProjects
	}
	if merged != nil {
		if err := writeBatch(merged, output, format, lang); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d projects to %s\n", len(merged.Entries), output)
	}
	return nil
}

func extractFile(ctx context.Context, reader pdftext.Reader, path string, opts batch.Options, w io.Writer) (*batch.Batch, int, error) {
	count, err := pdftext.PageCount(path)
	if err != nil {
		// The text backends tolerate some files pdfcpu rejects.
		logger.Warn("could not validate PDF", "source", path, "error", err)
	}

	pages, err := reader.Pages(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	if count > 0 && count != len(pages) {
		logger.Warn("page count mismatch", "source", path, "pdfcpu", count, reader.Name(), len(pages))
	}
	logger.Info("reading report", "source", path, "pages", len(pages), "backend", reader.Name())

	fmt.Fprintf(w, "%s:\n", path)
	b, _, err := batch.Collect(ctx, filepath.Base(path), pages, opts, w)
	return b, len(pages), err
}

// resolveFormat picks the output format. An explicit --format wins, then
// the extension of output, then the configured format, then xlsx.
func resolveFormat(explicit, configured types.OutputFormat, output string) (types.OutputFormat, error) {
	format := explicit
	if format == "" {
		format = formatFromExt(output)
	}
	if format == "" {
		format = configured
	}
	if format == "" {
		format = types.FormatXLSX
	}
	switch format {
	case types.FormatXLSX, types.FormatJSON, types.FormatYAML, types.FormatSQLite:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q: use xlsx, json, yaml, or sqlite", format)
}

// formatFromExt maps a file extension to its format, or "" when the
// extension is not one of ours.
func formatFromExt(path string) types.OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return types.FormatXLSX
	case ".json":
		return types.FormatJSON
	case ".yaml", ".yml":
		return types.FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return types.FormatSQLite
	}
	return ""
}

func defaultOutput(dir, input string, format types.OutputFormat) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"."+string(format))
}

func writeBatch(b *batch.Batch, path string, format types.OutputFormat, lang section.Language) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if format == types.FormatXLSX {
		return sheet.WriteTable(path, projectsSheet, b.Columns(lang), sheet.StringRows(b.Rows()))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	switch format {
	case types.FormatJSON:
		err = b.WriteJSON(f, lang)
	case types.FormatYAML:
		err = b.WriteYAML(f, lang)
	default:
		err = fmt.Errorf("format %q cannot be written to a file", format)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// dbPath returns the --db flag when set and the configured store path
// otherwise.
func dbPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	return loadConfig().Store.Path
}

// sqlitePath returns the database written by --format sqlite. An --output
// names the database itself; giving a different --db as well is an error.
func sqlitePath(cmd *cobra.Command, format types.OutputFormat, output string) (string, error) {
	if format != types.FormatSQLite || output == "" {
		return dbPath(cmd), nil
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" && filepath.Clean(db) != filepath.Clean(output) {
		return "", fmt.Errorf("--output %s and --db %s name different databases", output, db)
	}
	return output, nil
}

func saveRun(ctx context.Context, path string, b *batch.Batch, pages int, w io.Writer) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.SaveRun(ctx, b, pages)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "stored %d projects from %s as run %s in %s\n", run.Projects, run.Source, run.ID, path)
	return nil
}

func printStats(w io.Writer, b *batch.Batch, lang section.Language) {
	cols := b.Columns(lang)
	filled := b.Filled()
	fmt.Fprintf(w, "\nTotal projects found: %d\n", len(b.Entries))
	for i, c := range cols {
		fmt.Fprintf(w, "  %s: %d non-empty values\n", c, filled[i])
	}
}
