// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grantdata/internal/section"
	"github.com/pdiddy/grantdata/internal/store"
	"github.com/pdiddy/grantdata/pkg/types"
)

var projectsCmd = &cobra.Command{
	Use:   "projects [search]",
	Short: "List and search stored projects",
	Long: `Projects queries the database filled by extract --format sqlite. The
optional search text matches titles, summaries and partner names.

With --format json, yaml or xlsx the matching projects are exported with
the same columns as a fresh extraction.`,
	RunE: runProjects,
}

var projectsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored extraction runs",
	Args:  cobra.NoArgs,
	RunE:  runProjectsRuns,
}

func init() {
	projectsCmd.PersistentFlags().String("db", "", "project database (default output/projects.db)")
	projectsCmd.Flags().String("run", "", "restrict to one run id")
	projectsCmd.Flags().Int("limit", 0, "maximum results (0 = all)")
	projectsCmd.Flags().String("format", "table", "output: table, json, yaml, or xlsx")
	projectsCmd.Flags().StringP("output", "o", "", "output file for --format xlsx (json and yaml default to stdout)")
	projectsCmd.Flags().String("lang", "sv", "column names: sv or en")

	projectsCmd.AddCommand(projectsRunsCmd)
	rootCmd.AddCommand(projectsCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	return store.Open(dbPath(cmd))
}

func runProjects(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	langFlag, _ := cmd.Flags().GetString("lang")

	lang, err := section.ParseLanguage(langFlag)
	if err != nil {
		return err
	}

	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := db.Projects(cmd.Context(), store.Query{
		RunID:  runID,
		Search: strings.Join(args, " "),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	b := store.Batch(projects)
	switch format {
	case "table", "":
		printProjects(out, projects)
		return nil
	case "json":
		if output != "" {
			return writeBatch(b, output, types.FormatJSON, lang)
		}
		return b.WriteJSON(out, lang)
	case "yaml":
		if output != "" {
			return writeBatch(b, output, types.FormatYAML, lang)
		}
		return b.WriteYAML(out, lang)
	case "xlsx":
		if output == "" {
			return fmt.Errorf("--format xlsx needs --output")
		}
		if err := writeBatch(b, output, types.FormatXLSX, lang); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %d projects to %s\n", len(projects), output)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, json, yaml, or xlsx", format)
	}
}

func printProjects(w io.Writer, projects []store.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-30s  %-20s  %-24s  %s\n",
		"#", "Title", "Coordinator", "Requested", "Source", "Page")
	fmt.Fprintln(w, strings.Repeat("-", 140))

	for i, p := range projects {
		fmt.Fprintf(w, "%-4d  %-50s  %-30s  %-20s  %-24s  %d\n",
			i+1,
			clip(p.Record.Get(section.Title), 50),
			clip(p.Record.Get(section.Coordinator), 30),
			clip(p.Record.Get(section.RequestedContribution), 20),
			clip(p.Source, 24),
			p.Page)
	}

	fmt.Fprintf(w, "\n%d projects\n", len(projects))
}

// clip shortens s to one line of at most n runes.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

func runProjectsRuns(cmd *cobra.Command, args []string) error {
	db, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-20s  %-30s  %5s  %8s\n", "Run", "Created", "Source", "Pages", "Projects")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-20s  %-30s  %5d  %8d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), clip(r.Source, 30), r.Pages, r.Projects)
	}
	return nil
}
