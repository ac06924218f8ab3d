// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grantdata/internal/sheet"
	"github.com/pdiddy/grantdata/internal/vinnova"
)

const (
	defaultFrom = "2020-01-01"
	defaultTo   = "2026-12-31"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download open grant data from the Vinnova API",
	Long: `Fetch queries the Vinnova open data API (api.vinnova.se/gdp/v1). The API
key is read from --api-key, GRANTDATA_VINNOVA_API_KEY, the config file, or
.secrets/vinnova-api-key, in that order.

Results are written as timestamped JSON files. By default only a few
descriptive fields are kept, with long texts wrapped for reading; --all
keeps every field.`,
}

var fetchMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Fetch the API metadata document",
	Args:  cobra.NoArgs,
	RunE:  runFetchMetadata,
}

var fetchCallsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Fetch calls for proposals by opening date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetchItems(cmd, vinnova.KindCalls)
	},
}

var fetchActivitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Fetch financed activities by decision date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetchItems(cmd, vinnova.KindActivities)
	},
}

func init() {
	fetchCmd.PersistentFlags().String("api-key", "", "Vinnova API key")
	fetchCmd.PersistentFlags().String("output-dir", "", "directory for JSON dumps (default .)")
	fetchCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 10s)")
	viper.BindPFlag("vinnova.api_key", fetchCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("vinnova.output_dir", fetchCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("vinnova.timeout", fetchCmd.PersistentFlags().Lookup("timeout"))

	for _, c := range []*cobra.Command{fetchCallsCmd, fetchActivitiesCmd} {
		c.Flags().String("from", defaultFrom, "first date, YYYY-MM-DD")
		c.Flags().String("to", defaultTo, "last date, YYYY-MM-DD")
		c.Flags().Bool("all", false, "keep every field instead of the selected ones")
		c.Flags().Bool("excel", false, "also write the dump as a formatted workbook")
		c.Flags().Bool("sample", false, "print the first record")
	}

	fetchCmd.AddCommand(fetchMetadataCmd)
	fetchCmd.AddCommand(fetchCallsCmd)
	fetchCmd.AddCommand(fetchActivitiesCmd)

	rootCmd.AddCommand(fetchCmd)
}

func newVinnovaClient() (*vinnova.Client, string, error) {
	cfg := loadConfig().Vinnova
	c, err := vinnova.NewClient(cfg, logger)
	if err != nil {
		return nil, "", fmt.Errorf("%w: use --api-key, GRANTDATA_VINNOVA_API_KEY or .secrets/vinnova-api-key", err)
	}
	return c, cfg.OutputDir, nil
}

func runFetchMetadata(cmd *cobra.Command, args []string) error {
	client, dir, err := newVinnovaClient()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Fetching metadata from Vinnova API...")
	data, err := client.Metadata(cmd.Context())
	if err != nil {
		return err
	}

	if err := sheet.WriteJSON(out, data); err != nil {
		return err
	}
	path, err := vinnova.WriteDump(dir, vinnova.FileName(vinnova.KindMetadata, false, time.Now()), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nData has been saved to %s\n", path)
	return nil
}

func runFetchItems(cmd *cobra.Command, kind vinnova.Kind) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	all, _ := cmd.Flags().GetBool("all")
	excel, _ := cmd.Flags().GetBool("excel")
	sample, _ := cmd.Flags().GetBool("sample")

	client, dir, err := newVinnovaClient()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Fetching %s from %s to %s...\n", kindLabel(kind), from, to)
	items, err := fetchKind(cmd.Context(), client, kind, from, to)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(out, "No %s found for the specified date range.\n", kindLabel(kind))
		return nil
	}

	fmt.Fprintln(out)
	if err := vinnova.WriteSummary(out, items, vinnova.Summary(kind)); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal number of %s: %d\n", kindLabel(kind), len(items))

	width := viper.GetInt("vinnova.wrap_width")
	dump := vinnova.SelectFields(items, vinnova.Fields(kind), width)
	if all {
		dump = make([]vinnova.Item, len(items))
		for i, it := range items {
			dump[i] = vinnova.WrapText(it, width)
		}
	}

	path, err := vinnova.WriteDump(dir, vinnova.FileName(kind, !all, time.Now()), dump)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nData has been saved to %s\n", path)

	if sample {
		printSample(out, dump[0])
	}

	if excel {
		xlsx, n, err := sheet.JSONToExcel(path, "", sheetLabel(kind))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Excel file created: %s (%d rows)\n", xlsx, n)
	}
	return nil
}

func fetchKind(ctx context.Context, c *vinnova.Client, kind vinnova.Kind, from, to string) ([]vinnova.Item, error) {
	if kind == vinnova.KindActivities {
		return c.FinancedActivities(ctx, from, to)
	}
	return c.Calls(ctx, from, to)
}

func kindLabel(kind vinnova.Kind) string {
	if kind == vinnova.KindActivities {
		return "financed activities"
	}
	return "calls"
}

func sheetLabel(kind vinnova.Kind) string {
	if kind == vinnova.KindActivities {
		return "Vinnova Financed Activities"
	}
	return "Vinnova Calls"
}

func printSample(w io.Writer, it vinnova.Item) {
	fmt.Fprintln(w, "\nSample of extracted data (first record):")
	sheet.WriteJSON(w, it)
}
