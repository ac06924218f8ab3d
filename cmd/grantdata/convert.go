// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grantdata/internal/sheet"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert tables between Excel and JSON",
	Long: `Convert moves tabular data between Excel workbooks and JSON files.
Use a subcommand for the direction.`,
}

var excelToJSONCmd = &cobra.Command{
	Use:   "excel-to-json <workbook.xlsx>",
	Short: "Convert every sheet of a workbook to one JSON object",
	Long: `excel-to-json writes a JSON object that maps each sheet name to an array
of records keyed by the sheet's header row. Empty cells become null and
numeric cells become numbers. The output defaults to the input path with
a .json extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		out, err := sheet.ExcelToJSON(args[0], output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s\n", args[0], out)
		return nil
	},
}

var jsonToExcelCmd = &cobra.Command{
	Use:   "json-to-excel [file.json]",
	Short: "Convert a JSON array of objects to a formatted workbook",
	Long: `json-to-excel writes one formatted sheet with a column for every key
seen in the records, in first-seen order. Nested objects and arrays are
stored as JSON text.

Without an argument the most recent file matching --latest in --dir is
used, which picks up the newest dump from grantdata fetch calls.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJSONToExcel,
}

func init() {
	excelToJSONCmd.Flags().StringP("output", "o", "", "output JSON file (default: input with .json)")

	jsonToExcelCmd.Flags().StringP("output", "o", "", "output workbook (default: <input>_excel_<timestamp>.xlsx)")
	jsonToExcelCmd.Flags().String("sheet", "Vinnova Calls", "worksheet name")
	jsonToExcelCmd.Flags().String("latest", "vinnova_calls_selected_fields_", "file name prefix used when no input is given")
	jsonToExcelCmd.Flags().String("dir", ".", "directory searched for --latest")

	convertCmd.AddCommand(excelToJSONCmd)
	convertCmd.AddCommand(jsonToExcelCmd)

	rootCmd.AddCommand(convertCmd)
}

func runJSONToExcel(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	sheetName, _ := cmd.Flags().GetString("sheet")

	var in string
	if len(args) == 1 {
		in = args[0]
	} else {
		prefix, _ := cmd.Flags().GetString("latest")
		dir, _ := cmd.Flags().GetString("dir")
		latest, err := sheet.Latest(dir, prefix, ".json")
		if err != nil {
			return err
		}
		in = latest
		fmt.Fprintf(cmd.OutOrStdout(), "Found JSON file: %s\n", in)
	}

	out, n, err := sheet.JSONToExcel(in, output, sheetName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Excel file created: %s (%d rows)\n", out, n)
	return nil
}
