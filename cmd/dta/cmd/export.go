/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/export"
)

func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export rows as CSV or JSON",
		Long: `Decode FILE and write every row as CSV (with a header line) or JSON.
Missing values are empty CSV fields or JSON nulls.

Examples:
  dta export survey.dta > survey.csv
  dta export --format json --labels --dates --out survey.json survey.dta`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settingsFrom(cmd)
			formatName, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("out")
			labels, _ := cmd.Flags().GetBool("labels")
			dates, _ := cmd.Flags().GetBool("dates")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			ds, err := decodeFile(args[0], s.opts)
			if err != nil {
				return err
			}
			opts := export.Options{ApplyLabels: labels, Dates: dates}

			if outPath == "" || outPath == "-" {
				return export.Write(cmd.OutOrStdout(), ds, format, opts)
			}
			if err := writeFileAtomic(outPath, func(f *os.File) error {
				return export.Write(f, ds, format, opts)
			}); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			return nil
		},
	}

	exportCmd.Flags().StringP("format", "f", "csv", "Output format: csv or json")
	exportCmd.Flags().String("out", "", "Output file (default: stdout)")
	exportCmd.Flags().Bool("labels", false, "Replace labelled codes with their labels")
	exportCmd.Flags().Bool("dates", false, "Render date-formatted columns as YYYY-MM-DD")
	return exportCmd
}
