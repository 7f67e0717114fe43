/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/export"
)

func newLabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels FILE",
		Short: "Print value label tables",
		Long: `Print every value label table in FILE with codes in table order.

Example:
  dta labels survey.dta`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settingsFrom(cmd)
			ds, err := decodeFile(args[0], s.opts)
			if err != nil {
				return err
			}

			tables := make([]export.LabelTableSummary, 0, len(ds.LabelTables))
			for _, t := range ds.LabelTables {
				tables = append(tables, export.SummarizeLabelTable(t))
			}
			if s.output == "json" {
				return writeJSON(cmd.OutOrStdout(), tables)
			}
			writeLabelTables(cmd.OutOrStdout(), tables)
			return nil
		},
	}
}
