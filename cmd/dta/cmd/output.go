/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ssargent/dtafile/pkg/export"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSummaryTable prints the header block, then one line per variable
func writeSummaryTable(out io.Writer, file string, s *export.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "File:\t%s\n", file)
	fmt.Fprintf(w, "Version:\t%s (%s)\n", s.Version, s.ByteOrder)
	if s.Label != "" {
		fmt.Fprintf(w, "Label:\t%s\n", s.Label)
	}
	if s.Timestamp != "" {
		fmt.Fprintf(w, "Created:\t%s\n", s.Timestamp)
	}
	fmt.Fprintf(w, "Observations:\t%d\n", s.Rows)
	fmt.Fprintf(w, "Variables:\t%d\n", s.Variables)
	fmt.Fprintf(w, "Label tables:\t%d\n", len(s.LabelTables))
	fmt.Fprintln(w)

	if len(s.Columns) == 0 {
		return
	}
	fmt.Fprintln(w, "NAME\tTYPE\tFORMAT\tVALUE LABEL\tMISSING\tLABEL")
	for _, c := range s.Columns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", c.Name, c.Type, c.Format, c.ValueLabel, c.Missing, c.Label)
	}
}

// writeLabelTables prints one line per code
func writeLabelTables(out io.Writer, tables []export.LabelTableSummary) {
	if len(tables) == 0 {
		fmt.Fprintln(out, "No value labels found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TABLE\tCODE\tLABEL")
	for _, t := range tables {
		for _, l := range t.Labels {
			fmt.Fprintf(w, "%s\t%d\t%s\n", t.Name, l.Code, l.Label)
		}
	}
}
