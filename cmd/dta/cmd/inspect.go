/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/export"
	"golang.org/x/sync/errgroup"
)

// inspected is one file's summary as printed by inspect
type inspected struct {
	File string `json:"file"`
	*export.Summary
}

func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Show header, variables and label tables",
		Long: `Decode one or more files and print their header fields, variable
descriptors and value label tables. Files are decoded in parallel.

Examples:
  dta inspect survey.dta
  dta inspect --jobs 4 --output json data/*.dta`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settingsFrom(cmd)
			jobs, _ := cmd.Flags().GetInt("jobs")
			if jobs <= 0 {
				jobs = runtime.GOMAXPROCS(0)
			}

			results := make([]inspected, len(args))
			g, _ := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for i, path := range args {
				g.Go(func() error {
					ds, err := decodeFile(path, s.opts)
					if err != nil {
						return err
					}
					results[i] = inspected{File: path, Summary: export.Summarize(ds)}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if s.output == "json" {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			for i, r := range results {
				if i > 0 {
					cmd.Println()
				}
				writeSummaryTable(cmd.OutOrStdout(), r.File, r.Summary)
			}
			return nil
		},
	}

	inspectCmd.Flags().IntP("jobs", "j", 0, "Files decoded in parallel (default: number of CPUs)")
	return inspectCmd
}
