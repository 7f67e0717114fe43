/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/dta"
)

func newConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Re-encode a file as generation 6, 7 or 8",
		Long: `Decode IN and write it to OUT in the target generation. Value label
codes are renumbered 1..N in table order on output.

Examples:
  dta convert old.dta new.dta
  dta convert --version 6 survey.dta survey-v6.dta`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settingsFrom(cmd)
			in, out := args[0], args[1]

			target := s.cfg.Codec.TargetVersion
			if cmd.Flags().Changed("version") {
				target, _ = cmd.Flags().GetString("version")
			}
			version, err := dta.ParseVersion(target)
			if err != nil {
				return err
			}
			if !version.Writable() {
				return fmt.Errorf("cannot write version %s, use 6, 7 or 8", version)
			}

			ds, err := decodeFile(in, s.opts)
			if err != nil {
				return err
			}

			opts := s.opts
			if stamp, _ := cmd.Flags().GetBool("timestamp"); stamp {
				opts = append(opts, dta.WithTimestamp(time.Now()))
			}
			if err := writeFileAtomic(out, func(f *os.File) error {
				return dta.Encode(f, ds, version, nil, opts...)
			}); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			s.logger.Info("converted", "in", in, "out", out, "from", ds.Version.String(), "to", version.String())
			cmd.Printf("Wrote %s as version %s: %d variables, %d observations\n", out, version, len(ds.Columns), ds.Rows)
			return nil
		},
	}

	convertCmd.Flags().String("version", "8", "Target generation: 6, 7 or 8 (default from config)")
	convertCmd.Flags().Bool("timestamp", false, "Stamp the output with the current time")
	return convertCmd
}

// writeFileAtomic writes through a temporary file in the target directory
// and renames it into place on success
func writeFileAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dta-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
