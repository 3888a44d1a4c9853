// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command xbe2exe relinks an Xbox Executable (XBE) back into a Win32 PE
// targeting the Xbox subsystem.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openxdk/relink"
	"github.com/openxdk/relink/rlog"
)

func main() {
	var (
		outPath      string
		dumpinfoPath string
	)

	cmd := &cobra.Command{
		Use:   "xbe2exe <xbefile>",
		Short: "Relink an XBE back into a PE targeting the Xbox subsystem",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			if outPath == "" {
				outPath = relink.DeriveOutputFilename(inPath, ".xbe", ".exe")
			}

			xbe, err := relink.OpenXbeImage(inPath, &relink.XbeOptions{Logger: rlog.Default()})
			if err != nil {
				return err
			}
			defer xbe.Close()

			if dumpinfoPath != "" {
				f, err := os.Create(dumpinfoPath)
				if err != nil {
					rlog.Default().Warnf("dumpinfo: %v", err)
				} else {
					if err := relink.DumpXbeInfo(f, xbe); err != nil {
						rlog.Default().Warnf("dumpinfo: %v", err)
					}
					f.Close()
				}
			}

			pe, err := relink.TranslateXbeToPE(xbe, &relink.XbeToPEOptions{Logger: rlog.Default()})
			if err != nil {
				return err
			}
			defer pe.Close()

			out, err := pe.Emit()
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output PE path (default: input with .exe suffix)")
	cmd.Flags().StringVar(&dumpinfoPath, "dumpinfo", "", "write a human-readable XBE dump to this path")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "xbe2exe: %v\n", err)
		os.Exit(1)
	}
}
