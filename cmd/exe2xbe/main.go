// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command exe2xbe relinks a Win32 PE targeting the Xbox subsystem into an
// Xbox Executable (XBE).
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
		title        string
		mode         string
	)

	cmd := &cobra.Command{
		Use:   "exe2xbe <exefile>",
		Short: "Relink a PE targeting the Xbox subsystem into an XBE",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			if outPath == "" {
				outPath = relink.DeriveOutputFilename(inPath, ".exe", ".xbe")
			}

			m := relink.ModeRetail
			switch mode {
			case "", "retail":
			case "debug":
				m = relink.ModeDebug
			default:
				return fmt.Errorf("invalid mode %q, must be retail or debug", mode)
			}

			pe, err := relink.OpenPEImage(inPath, nil)
			if err != nil {
				return err
			}
			defer pe.Close()

			xbe, err := relink.TranslatePEToXbe(pe, &relink.PEToXbeOptions{
				Title:  title,
				Mode:   m,
				Logger: rlog.Default(),
			})
			if err != nil {
				return err
			}

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

			out, err := xbe.Emit()
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output XBE path (default: input with .xbe suffix)")
	cmd.Flags().StringVar(&dumpinfoPath, "dumpinfo", "", "write a human-readable XBE dump to this path")
	cmd.Flags().StringVar(&title, "title", "Untitled", "game title, truncated to 40 characters")
	cmd.Flags().StringVar(&mode, "mode", "retail", "XOR obfuscation mode: retail or debug")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "exe2xbe: %v\n", err)
		os.Exit(1)
	}
}
