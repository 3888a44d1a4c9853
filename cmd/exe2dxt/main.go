// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command exe2dxt produces a DXT (debug-monitor loadable image) variant of
// a PE targeting the Xbox subsystem.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openxdk/relink"
)

func main() {
	var outPath string

	cmd := &cobra.Command{
		Use:   "exe2dxt <exefile>",
		Short: "Produce a DXT debug-monitor loadable image from a PE",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			if outPath == "" {
				outPath = relink.DeriveOutputFilename(inPath, ".exe", ".dxt")
			}

			pe, err := relink.OpenPEImage(inPath, nil)
			if err != nil {
				return err
			}
			defer pe.Close()

			if err := relink.TranslatePEToDXT(pe); err != nil {
				return err
			}

			out, err := pe.Emit()
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output DXT path (default: input with .dxt suffix)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "exe2dxt: %v\n", err)
		os.Exit(1)
	}
}
