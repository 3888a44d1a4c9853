// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command xbedump prints a human-readable dump of an XBE's header and
// section table. It is read-only: it never re-emits the image.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openxdk/relink"
	"github.com/openxdk/relink/rlog"
)

func main() {
	var outPath string

	cmd := &cobra.Command{
		Use:   "xbedump <xbefile>",
		Short: "Dump an XBE's header and section table",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			xbe, err := relink.OpenXbeImage(args[0], &relink.XbeOptions{Logger: rlog.Default()})
			if err != nil {
				return err
			}
			defer xbe.Close()

			w := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				return relink.DumpXbeInfo(f, xbe)
			}
			return relink.DumpXbeInfo(w, xbe)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the dump to this path instead of stdout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "xbedump: %v\n", err)
		os.Exit(1)
	}
}
