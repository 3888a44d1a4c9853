// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "strings"

// DeriveOutputFilename replaces inputSuffix at the end of name with
// outputSuffix, matching Cxbe/Cdxt's GenerateFilename: when the CLI isn't
// given an explicit OUT path, the output name is the input name with its
// suffix swapped (".exe"<->".xbe"<->".dxt"). If name doesn't end in
// inputSuffix, outputSuffix is simply appended.
func DeriveOutputFilename(name, inputSuffix, outputSuffix string) string {
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(inputSuffix)) {
		return name[:len(name)-len(inputSuffix)] + outputSuffix
	}
	return name + outputSuffix
}
