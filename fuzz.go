// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build gofuzz

package relink

// FuzzPE is a go-fuzz entry point exercising the PE32 parser. It returns 1
// to bias the corpus toward inputs that parse, matching the teacher's
// convention of scoring a successful parse higher than a rejected one.
func FuzzPE(data []byte) int {
	pe, err := ParsePEImage(data, nil)
	if err != nil {
		return 0
	}
	pe.Close()
	return 1
}

// FuzzXBE is a go-fuzz entry point exercising the XBE parser.
func FuzzXBE(data []byte) int {
	xbe, err := ParseXbeImage(data, nil)
	if err != nil {
		return 0
	}
	xbe.Close()
	return 1
}
