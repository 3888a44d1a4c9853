// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "testing"

func TestTitleNameRoundTrip(t *testing.T) {
	raw := encodeTitleName("Halo", nil)
	if got := decodeTitleName(raw); got != "Halo" {
		t.Errorf("decodeTitleName(encodeTitleName(%q)) = %q, want %q", "Halo", got, "Halo")
	}
}

func TestTitleNameTruncation(t *testing.T) {
	long := ""
	for i := 0; i < titleNameChars+10; i++ {
		long += "x"
	}
	raw := encodeTitleName(long, nil)
	got := decodeTitleName(raw)
	if len(got) != titleNameChars {
		t.Errorf("len(decoded) = %d, want %d", len(got), titleNameChars)
	}
}

func TestXbeCertificateRoundTrip(t *testing.T) {
	want := XbeCertificate{
		Size:         xbeCertificateSize,
		TimeDate:     0x5F000000,
		TitleID:      defaultTitleID,
		AllowedMedia: 0xFFFFFFFF,
		GameRegion:   0xFFFFFFFF,
		GameRatings:  0xFFFFFFFF,
		Version:      1,
	}
	want.TitleName = encodeTitleName("Test Game", nil)

	c := newCursor()
	if _, err := emitXbeCertificate(c, want); err != nil {
		t.Fatalf("emitXbeCertificate: %v", err)
	}

	v := newByteView(c.bytes())
	got, err := parseXbeCertificate(v, 0)
	if err != nil {
		t.Fatalf("parseXbeCertificate: %v", err)
	}
	if got != want {
		t.Errorf("parseXbeCertificate = %+v, want %+v", got, want)
	}
}
