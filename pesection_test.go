// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "testing"

func TestSectionNameRoundTrip(t *testing.T) {
	var h SectionHeader
	setSectionName(&h, ".text")
	if got := h.sectionName(); got != ".text" {
		t.Errorf("sectionName() = %q, want %q", got, ".text")
	}

	// A full 8-character name has no trailing NUL to trim on.
	setSectionName(&h, ".rdata12")
	if got := h.sectionName(); got != ".rdata12" {
		t.Errorf("sectionName() = %q, want %q", got, ".rdata12")
	}

	// Re-setting to a shorter name must clear the old tail.
	setSectionName(&h, ".bss")
	if got := h.sectionName(); got != ".bss" {
		t.Errorf("sectionName() = %q, want %q", got, ".bss")
	}
}

func TestRvaInSection(t *testing.T) {
	h := SectionHeader{VirtualAddress: 0x1000, VirtualSize: 0x500, SizeOfRawData: 0x200}
	tests := []struct {
		rva  uint32
		want bool
	}{
		{0x0FFF, false},
		{0x1000, true},
		{0x14FF, true},
		{0x1500, false},
	}
	for _, tt := range tests {
		if got := rvaInSection(h, tt.rva); got != tt.want {
			t.Errorf("rvaInSection(%#x) = %v, want %v", tt.rva, got, tt.want)
		}
	}
}

func TestFileOffsetInSection(t *testing.T) {
	h := SectionHeader{
		VirtualAddress:   0x1000,
		VirtualSize:      0x500,
		SizeOfRawData:    0x200,
		PointerToRawData: 0x400,
	}

	off, ok := fileOffsetInSection(h, 0x1010)
	if !ok || off != 0x410 {
		t.Errorf("fileOffsetInSection(0x1010) = %#x, %v, want 0x410, true", off, ok)
	}

	// Beyond SizeOfRawData but still within VirtualSize: the zero-padded
	// tail with no backing file offset.
	if _, ok := fileOffsetInSection(h, 0x1300); ok {
		t.Errorf("fileOffsetInSection(0x1300) ok = true, want false (unbacked tail)")
	}
}

func TestSectionTableRoundTrip(t *testing.T) {
	want := []SectionHeader{
		{VirtualSize: 0x100, VirtualAddress: 0x1000, SizeOfRawData: 0x200, PointerToRawData: 0x400},
		{VirtualSize: 0x50, VirtualAddress: 0x2000, SizeOfRawData: 0x200, PointerToRawData: 0x600},
	}
	setSectionName(&want[0], ".text")
	setSectionName(&want[1], ".data")

	c := newCursor()
	if err := emitSectionTable(c, want); err != nil {
		t.Fatalf("emitSectionTable: %v", err)
	}

	v := newByteView(c.bytes())
	got, err := parseSectionTable(v, 0, uint16(len(want)))
	if err != nil {
		t.Fatalf("parseSectionTable: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
