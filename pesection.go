// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// sectionHeaderSize is sizeof(IMAGE_SECTION_HEADER): 40 bytes, no padding.
const sectionHeaderSize = 40

// SectionHeader is IMAGE_SECTION_HEADER. The section table is an array of
// these, one per section, immediately following the optional header.
type SectionHeader struct {
	// Name is an 8-byte, null-padded ASCII name. This engine never emits or
	// expects the "/nnn" string-table-offset form object files use.
	Name [8]byte

	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLineNumbers uint32
	NumberOfRelocations  uint16
	NumberOfLineNumbers  uint16
	Characteristics      uint32
}

// sectionName returns h.Name as a Go string, trimmed at the first null.
func (h SectionHeader) sectionName() string {
	n := 0
	for n < len(h.Name) && h.Name[n] != 0 {
		n++
	}
	return string(h.Name[:n])
}

// setSectionName copies name into h.Name, truncating to 8 bytes. Names
// longer than 8 characters are a linker convention this engine does not
// need to reproduce; §4 scopes it to the sections Cxbe/Cexe themselves
// emit, which are always short (.text, .data, .rdata, .bss, .tls and the
// XBE-specific section names carried through unchanged).
func setSectionName(h *SectionHeader, name string) {
	for i := range h.Name {
		h.Name[i] = 0
	}
	copy(h.Name[:], name)
}

// parseSectionTable reads count consecutive SectionHeader entries starting
// at offset.
func parseSectionTable(v *byteView, offset uint32, count uint16) ([]SectionHeader, error) {
	sections := make([]SectionHeader, count)
	for i := range sections {
		off := offset + uint32(i)*sectionHeaderSize
		if err := v.structUnpack(&sections[i], off, sectionHeaderSize); err != nil {
			return nil, err
		}
	}
	return sections, nil
}

// emitSectionTable appends the section table to c.
func emitSectionTable(c *cursor, sections []SectionHeader) error {
	for i := range sections {
		if _, err := c.writeStruct(&sections[i]); err != nil {
			return err
		}
	}
	return nil
}

// rvaInSection reports whether rva falls within h's virtual range.
func rvaInSection(h SectionHeader, rva uint32) bool {
	size := h.VirtualSize
	if size == 0 {
		size = h.SizeOfRawData
	}
	return rva >= h.VirtualAddress && rva < h.VirtualAddress+size
}

// fileOffsetInSection maps an RVA known to satisfy rvaInSection(h, rva) to
// a file offset. A hole in the raw data (VirtualSize > SizeOfRawData, the
// zero-padded tail of a .bss-like section) has no backing file offset and
// returns false.
func fileOffsetInSection(h SectionHeader, rva uint32) (uint32, bool) {
	delta := rva - h.VirtualAddress
	if delta >= h.SizeOfRawData {
		return 0, false
	}
	return h.PointerToRawData + delta, true
}
