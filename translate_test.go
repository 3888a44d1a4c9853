// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"bytes"
	"testing"
)

// buildMinimalPE assembles a tiny, well-formed Xbox-subsystem PE32: two
// sections, no directories besides what the caller fills in, file alignment
// equal to section alignment so it also qualifies as a DXT candidate.
func buildMinimalPE(t *testing.T, entryRVA uint32) []byte {
	t.Helper()

	coff := COFFHeader{
		Machine:              ImageFileMachineI386,
		NumberOfSections:     2,
		SizeOfOptionalHeader: optionalHeader32Size,
		Characteristics:      ImageFileXboxCharacteristics,
	}
	opt := OptionalHeader32{
		Magic:               ImageNtOptionalHeader32Magic,
		MajorLinkerVersion:  7,
		MinorLinkerVersion:  10,
		AddressOfEntryPoint: entryRVA,
		ImageBase:           0x00010000,
		SectionAlignment:    0x200,
		FileAlignment:       0x200,
		SizeOfImage:         0x600,
		SizeOfHeaders:       0x200,
		Subsystem:           ImageSubsystemXBOX,
		SizeOfStackReserve:  0x40000,
		SizeOfStackCommit:   0x2000,
		SizeOfHeapReserve:   0x100000,
		SizeOfHeapCommit:    0x1000,
		NumberOfRvaAndSizes: ImageNumberOfDirectoryEntries,
	}

	var text, data SectionHeader
	setSectionName(&text, ".text")
	text.VirtualAddress = 0x200
	text.VirtualSize = 0x20
	text.SizeOfRawData = 0x200
	text.PointerToRawData = 0x200
	text.Characteristics = ImageScnMemExecute | ImageScnCntCode

	setSectionName(&data, ".data")
	data.VirtualAddress = 0x400
	data.VirtualSize = 0x10
	data.SizeOfRawData = 0x200
	data.PointerToRawData = 0x400
	data.Characteristics = ImageScnMemWrite | ImageScnCntInitializedData

	sections := []SectionHeader{text, data}

	c := newCursor()
	c.write(canonicalDOSStub[:])
	if err := emitCOFFAndOptionalHeader(c, coff, opt); err != nil {
		t.Fatalf("emitCOFFAndOptionalHeader: %v", err)
	}
	if err := emitSectionTable(c, sections); err != nil {
		t.Fatalf("emitSectionTable: %v", err)
	}
	c.padToOffset(opt.SizeOfHeaders)

	textBytes := make([]byte, text.SizeOfRawData)
	textBytes[0] = 0xCC
	c.padToOffset(text.PointerToRawData)
	c.write(textBytes)

	dataBytes := make([]byte, data.SizeOfRawData)
	dataBytes[0] = 0x2A
	c.padToOffset(data.PointerToRawData)
	c.write(dataBytes)

	return c.bytes()
}

func TestPEImageParseEmitRoundTrip(t *testing.T) {
	raw := buildMinimalPE(t, 0x200)
	pe, err := ParsePEImage(raw, nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}
	if len(pe.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(pe.Sections))
	}
	if pe.Sections[0].sectionName() != ".text" {
		t.Errorf("Sections[0] name = %q, want .text", pe.Sections[0].sectionName())
	}

	out, err := pe.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !bytes.Equal(raw, out) {
		t.Errorf("round-tripped bytes differ from input, len(raw)=%d len(out)=%d", len(raw), len(out))
	}
}

// TestTranslatePEToXbe covers scenario S1: a minimal PE relinks into an XBE
// whose entry point and section layout are recoverable.
func TestTranslatePEToXbe(t *testing.T) {
	raw := buildMinimalPE(t, 0x200)
	pe, err := ParsePEImage(raw, nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}

	xbe, err := TranslatePEToXbe(pe, &PEToXbeOptions{Title: "Test Game", Mode: ModeRetail})
	if err != nil {
		t.Fatalf("TranslatePEToXbe: %v", err)
	}

	wantEntryVA := pe.OptionalHeader.AddressOfEntryPoint + pe.OptionalHeader.ImageBase
	if got := xbe.Header.decodedEntryAddr(ModeRetail); got != wantEntryVA {
		t.Errorf("decoded entry = %#x, want %#x", got, wantEntryVA)
	}
	if len(xbe.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(xbe.Sections))
	}
	if !xbe.Sections[0].Header.executable() {
		t.Error(".text section should carry XbeSectionExecutable")
	}
	if !xbe.Sections[1].Header.writable() {
		t.Error(".data section should carry XbeSectionWritable")
	}
	if decodeTitleName(xbe.Certificate.TitleName) != "Test Game" {
		t.Errorf("certificate title = %q, want %q", decodeTitleName(xbe.Certificate.TitleName), "Test Game")
	}
	if len(xbe.LogoBitmap) != defaultLogoBitmapSize {
		t.Errorf("len(LogoBitmap) = %d, want %d", len(xbe.LogoBitmap), defaultLogoBitmapSize)
	}

	out, err := xbe.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	reparsed, err := ParseXbeImage(out, nil)
	if err != nil {
		t.Fatalf("ParseXbeImage(emitted bytes): %v", err)
	}
	if reparsed.Mode != ModeRetail {
		t.Errorf("reparsed Mode = %v, want retail", reparsed.Mode)
	}
	if got := reparsed.Header.decodedEntryAddr(reparsed.Mode); got != wantEntryVA {
		t.Errorf("reparsed decoded entry = %#x, want %#x", got, wantEntryVA)
	}
	for i, s := range reparsed.Sections {
		if !bytes.Equal(s.Data, xbe.Sections[i].Data) {
			t.Errorf("section %d data mismatch after round trip", i)
		}
	}
	if errs := reparsed.verifyDigests(); len(errs) != 0 {
		t.Errorf("verifyDigests() = %v, want no errors", errs)
	}
}

// TestTranslateXbeToPE covers scenario S2: translating that XBE back to a PE
// recovers an entry point matching the original.
func TestTranslateXbeToPE(t *testing.T) {
	raw := buildMinimalPE(t, 0x200)
	pe, err := ParsePEImage(raw, nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}
	wantEntryVA := pe.OptionalHeader.AddressOfEntryPoint + pe.OptionalHeader.ImageBase

	xbe, err := TranslatePEToXbe(pe, &PEToXbeOptions{Title: "RT", Mode: ModeRetail})
	if err != nil {
		t.Fatalf("TranslatePEToXbe: %v", err)
	}

	pe2, err := TranslateXbeToPE(xbe, nil)
	if err != nil {
		t.Fatalf("TranslateXbeToPE: %v", err)
	}

	gotEntryVA := pe2.OptionalHeader.AddressOfEntryPoint + pe2.OptionalHeader.ImageBase
	if gotEntryVA != wantEntryVA {
		t.Errorf("recovered entry VA = %#x, want %#x", gotEntryVA, wantEntryVA)
	}
	if len(pe2.Sections) != len(xbe.Sections) {
		t.Fatalf("len(Sections) = %d, want %d", len(pe2.Sections), len(xbe.Sections))
	}
	if pe2.OptionalHeader.Subsystem != ImageSubsystemXBOX {
		t.Errorf("Subsystem = %d, want %d", pe2.OptionalHeader.Subsystem, ImageSubsystemXBOX)
	}

	out, err := pe2.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	reparsed, err := ParsePEImage(out, nil)
	if err != nil {
		t.Fatalf("ParsePEImage(emitted bytes): %v", err)
	}
	if reparsed.OptionalHeader.AddressOfEntryPoint != pe2.OptionalHeader.AddressOfEntryPoint {
		t.Errorf("reparsed entry RVA mismatch")
	}
}

// TestTranslatePEToDXTSuccess covers scenario S4: file_alignment ==
// section_alignment succeeds and forces raw==virtual per section.
func TestTranslatePEToDXTSuccess(t *testing.T) {
	raw := buildMinimalPE(t, 0x200) // built with FileAlignment == SectionAlignment == 0x200
	pe, err := ParsePEImage(raw, nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}

	if err := TranslatePEToDXT(pe); err != nil {
		t.Fatalf("TranslatePEToDXT: %v", err)
	}
	for _, s := range pe.Sections {
		if s.PointerToRawData != s.VirtualAddress {
			t.Errorf("section %s: PointerToRawData=%#x VirtualAddress=%#x, want equal",
				s.sectionName(), s.PointerToRawData, s.VirtualAddress)
		}
	}
	if pe.OptionalHeader.Subsystem != ImageSubsystemXBOX {
		t.Errorf("Subsystem = %d, want %d", pe.OptionalHeader.Subsystem, ImageSubsystemXBOX)
	}
}

// TestTranslatePEToDXTRelocatesBytes covers scenario S4's "raw_address =
// virtual_address" rewrite on a fixture whose raw and virtual addresses
// genuinely differ going in, so the section content has to move: DXT must
// still find each section's real bytes after PointerToRawData is
// overwritten to equal VirtualAddress.
func TestTranslatePEToDXTRelocatesBytes(t *testing.T) {
	coff := COFFHeader{
		Machine:              ImageFileMachineI386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: optionalHeader32Size,
		Characteristics:      ImageFileXboxCharacteristics,
	}
	opt := OptionalHeader32{
		Magic:               ImageNtOptionalHeader32Magic,
		ImageBase:           0x00010000,
		SectionAlignment:    0x1000,
		FileAlignment:       0x1000,
		SizeOfHeaders:       0x1000,
		Subsystem:           ImageSubsystemXBOX,
		NumberOfRvaAndSizes: ImageNumberOfDirectoryEntries,
	}

	var text SectionHeader
	setSectionName(&text, ".text")
	text.VirtualAddress = 0x3000
	text.VirtualSize = 0x20
	text.SizeOfRawData = 0x1000
	text.PointerToRawData = 0x1000 // deliberately not equal to VirtualAddress
	text.Characteristics = ImageScnMemExecute | ImageScnCntCode

	c := newCursor()
	c.write(canonicalDOSStub[:])
	if err := emitCOFFAndOptionalHeader(c, coff, opt); err != nil {
		t.Fatalf("emitCOFFAndOptionalHeader: %v", err)
	}
	if err := emitSectionTable(c, []SectionHeader{text}); err != nil {
		t.Fatalf("emitSectionTable: %v", err)
	}
	c.padToOffset(opt.SizeOfHeaders)

	textBytes := make([]byte, text.SizeOfRawData)
	textBytes[0] = 0xAB
	textBytes[1] = 0xCD
	c.padToOffset(text.PointerToRawData)
	c.write(textBytes)

	pe, err := ParsePEImage(c.bytes(), nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}

	if err := TranslatePEToDXT(pe); err != nil {
		t.Fatalf("TranslatePEToDXT: %v", err)
	}
	if pe.Sections[0].PointerToRawData != 0x3000 {
		t.Fatalf("PointerToRawData = %#x, want %#x (VirtualAddress)", pe.Sections[0].PointerToRawData, 0x3000)
	}

	out, err := pe.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	got := out[0x3000 : 0x3000+2]
	if got[0] != 0xAB || got[1] != 0xCD {
		t.Errorf("bytes at new PointerToRawData = %#x, want [0xAB 0xCD] (section content must follow the section, not stay at the old file offset)", got)
	}
}

// TestTranslatePEToDXTAlignmentMismatch covers scenario S3: distinct
// file/section alignment is rejected with AlignmentMismatch.
func TestTranslatePEToDXTAlignmentMismatch(t *testing.T) {
	raw := buildMinimalPE(t, 0x200)
	pe, err := ParsePEImage(raw, nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}
	pe.OptionalHeader.SectionAlignment = 0x1000 // now differs from FileAlignment

	err = TranslatePEToDXT(pe)
	if err == nil {
		t.Fatal("TranslatePEToDXT succeeded, want AlignmentMismatch error")
	}
	fe, ok := err.(*FormatError)
	if !ok {
		t.Fatalf("err type = %T, want *FormatError", err)
	}
	if fe.Kind != AlignmentMismatch {
		t.Errorf("Kind = %v, want AlignmentMismatch", fe.Kind)
	}
}

func TestTranslatePEToXbeDebugMode(t *testing.T) {
	raw := buildMinimalPE(t, 0x200)
	pe, err := ParsePEImage(raw, nil)
	if err != nil {
		t.Fatalf("ParsePEImage: %v", err)
	}

	xbe, err := TranslatePEToXbe(pe, &PEToXbeOptions{Title: "Debug", Mode: ModeDebug})
	if err != nil {
		t.Fatalf("TranslatePEToXbe: %v", err)
	}

	out, err := xbe.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	reparsed, err := ParseXbeImage(out, nil)
	if err != nil {
		t.Fatalf("ParseXbeImage: %v", err)
	}
	if reparsed.Mode != ModeDebug {
		t.Errorf("reparsed Mode = %v, want debug", reparsed.Mode)
	}
}
