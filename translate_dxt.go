// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// TranslatePEToDXT applies §4.5.3's DXT post-processing pass to an
// already-loaded PE: it rewrites a subset of optional-header fields and
// forces raw_address == virtual_address for every section (invariant 4),
// the debug monitor's single-flat-image loading requirement.
func TranslatePEToDXT(pe *PEImage) error {
	opt := &pe.OptionalHeader

	if opt.FileAlignment != opt.SectionAlignment {
		return newFormatError(AlignmentMismatch,
			"DXT requires file_alignment == section_alignment")
	}

	opt.Subsystem = ImageSubsystemXBOX
	opt.MajorLinkerVersion = 7
	opt.MinorLinkerVersion = 10
	opt.MajorOperatingSystemVersion = 5
	opt.MinorOperatingSystemVersion = 0
	opt.MajorImageVersion = 5
	opt.MinorImageVersion = 0
	opt.DllCharacteristics = 0
	opt.SizeOfStackCommit = opt.SizeOfStackReserve

	var firstDataRaw uint32
	for i := range pe.Sections {
		s := &pe.Sections[i]
		s.PointerToRawData = s.VirtualAddress
		if firstDataRaw == 0 && s.sectionName() == ".data" {
			firstDataRaw = s.PointerToRawData
		}
	}
	opt.BaseOfData = firstDataRaw

	return nil
}
