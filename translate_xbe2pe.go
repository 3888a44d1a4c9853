// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"github.com/openxdk/relink/rlog"
)

// XbeToPEOptions configures an XBE->PE translation.
type XbeToPEOptions struct {
	Logger *rlog.Helper
}

func (o *XbeToPEOptions) logger() *rlog.Helper {
	if o == nil || o.Logger == nil {
		return rlog.Default()
	}
	return o.Logger
}

// TranslateXbeToPE builds a PEImage from a loaded XbeImage, per §4.5.2.
func TranslateXbeToPE(xbe *XbeImage, opts *XbeToPEOptions) (*PEImage, error) {
	log := opts.logger()

	h := xbe.Header
	pe := &PEImage{logger: log}

	pe.COFF = COFFHeader{
		Machine:              ImageFileMachineI386,
		NumberOfSections:     uint16(len(xbe.Sections)),
		SizeOfOptionalHeader: optionalHeader32Size,
		Characteristics:      ImageFileXboxCharacteristics,
	}

	entry := h.decodedEntryAddr(xbe.Mode)

	opt := OptionalHeader32{
		Magic:                       ImageNtOptionalHeader32Magic,
		MajorLinkerVersion:          7,
		MinorLinkerVersion:          10,
		MajorOperatingSystemVersion: 5,
		MajorImageVersion:           5,
		MajorSubsystemVersion:       1,
		ImageBase:                   h.PeBaseAddr,
		AddressOfEntryPoint:         entry - h.PeBaseAddr,
		SectionAlignment:            0x1000,
		FileAlignment:               0x200,
		SizeOfImage:                 h.PeSizeofImage,
		SizeOfHeaders:               0x400,
		CheckSum:                    h.PeChecksum,
		Subsystem:                   ImageSubsystemXBOX,
		SizeOfStackCommit:           h.PeStackCommit,
		SizeOfStackReserve:          h.PeStackCommit,
		SizeOfHeapReserve:           h.PeHeapReserve,
		SizeOfHeapCommit:            h.PeHeapCommit,
		NumberOfRvaAndSizes:         ImageNumberOfDirectoryEntries,
	}

	pe.Sections = make([]SectionHeader, len(xbe.Sections))
	sectionData := make([][]byte, len(xbe.Sections))

	rawOffset := AlignUp(opt.SizeOfHeaders, opt.FileAlignment)
	var sizeOfCode, sizeOfInitData uint32

	for i, s := range xbe.Sections {
		rawSize := AlignUp(uint32(len(s.Data)), opt.FileAlignment)
		padded := make([]byte, rawSize)
		copy(padded, s.Data)
		sectionData[i] = padded

		var characteristics uint32
		switch {
		case s.Header.executable():
			characteristics = ImageScnMemExecute | ImageScnCntCode
			sizeOfCode += rawSize
		case s.Header.writable():
			characteristics = ImageScnMemWrite | ImageScnCntInitializedData
			sizeOfInitData += rawSize
		default:
			characteristics = ImageScnMemRead | ImageScnCntInitializedData
			sizeOfInitData += rawSize
		}

		var name [8]byte
		copy(name[:], s.Name)

		pe.Sections[i] = SectionHeader{
			Name:             name,
			VirtualSize:      s.Header.VirtualSize,
			VirtualAddress:   s.Header.VirtualAddr - h.PeBaseAddr,
			SizeOfRawData:    rawSize,
			PointerToRawData: rawOffset,
			Characteristics:  characteristics,
		}

		if s.Name == ".text" {
			opt.BaseOfCode = pe.Sections[i].VirtualAddress
		}
		if s.Name == ".data" {
			opt.BaseOfData = pe.Sections[i].VirtualAddress
		}

		rawOffset = AlignUp(rawOffset+rawSize, opt.FileAlignment)
	}
	opt.SizeOfCode = sizeOfCode
	opt.SizeOfInitializedData = sizeOfInitData

	if xbe.TLS != nil {
		for i, s := range xbe.Sections {
			if s.Name == tlsSectionName {
				opt.DataDirectory[ImageDirectoryEntryTLS] = DataDirectory{
					VirtualAddress: pe.Sections[i].VirtualAddress,
					Size:           pe.Sections[i].VirtualSize,
				}
				break
			}
		}
		tls := *xbe.TLS
		pe.TLS = &tls
	}

	pe.OptionalHeader = opt

	raw, err := assemblePEFromSections(pe, sectionData)
	if err != nil {
		return nil, err
	}
	pe.data = raw
	pe.sectionData = sectionData

	if len(xbe.KernelThunk) > 0 {
		pe.KernelImports = append([]uint32(nil), xbe.KernelThunk...)
	}

	return pe, nil
}

// assemblePEFromSections emits pe's current header/section-table state and
// appends sectionData, returning the bytes for the caller to store as
// pe.data. It does not reparse the result.
func assemblePEFromSections(pe *PEImage, sectionData [][]byte) ([]byte, error) {
	c := newCursor()
	c.write(canonicalDOSStub[:])
	if err := emitCOFFAndOptionalHeader(c, pe.COFF, pe.OptionalHeader); err != nil {
		return nil, err
	}
	if err := emitSectionTable(c, pe.Sections); err != nil {
		return nil, err
	}
	c.padToOffset(pe.OptionalHeader.SizeOfHeaders)

	for i, s := range pe.Sections {
		c.padToOffset(s.PointerToRawData)
		c.write(sectionData[i])
	}
	return c.bytes(), nil
}
