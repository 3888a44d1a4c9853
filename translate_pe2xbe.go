// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"github.com/openxdk/relink/rlog"
)

// tlsSectionName is the name this engine recognizes as the
// TLS-bearing section when wiring the PE's TLS data directory.
const tlsSectionName = ".tls"

// PEToXbeOptions configures a PE->XBE translation.
type PEToXbeOptions struct {
	// Title is the game title stamped on the certificate, truncated to 40
	// characters with a warning (spec §4.5.1).
	Title string

	Mode Mode

	// LogoBitmap overrides the built-in OpenXDK logo when non-nil.
	LogoBitmap []byte

	Logger *rlog.Helper
}

func (o *PEToXbeOptions) logger() *rlog.Helper {
	if o == nil || o.Logger == nil {
		return rlog.Default()
	}
	return o.Logger
}

// TranslatePEToXbe builds an XbeImage from a loaded PEImage, per §4.5.1.
func TranslatePEToXbe(pe *PEImage, opts *PEToXbeOptions) (*XbeImage, error) {
	if opts == nil {
		opts = &PEToXbeOptions{}
	}
	log := opts.logger()

	xbe := &XbeImage{Mode: opts.Mode, logger: log}

	h := Header{
		Magic:             XbeMagic,
		BaseAddr:          DefaultXbeBaseAddr,
		SizeOfImageHeader: xbeHeaderSize,
		TimeDate:          pe.COFF.TimeDateStamp,
		PeBaseAddr:        pe.OptionalHeader.ImageBase,
		PeSizeofImage:     pe.OptionalHeader.SizeOfImage,
		PeChecksum:        pe.OptionalHeader.CheckSum,
		PeTimeDate:        pe.COFF.TimeDateStamp,
		PeStackCommit:     pe.OptionalHeader.SizeOfStackCommit,
		PeHeapReserve:     pe.OptionalHeader.SizeOfHeapReserve,
		PeHeapCommit:      pe.OptionalHeader.SizeOfHeapCommit,
		Sections:          uint32(len(pe.Sections)),
	}
	entryVA := pe.OptionalHeader.AddressOfEntryPoint + pe.OptionalHeader.ImageBase
	h.EntryAddr = entryVA ^ xorEP(opts.Mode)

	xbe.Certificate = buildXbeCertificate(opts.Title, log)
	xbe.Libraries = []LibraryVersion{
		newLibraryVersion(kernelLibraryName, 5, 1, 1, 0, false),
		newLibraryVersion(xapiLibraryName, 5, 1, 1, 0, false),
		newLibraryVersion(openxdkLibraryName, 5, 1, 1, 0, false),
	}
	h.LibraryVersions = uint32(len(xbe.Libraries))

	xbe.Sections = make([]XbeSection, len(pe.Sections))
	for i, s := range pe.Sections {
		owned := append([]byte(nil), pe.sectionBytes(i)...)

		flags := uint32(0)
		if s.Characteristics&ImageScnMemExecute != 0 {
			flags |= XbeSectionExecutable
		}
		if s.Characteristics&ImageScnMemWrite != 0 {
			flags |= XbeSectionWritable
		}
		name := s.sectionName()
		if name == ".text" || name == ".data" || name == ".rdata" || name == tlsSectionName {
			flags |= XbeSectionPreload
		}

		xbe.Sections[i] = XbeSection{
			Header: XbeSectionHeader{
				Flags:         flags,
				VirtualAddr:   s.VirtualAddress + h.BaseAddr,
				VirtualSize:   s.VirtualSize,
				SizeOfRaw:     uint32(len(owned)),
				SectionDigest: sha1Sum(owned),
			},
			Name: name,
			Data: owned,
		}
	}

	layoutXbeSections(&h, xbe.Sections)

	// Prefer ordinals already attached to the model (e.g. by a prior
	// TranslateXbeToPE) over re-parsing a PE import directory that was
	// never re-emitted to disk, so an XBE->PE->XBE round trip keeps its
	// kernel thunk table even though this engine never writes a synthetic
	// PE import directory back out (spec §4.5.2 doesn't ask for one).
	if len(pe.KernelImports) > 0 {
		xbe.KernelThunk = append([]uint32(nil), pe.KernelImports...)
	} else if ordinals, err := parseKernelOrdinalImports(pe); err == nil && len(ordinals) > 0 {
		xbe.KernelThunk = ordinals
	}

	if tlsDir := pe.OptionalHeader.DataDirectory[ImageDirectoryEntryTLS]; tlsDir.VirtualAddress != 0 && pe.TLS != nil {
		tls := *pe.TLS
		xbe.TLS = &tls
	}

	xbe.LogoBitmap = opts.LogoBitmap
	if xbe.LogoBitmap == nil {
		xbe.LogoBitmap = append([]byte(nil), openXDKLogoBitmap[:]...)
	}
	h.SizeofLogoBitmap = uint32(len(xbe.LogoBitmap))

	xbe.Header = h
	if err := layoutXbeHeaderAddresses(xbe); err != nil {
		return nil, err
	}
	return xbe, nil
}

// buildXbeCertificate fills the certificate per §4.5.1: fixed title ID,
// UTF-16LE title (truncated/padded to 40 chars), every media/region/rating
// flag permissive, zeroed keys.
func buildXbeCertificate(title string, log *rlog.Helper) XbeCertificate {
	var cert XbeCertificate
	cert.Size = xbeCertificateSize
	cert.TitleID = defaultTitleID
	cert.TitleName = encodeTitleName(title, log)
	for i := range cert.AlternateTitleIDs {
		cert.AlternateTitleIDs[i] = 0xFFFFFFFF
	}
	cert.AllowedMedia = 0xFFFFFFFF
	cert.GameRegion = 0xFFFFFFFF
	cert.GameRatings = 0xFFFFFFFF
	return cert
}

// layoutXbeSections assigns each section's RawAddr (a file offset, not an
// image-relative address — see xbeimage.go's Emit comment) by packing them
// in input order starting at size_of_headers, each aligned to the XBE
// section raw alignment.
func layoutXbeSections(h *Header, sections []XbeSection) {
	offset := AlignUp(xbeHeaderSize, xbeSectionRawAlignment)
	for i := range sections {
		sections[i].Header.RawAddr = offset
		offset = AlignUp(offset+sections[i].Header.SizeOfRaw, xbeSectionRawAlignment)
	}
	h.SizeOfHeaders = AlignUp(xbeHeaderSize, xbeSectionRawAlignment)
	h.SizeOfImage = offset
}

// layoutXbeHeaderAddresses assigns image-relative absolute addresses for
// every auxiliary structure (certificate, section headers, section names,
// library versions, TLS, logo bitmap, kernel thunk table) by packing them
// immediately after the header, in the order §4.3 assembles them, then
// patches Header and every section/library entry's address fields to
// match. It fails with SectionOverflow if that auxiliary region runs past
// SizeOfHeaders and would collide with the first section's raw bytes,
// which layoutXbeSections placed starting at that same offset.
func layoutXbeHeaderAddresses(xbe *XbeImage) error {
	h := &xbe.Header
	base := h.BaseAddr
	off := xbeHeaderSize

	h.CertificateAddr = base + uint32(off)
	off += xbeCertificateSize

	h.SectionHeadersAddr = base + uint32(off)
	off += len(xbe.Sections) * xbeSectionHeaderSize

	for i := range xbe.Sections {
		xbe.Sections[i].Header.SectionNameAddr = base + uint32(off)
		off += len(xbe.Sections[i].Name) + 1
	}

	if len(xbe.Libraries) > 0 {
		h.LibraryVersionsAddr = base + uint32(off)
		off += len(xbe.Libraries) * xbeLibraryVersionSize
		h.KernelLibraryVersionAddr = h.LibraryVersionsAddr
		h.XAPILibraryVersionAddr = h.LibraryVersionsAddr + xbeLibraryVersionSize
	}

	if xbe.TLS != nil {
		h.TLSAddr = base + uint32(off)
		off += tlsDirectorySize
	}

	if len(xbe.DebugPathname) > 0 {
		h.DebugPathnameAddr = base + uint32(off)
		off += len(xbe.DebugPathname) + 1
	}
	if len(xbe.DebugFilename) > 0 {
		h.DebugFilenameAddr = base + uint32(off)
		off += len(xbe.DebugFilename) + 1
		h.DebugUnicodeFilenameAddr = base + uint32(off)
		off += (len(xbe.DebugFilename) + 1) * 2
	}

	if len(xbe.LogoBitmap) > 0 {
		h.LogoBitmapAddr = base + uint32(off)
		off += len(xbe.LogoBitmap)
	}

	if len(xbe.KernelThunk) > 0 {
		off = int(AlignUp(uint32(off), 4))
		thunkAddr := base + uint32(off)
		h.KernelImageThunkAddr = thunkAddr ^ xorKT(xbe.Mode)
		off += (len(xbe.KernelThunk) + 1) * 4
	}

	if uint32(off) > h.SizeOfHeaders {
		return newFormatError(SectionOverflow,
			"XBE auxiliary structures overflow size_of_headers into the first section's raw data")
	}
	return nil
}
