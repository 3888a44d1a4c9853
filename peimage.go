// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/openxdk/relink/rlog"
)

// PEImage is a parsed Xbox PE32 image: a COFF/optional header, section
// table, and the handful of data directories this engine understands
// (import, TLS, certificate). Everything else in a PE's data directory
// array (export, resources, relocations, debug, ...) is preserved only as
// raw bytes the translators never interpret, per spec §4's narrowed scope.
type PEImage struct {
	COFF           COFFHeader
	OptionalHeader OptionalHeader32
	Sections       []SectionHeader
	TLS            *TLSDirectory
	Certificate    *PECertificate

	// KernelImports holds kernel import ordinals: those of a parsed PE's
	// "xboxkrnl.exe" import descriptor, or, for a PE built by
	// TranslateXbeToPE, the ordinals of the XBE's kernel thunk table.
	KernelImports []uint32

	// sectionData holds each section's raw bytes, copied out of the
	// backing buffer at parse time (or supplied directly by a
	// translator). A mutator that rewrites Sections[i].PointerToRawData
	// (TranslatePEToDXT, a repacking translator) must not invalidate
	// Emit's ability to find the bytes that go with that header: Emit
	// always reads from sectionData, never by re-resolving the current
	// PointerToRawData against data, per spec §3's "section bytes ...
	// must be copied before any mutation".
	sectionData [][]byte

	data   []byte
	f      *os.File
	mm     mmap.MMap
	logger *rlog.Helper
}

// PEOptions configures loading a PEImage.
type PEOptions struct {
	// Logger receives parse warnings; Default() is used when nil.
	Logger *rlog.Helper
}

func (o *PEOptions) logger() *rlog.Helper {
	if o == nil || o.Logger == nil {
		return rlog.Default()
	}
	return o.Logger
}

// OpenPEImage memory-maps name and parses it as a PE32. The mapping is kept
// alive by the returned PEImage until Close is called. It and OpenXbeImage
// are the only entry points in the engine that use mmap, matching the teacher's New()
// convention of mapping the input file once at the CLI boundary rather
// than copying it (spec §3's "aliased from an input file mapping").
func OpenPEImage(name string, opts *PEOptions) (*PEImage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	pe := &PEImage{data: data, f: f, mm: data, logger: opts.logger()}
	if err := pe.parse(); err != nil {
		pe.Close()
		return nil, err
	}
	return pe, nil
}

// ParsePEImage parses data already held in memory, without mapping a file.
// Every translator that reads an already-loaded PE (round-tripping through
// a cursor's bytes, for instance in tests) goes through this entry point.
func ParsePEImage(data []byte, opts *PEOptions) (*PEImage, error) {
	pe := &PEImage{data: data, logger: opts.logger()}
	if err := pe.parse(); err != nil {
		return nil, err
	}
	return pe, nil
}

// Close unmaps the backing file, if any.
func (pe *PEImage) Close() error {
	if pe.mm != nil {
		_ = pe.mm.Unmap()
	}
	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

// rawImage returns the full backing buffer, used by xbeimports.go to walk
// the import directory by raw file offset.
func (pe *PEImage) rawImage() []byte {
	return pe.data
}

// fileOffsetForRVA resolves rva to a file offset by scanning the section
// table, returning nil when rva falls in a section's zero-padded virtual
// tail or outside every section (the header region, which this engine
// addresses directly by file offset and never by RVA).
func (pe *PEImage) fileOffsetForRVA(rva uint32) *uint32 {
	for _, s := range pe.Sections {
		if !rvaInSection(s, rva) {
			continue
		}
		off, ok := fileOffsetInSection(s, rva)
		if !ok {
			return nil
		}
		return &off
	}
	return nil
}

// parse reads the DOS stub, NT headers, section table, and the TLS,
// certificate and kernel-import directories, in that order, mirroring the
// teacher's File.Parse sequencing.
func (pe *PEImage) parse() error {
	if uint32(len(pe.data)) < dosStubSize {
		return ErrOutsideBoundary
	}
	v := newByteView(pe.data)

	elfanew, err := parseDOSStub(v)
	if err != nil {
		return err
	}

	coff, opt, sectionsOffset, err := parseCOFFAndOptionalHeader(v, elfanew)
	if err != nil {
		return err
	}
	if coff.Machine != ImageFileMachineI386 {
		return newFormatError(UnsupportedFormat, "unsupported COFF machine type")
	}
	pe.COFF = coff
	pe.OptionalHeader = opt

	sections, err := parseSectionTable(v, sectionsOffset, coff.NumberOfSections)
	if err != nil {
		return err
	}
	pe.Sections = sections

	pe.sectionData = make([][]byte, len(sections))
	for i, s := range sections {
		if s.SizeOfRawData == 0 {
			continue
		}
		raw, err := v.ReadBytes(s.PointerToRawData, s.SizeOfRawData)
		if err != nil {
			return err
		}
		owned := make([]byte, len(raw))
		copy(owned, raw)
		pe.sectionData[i] = owned
	}

	if tlsDir := opt.DataDirectory[ImageDirectoryEntryTLS]; tlsDir.VirtualAddress != 0 {
		if off := pe.fileOffsetForRVA(tlsDir.VirtualAddress); off != nil {
			tls, err := parseTLSDirectory(v, *off)
			if err != nil {
				pe.logger.Warnf("tls directory parsing failed: %v", err)
			} else {
				pe.TLS = &tls
			}
		}
	}

	if certDir := opt.DataDirectory[ImageDirectoryEntryCertificate]; certDir.VirtualAddress != 0 {
		cert, err := parseCertificate(v, certDir)
		if err != nil {
			pe.logger.Warnf("certificate directory parsing failed: %v", err)
		} else {
			pe.Certificate = cert
		}
	}

	ordinals, err := parseKernelOrdinalImports(pe)
	if err != nil {
		pe.logger.Warnf("kernel import parsing failed: %v", err)
	} else {
		pe.KernelImports = ordinals
	}

	return nil
}

// Emit assembles the PE back into bytes: DOS stub, COFF/optional headers,
// section table, header padding to SizeOfHeaders, then every section's raw
// data at its recorded PointerToRawData, then the certificate table (if
// any) at the file offset its data directory names. Callers that rewrote
// pe.OptionalHeader or pe.Sections (a translator retargeting addresses) do
// so before calling Emit.
func (pe *PEImage) Emit() ([]byte, error) {
	if len(pe.sectionData) != len(pe.Sections) {
		return nil, ErrSectionCountMismatch
	}
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
		if s.SizeOfRawData == 0 {
			continue
		}
		c.padToOffset(s.PointerToRawData)
		raw := pe.sectionBytes(i)
		if raw == nil {
			return nil, ErrSectionOverflow
		}
		c.write(raw)
	}

	if pe.Certificate != nil {
		c.padToOffset(pe.OptionalHeader.DataDirectory[ImageDirectoryEntryCertificate].VirtualAddress)
		emitCertificate(c, pe.Certificate)
	}
	return c.bytes(), nil
}

// sectionBytes returns the owned raw bytes for section i, captured at
// parse time (or set directly by a translator), independent of whatever
// PointerToRawData currently holds.
func (pe *PEImage) sectionBytes(i int) []byte {
	if i < len(pe.sectionData) {
		return pe.sectionData[i]
	}
	return nil
}
