// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"crypto/sha1"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/openxdk/relink/rlog"
)

const maxSectionNameLength = 256

// maxKernelThunkEntries caps how many entries parseKernelThunkTable walks
// looking for the null terminator, guarding against a corrupt XBE whose
// thunk table never terminates.
const maxKernelThunkEntries = 4096

func sha1Sum(data []byte) [20]byte {
	return sha1.Sum(data)
}

// XbeImage is a parsed XBE: the fixed header, certificate, section table
// and bytes, library-version table, TLS directory and kernel thunk table.
// Every address field on Header and XbeSectionHeader is image-relative
// absolute, per the format's invariant 8, except XbeSectionHeader.RawAddr,
// which is a file offset; fileOffset below converts an image-relative
// address to a file offset.
type XbeImage struct {
	Header      Header
	Certificate XbeCertificate
	Sections    []XbeSection
	Libraries   []LibraryVersion
	TLS         *TLSDirectory
	KernelThunk []uint32

	// Mode records which XOR constant pair decoded this image's entry
	// point and kernel thunk address on load, or which pair a translation
	// chose to apply on emit.
	Mode Mode

	DebugPathname        string
	DebugFilename        string
	DebugUnicodeFilename string

	LogoBitmap []byte

	data   []byte
	f      *os.File
	mm     mmap.MMap
	logger *rlog.Helper
}

// XbeOptions configures loading an XbeImage.
type XbeOptions struct {
	Logger *rlog.Helper
}

func (o *XbeOptions) logger() *rlog.Helper {
	if o == nil || o.Logger == nil {
		return rlog.Default()
	}
	return o.Logger
}

// OpenXbeImage memory-maps name and parses it.
func OpenXbeImage(name string, opts *XbeOptions) (*XbeImage, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	xbe := &XbeImage{data: data, f: f, mm: data, logger: opts.logger()}
	if err := xbe.parse(); err != nil {
		xbe.Close()
		return nil, err
	}
	return xbe, nil
}

// ParseXbeImage parses data already held in memory.
func ParseXbeImage(data []byte, opts *XbeOptions) (*XbeImage, error) {
	xbe := &XbeImage{data: data, logger: opts.logger()}
	if err := xbe.parse(); err != nil {
		return nil, err
	}
	return xbe, nil
}

// Close unmaps the backing file, if any.
func (xbe *XbeImage) Close() error {
	if xbe.mm != nil {
		_ = xbe.mm.Unmap()
	}
	if xbe.f != nil {
		return xbe.f.Close()
	}
	return nil
}

// fileOffset converts an image-relative absolute address to a file offset,
// per §4.2 step 2: "A - B, fail with AddressOutOfRange if out of bounds".
func (xbe *XbeImage) fileOffset(addr uint32) (uint32, error) {
	base := xbe.Header.BaseAddr
	if addr < base {
		return 0, ErrXbeAddressOutOfRange
	}
	off := addr - base
	if uint64(off) >= uint64(len(xbe.data)) {
		return 0, ErrXbeAddressOutOfRange
	}
	return off, nil
}

// parse implements §4.2, steps 1-7.
func (xbe *XbeImage) parse() error {
	if uint32(len(xbe.data)) < xbeHeaderSize {
		return ErrOutsideBoundary
	}
	v := newByteView(xbe.data)

	magic, err := v.ReadUint32(0)
	if err != nil {
		return err
	}
	if magic != XbeMagic {
		return ErrXbeMagicNotFound
	}
	if err := v.structUnpack(&xbe.Header, 0, xbeHeaderSize); err != nil {
		return err
	}
	if xbe.Header.SizeOfImageHeader < xbeHeaderSize {
		return newFormatError(Truncated, "XBE image header size is smaller than 0x178 bytes")
	}
	h := xbe.Header

	certOff, err := xbe.fileOffset(h.CertificateAddr)
	if err != nil {
		return err
	}
	xbe.Certificate, err = parseXbeCertificate(v, certOff)
	if err != nil {
		return err
	}

	secHdrOff, err := xbe.fileOffset(h.SectionHeadersAddr)
	if err != nil {
		return err
	}
	headers, err := parseXbeSectionTable(v, secHdrOff, h.Sections)
	if err != nil {
		return err
	}

	xbe.Sections = make([]XbeSection, len(headers))
	for i, sh := range headers {
		nameOff, err := xbe.fileOffset(sh.SectionNameAddr)
		if err != nil {
			return err
		}
		name, err := v.readCString(nameOff, maxSectionNameLength)
		if err != nil {
			return err
		}
		raw, err := v.ReadBytes(sh.RawAddr, sh.SizeOfRaw)
		if err != nil {
			return err
		}
		data := make([]byte, len(raw))
		copy(data, raw)
		xbe.Sections[i] = XbeSection{Header: sh, Name: name, Data: data}
	}

	if h.TLSAddr != 0 {
		tlsOff, err := xbe.fileOffset(h.TLSAddr)
		if err != nil {
			xbe.logger.Warnf("tls directory address out of range: %v", err)
		} else {
			tls, err := parseTLSDirectory(v, tlsOff)
			if err != nil {
				xbe.logger.Warnf("tls directory parsing failed: %v", err)
			} else {
				xbe.TLS = &tls
			}
		}
	}

	if h.LibraryVersions != 0 && h.LibraryVersionsAddr != 0 {
		libOff, err := xbe.fileOffset(h.LibraryVersionsAddr)
		if err != nil {
			xbe.logger.Warnf("library version table address out of range: %v", err)
		} else {
			libs, err := parseLibraryVersionTable(v, libOff, h.LibraryVersions)
			if err != nil {
				xbe.logger.Warnf("library version table parsing failed: %v", err)
			} else {
				xbe.Libraries = libs
			}
		}
	}

	mode, decodedEntry, err := detectMode(h.EntryAddr, h.PeBaseAddr)
	if err != nil {
		return err
	}
	xbe.Mode = mode
	_ = decodedEntry

	if h.KernelImageThunkAddr != 0 {
		ktOff, err := xbe.fileOffset(h.decodedKernelThunkAddr(mode))
		if err != nil {
			xbe.logger.Warnf("kernel thunk table address out of range: %v", err)
		} else {
			thunk, err := parseKernelThunkTable(v, ktOff, maxKernelThunkEntries)
			if err != nil {
				xbe.logger.Warnf("kernel thunk table parsing failed: %v", err)
			} else {
				xbe.KernelThunk = thunk
			}
		}
	}

	if h.LogoBitmapAddr != 0 && h.SizeofLogoBitmap != 0 {
		logoOff, err := xbe.fileOffset(h.LogoBitmapAddr)
		if err == nil {
			if logo, err := v.ReadBytes(logoOff, h.SizeofLogoBitmap); err == nil {
				xbe.LogoBitmap = append([]byte(nil), logo...)
			}
		}
	}

	readDebugString := func(addr uint32) string {
		if addr == 0 {
			return ""
		}
		off, err := xbe.fileOffset(addr)
		if err != nil {
			return ""
		}
		s, _ := v.readCString(off, maxSectionNameLength)
		return s
	}
	xbe.DebugPathname = readDebugString(h.DebugPathnameAddr)
	xbe.DebugFilename = readDebugString(h.DebugFilenameAddr)

	return nil
}

// decodedEntryRVA returns the XBE's entry point as a PE-style RVA relative
// to PeBaseAddr, using the mode detected at load/translation time.
func (xbe *XbeImage) decodedEntryRVA() uint32 {
	return xbe.Header.decodedEntryAddr(xbe.Mode) - xbe.Header.PeBaseAddr
}

// verifyDigests recomputes each section's SHA-1 digest and compares it to
// the stored bzSectionDigest, per §4.2 step 7: a check the base loader
// never runs automatically.
func (xbe *XbeImage) verifyDigests() []error {
	var errs []error
	for _, s := range xbe.Sections {
		got := sha1Sum(s.Data)
		if got != s.Header.SectionDigest {
			errs = append(errs, newFormatError(BadMagic,
				"section "+s.Name+" digest mismatch"))
		}
	}
	return errs
}

// Emit assembles the XBE back into bytes, per §4.3's structure order:
// header, certificate, section headers, section-name strings,
// library-versions, TLS directory, debug path/filename, logo bitmap, then
// per-section raw bytes. Every structure is placed at the file offset its
// address field already names (addr - BaseAddr) rather than recomputed
// here, so a model whose addresses were never rewritten (a bare
// parse-then-emit) reproduces its input layout exactly, and a model built
// by a translator reproduces whatever layout the translator chose when it
// assigned those addresses.
func (xbe *XbeImage) Emit() ([]byte, error) {
	h := xbe.Header
	c := newCursor()

	if _, err := c.writeStruct(&h); err != nil {
		return nil, err
	}
	if h.SizeOfImageHeader > xbeHeaderSize && uint64(h.SizeOfImageHeader) <= uint64(len(xbe.data)) {
		c.write(xbe.data[xbeHeaderSize:h.SizeOfImageHeader])
	}

	if off, err := xbe.fileOffset(h.CertificateAddr); err == nil {
		c.padToOffset(off)
		if _, err := emitXbeCertificate(c, xbe.Certificate); err != nil {
			return nil, err
		}
	}

	if off, err := xbe.fileOffset(h.SectionHeadersAddr); err == nil {
		c.padToOffset(off)
		headers := make([]XbeSectionHeader, len(xbe.Sections))
		for i, s := range xbe.Sections {
			headers[i] = s.Header
		}
		if err := emitXbeSectionTable(c, headers); err != nil {
			return nil, err
		}
	}

	for _, s := range xbe.Sections {
		off, err := xbe.fileOffset(s.Header.SectionNameAddr)
		if err != nil {
			continue
		}
		c.padToOffset(off)
		c.write(append([]byte(s.Name), 0))
	}

	if len(xbe.Libraries) > 0 {
		if off, err := xbe.fileOffset(h.LibraryVersionsAddr); err == nil {
			c.padToOffset(off)
			if err := emitLibraryVersionTable(c, xbe.Libraries); err != nil {
				return nil, err
			}
		}
	}

	if xbe.TLS != nil && h.TLSAddr != 0 {
		if off, err := xbe.fileOffset(h.TLSAddr); err == nil {
			c.padToOffset(off)
			if _, err := emitTLSDirectory(c, *xbe.TLS); err != nil {
				return nil, err
			}
		}
	}

	writeDebugString := func(addr uint32, s string) {
		off, err := xbe.fileOffset(addr)
		if err != nil {
			return
		}
		c.padToOffset(off)
		c.write(append([]byte(s), 0))
	}
	writeDebugString(h.DebugPathnameAddr, xbe.DebugPathname)
	writeDebugString(h.DebugFilenameAddr, xbe.DebugFilename)
	if h.DebugUnicodeFilenameAddr != 0 {
		if off, err := xbe.fileOffset(h.DebugUnicodeFilenameAddr); err == nil {
			c.padToOffset(off)
			encoded, _ := utf16le.NewEncoder().String(xbe.DebugFilename)
			c.write(append([]byte(encoded), 0, 0))
		}
	}

	if len(xbe.LogoBitmap) > 0 {
		if off, err := xbe.fileOffset(h.LogoBitmapAddr); err == nil {
			c.padToOffset(off)
			c.write(xbe.LogoBitmap)
		}
	}

	if h.KernelImageThunkAddr != 0 {
		if off, err := xbe.fileOffset(h.decodedKernelThunkAddr(xbe.Mode)); err == nil {
			c.padToOffset(off)
			c.write(buildKernelThunkTable(xbe.KernelThunk))
		}
	}

	for _, s := range xbe.Sections {
		if s.Header.SizeOfRaw == 0 {
			continue
		}
		c.padToOffset(s.Header.RawAddr)
		c.write(s.Data)
	}

	return c.bytes(), nil
}
