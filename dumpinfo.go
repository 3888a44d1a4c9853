// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"fmt"
	"io"
)

// infoField is one label/value row of a dump-info report.
type infoField struct {
	label string
	value string
}

// hexString formats value as "0x%08x", the original tool's HexString.
func hexString(value uint32) string {
	return fmt.Sprintf("0x%08x", value)
}

// intHexString formats value as "%d (0x%x)", the original tool's
// IntHexString.
func intHexString(value uint32) string {
	return fmt.Sprintf("%d (0x%x)", value, value)
}

// DumpXbeInfo writes a field-labeled report of an XbeImage's header to w,
// in the "label:  value" layout the original XBE dumper produces. This is
// an external-interface adapter per spec §2 component 5: it reads the
// model only and never re-emits.
func DumpXbeInfo(w io.Writer, xbe *XbeImage) error {
	h := xbe.Header
	fields := []infoField{
		{"Magic number", fmt.Sprintf("0x%08x (XBEH)", h.Magic)},
		{"Base address", hexString(h.BaseAddr)},
		{"Size of headers", intHexString(h.SizeOfHeaders)},
		{"Size of image", intHexString(h.SizeOfImage)},
		{"Size of image header", intHexString(h.SizeOfImageHeader)},
		{"Date/time stamp", hexString(h.TimeDate)},
		{"Certificate address", hexString(h.CertificateAddr)},
		{"Number of sections", fmt.Sprintf("%d", h.Sections)},
		{"Section headers address", hexString(h.SectionHeadersAddr)},
		{"Mode", xbe.Mode.String()},
		{"Entry point (decoded)", hexString(h.decodedEntryAddr(xbe.Mode))},
		{"TLS address", hexString(h.TLSAddr)},
		{"PE stack commit", hexString(h.PeStackCommit)},
		{"PE heap reserve", hexString(h.PeHeapReserve)},
		{"PE heap commit", hexString(h.PeHeapCommit)},
		{"PE base address", hexString(h.PeBaseAddr)},
		{"PE size of image", hexString(h.PeSizeofImage)},
		{"PE checksum", hexString(h.PeChecksum)},
		{"PE date/time stamp", hexString(h.PeTimeDate)},
		{"Debug path address", hexString(h.DebugPathnameAddr)},
		{"Debug filename address", hexString(h.DebugFilenameAddr)},
		{"Debug UTF-16 filename address", hexString(h.DebugUnicodeFilenameAddr)},
		{"Non-kernel import directory address", hexString(h.NonKernelImportDirAddr)},
		{"Number of library versions", hexString(h.LibraryVersions)},
		{"Library versions address", hexString(h.LibraryVersionsAddr)},
		{"Kernel library version address", hexString(h.KernelLibraryVersionAddr)},
		{"XAPI library version address", hexString(h.XAPILibraryVersionAddr)},
		{"Logo bitmap address", hexString(h.LogoBitmapAddr)},
		{"Logo bitmap size", intHexString(h.SizeofLogoBitmap)},
	}

	if err := printInfo(w, "XBE Header", fields); err != nil {
		return err
	}

	var sectionFields []infoField
	for _, s := range xbe.Sections {
		sectionFields = append(sectionFields,
			infoField{s.Name + " virtual address", hexString(s.Header.VirtualAddr)},
			infoField{s.Name + " virtual size", intHexString(s.Header.VirtualSize)},
			infoField{s.Name + " raw address", hexString(s.Header.RawAddr)},
			infoField{s.Name + " raw size", intHexString(s.Header.SizeOfRaw)},
		)
	}
	return printInfo(w, "XBE Sections", sectionFields)
}

// printInfo writes header followed by each field indented and aligned to
// the widest label, "label:  value" per entry, matching the original
// dumper's PrintInfo layout.
func printInfo(w io.Writer, header string, fields []infoField) error {
	if _, err := fmt.Fprintf(w, "%s\n", header); err != nil {
		return err
	}

	maxLen := 0
	for _, f := range fields {
		if len(f.label) > maxLen {
			maxLen = len(f.label)
		}
	}

	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "    %*s:  %s\n", maxLen, f.label, f.value); err != nil {
			return err
		}
	}
	return nil
}
