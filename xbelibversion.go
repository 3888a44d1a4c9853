// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// libraryVersionNameSize is the fixed, space-padded ASCII name width of a
// LibraryVersion entry.
const libraryVersionNameSize = 8

// xbeLibraryVersionSize is sizeof(LibraryVersion) on disk.
const xbeLibraryVersionSize = 16

// LibraryVersion is one entry of the XBE library-version table: a DLL or
// static-link library name plus the version Flags bitfield packs three
// sub-fields into one uint16 (QFEVersion:13, Approved:2, DebugBuild:1, low
// bit to high bit) — Go has no native bitfield syntax, so Flags is stored
// raw and accessed through the helpers below.
type LibraryVersion struct {
	Name                 [libraryVersionNameSize]byte
	MajorVersion         uint16
	MinorVersion         uint16
	BuildVersion         uint16
	Flags                uint16
}

const (
	libVerFlagsQFEMask      = 0x1FFF // bits [12:0]
	libVerFlagsApprovedMask = 0x3    // bits [14:13]
	libVerFlagsApprovedShift = 13
	libVerFlagsDebugBuildBit = 1 << 15
)

func (lv LibraryVersion) qfeVersion() uint16 {
	return lv.Flags & libVerFlagsQFEMask
}

func (lv LibraryVersion) approved() uint16 {
	return (lv.Flags >> libVerFlagsApprovedShift) & libVerFlagsApprovedMask
}

func (lv LibraryVersion) debugBuild() bool {
	return lv.Flags&libVerFlagsDebugBuildBit != 0
}

// packLibraryVersionFlags builds the Flags bitfield from its three
// sub-fields.
func packLibraryVersionFlags(qfe, approved uint16, debugBuild bool) uint16 {
	flags := qfe & libVerFlagsQFEMask
	flags |= (approved & libVerFlagsApprovedMask) << libVerFlagsApprovedShift
	if debugBuild {
		flags |= libVerFlagsDebugBuildBit
	}
	return flags
}

// newLibraryVersion builds a LibraryVersion entry, space-padding name to
// libraryVersionNameSize.
func newLibraryVersion(name string, major, minor, build uint16, approved uint16, debugBuild bool) LibraryVersion {
	var lv LibraryVersion
	for i := range lv.Name {
		lv.Name[i] = ' '
	}
	copy(lv.Name[:], name)
	lv.MajorVersion = major
	lv.MinorVersion = minor
	lv.BuildVersion = build
	lv.Flags = packLibraryVersionFlags(0, approved, debugBuild)
	return lv
}

// parseLibraryVersionTable reads count consecutive LibraryVersion entries.
func parseLibraryVersionTable(v *byteView, offset uint32, count uint32) ([]LibraryVersion, error) {
	entries := make([]LibraryVersion, count)
	for i := range entries {
		off := offset + uint32(i)*xbeLibraryVersionSize
		if err := v.structUnpack(&entries[i], off, xbeLibraryVersionSize); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// emitLibraryVersionTable appends entries in order.
func emitLibraryVersionTable(c *cursor, entries []LibraryVersion) error {
	for i := range entries {
		if _, err := c.writeStruct(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}
