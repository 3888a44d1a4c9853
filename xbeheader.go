// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// xbeHeaderSize is the size of the on-disk Header struct this engine
// reads and writes: the documented 0x178-byte field set. A larger header
// size recorded in SizeOfImageHeader is honored: the tail is not
// interpreted, and Emit copies it through from the parsed input. A PE->XBE
// translation always writes 0x178.
const xbeHeaderSize = 0x178

// Header is the XBE fixed header, present at file offset 0 of every XBE.
// Every address field is image-relative absolute (base + offset), per
// invariant 8: this struct never stores a raw file offset.
type Header struct {
	Magic uint32 // 'XBEH'

	// Signature is the 256-byte RSA digital signature; this engine treats
	// it as an opaque blob it preserves but never verifies or generates
	// (the Non-goal excluding "signing or validating cryptographic
	// integrity" applies here as much as to the PE certificate table).
	Signature [256]byte

	BaseAddr           uint32
	SizeOfHeaders      uint32
	SizeOfImage        uint32
	SizeOfImageHeader  uint32
	TimeDate           uint32
	CertificateAddr    uint32
	Sections           uint32
	SectionHeadersAddr uint32
	InitFlags          uint32

	// EntryAddr is XOR'd with xorEP(Mode); see §4.3's "XOR obfuscation".
	EntryAddr uint32

	TLSAddr uint32

	PeStackCommit uint32
	PeHeapReserve uint32
	PeHeapCommit  uint32
	PeBaseAddr    uint32
	PeSizeofImage uint32
	PeChecksum    uint32
	PeTimeDate    uint32

	DebugPathnameAddr        uint32
	DebugFilenameAddr        uint32
	DebugUnicodeFilenameAddr uint32

	// KernelImageThunkAddr is XOR'd with xorKT(Mode).
	KernelImageThunkAddr uint32

	NonKernelImportDirAddr uint32

	LibraryVersions          uint32
	LibraryVersionsAddr      uint32
	KernelLibraryVersionAddr uint32
	XAPILibraryVersionAddr   uint32

	LogoBitmapAddr   uint32
	SizeofLogoBitmap uint32
}

// decodedEntryAddr returns Header.EntryAddr with the XOR obfuscation
// removed for the given mode.
func (h Header) decodedEntryAddr(mode Mode) uint32 {
	return h.EntryAddr ^ xorEP(mode)
}

// decodedKernelThunkAddr returns Header.KernelImageThunkAddr with the XOR
// obfuscation removed for the given mode.
func (h Header) decodedKernelThunkAddr(mode Mode) uint32 {
	return h.KernelImageThunkAddr ^ xorKT(mode)
}

// detectMode implements §4.3's XOR-mode inference: try RETAIL first, fall
// back to DEBUG if the decoded entry point lies outside
// [base, base+0x0FFFFFFF) or has any of the top nibble set.
func detectMode(entryAddr, peBaseAddr uint32) (Mode, uint32, error) {
	for _, mode := range [...]Mode{ModeRetail, ModeDebug} {
		decoded := entryAddr ^ xorEP(mode)
		if decoded&0xF0000000 != 0 {
			continue
		}
		if decoded < peBaseAddr || decoded >= peBaseAddr+0x0FFFFFFF {
			continue
		}
		return mode, decoded, nil
	}
	return ModeRetail, 0, newFormatError(AddressOutOfRange,
		"XBE entry address does not decode in range under either XOR mode")
}
