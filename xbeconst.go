// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// XbeMagic is the XBE fixed header's dwMagic field, "XBEH".
const XbeMagic = 0x48454258

// DefaultXbeBaseAddr is the image base every XBE this engine produces uses.
const DefaultXbeBaseAddr = 0x00010000

// XbeHeaderSize176 and XbeHeaderSize180 are the two common image header
// sizes. A SizeOfImageHeader below 0x178 is rejected as Truncated; a larger
// one is accepted: the first 0x178 bytes are decoded into Header and the
// tail past them is copied through on emit but never interpreted.
const (
	XbeHeaderSize176 = 0x178
	XbeHeaderSize180 = 0x180
)

// Mode tags which XOR constant pair produced a load's decoded addresses,
// and which pair a translation's emit step applies.
type Mode int

const (
	// ModeRetail is the default, used whenever a RETAIL decode lands in
	// range.
	ModeRetail Mode = iota
	// ModeDebug is used when RETAIL decodes out of range.
	ModeDebug
)

func (m Mode) String() string {
	if m == ModeDebug {
		return "debug"
	}
	return "retail"
}

// XOR constants the XBE format applies to its entry point and kernel
// thunk table address, normative per the format's on-disk layout.
const (
	xorEPRetail = 0xA8FC57AB
	xorEPDebug  = 0x94859D4B
	xorKTRetail = 0x5B6D40B6
	xorKTDebug  = 0xEFB1F152
)

func xorEP(mode Mode) uint32 {
	if mode == ModeDebug {
		return xorEPDebug
	}
	return xorEPRetail
}

func xorKT(mode Mode) uint32 {
	if mode == ModeDebug {
		return xorKTDebug
	}
	return xorKTRetail
}

// XBE initialization-flags bitfield (Header.InitFlags).
const (
	XbeInitMountUtilityDrive  = 1 << 0
	XbeInitFormatUtilityDrive = 1 << 1
	XbeInitLimit64MB          = 1 << 2
	XbeInitDontSetupHarddisk  = 1 << 3
)

// XBE section-header flags (SectionHeader.Flags).
const (
	XbeSectionWritable     = 1 << 0
	XbeSectionPreload      = 1 << 1
	XbeSectionExecutable   = 1 << 2
	XbeSectionInsertedFile = 1 << 3
	XbeSectionHeadPageRO   = 1 << 4
	XbeSectionTailPageRO   = 1 << 5
)

// xbeSectionRawAlignment is the page granularity every XBE section's raw
// data offset is rounded up to.
const xbeSectionRawAlignment = 0x1000

// defaultTitleID is the placeholder title ID a PE->XBE translation stamps
// on the certificate when the caller doesn't supply one.
const defaultTitleID = 0xFFFF0002

// kernelLibraryName, xapiLibraryName and openxdkLibraryName are the three
// library-version entries a PE->XBE translation always produces.
const (
	kernelLibraryName  = "XBOXKRNL"
	xapiLibraryName    = "XAPILIB "
	openxdkLibraryName = "OPENXDK "
)
