// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// Image executable signatures.
const (
	// ImageDOSSignature is the DOS MZ executable signature ("MZ").
	ImageDOSSignature = 0x5A4D

	// ImageOS2Signature identifies a 16-bit New Executable ("NE").
	ImageOS2Signature = 0x454E

	// ImageOS2LESignature identifies a Linear Executable ("LE").
	ImageOS2LESignature = 0x454C

	// ImageVXDSignature identifies an LX executable ("LX").
	ImageVXDSignature = 0x584C

	// ImageTESignature identifies a Terse Executable ("VZ").
	ImageTESignature = 0x5A56

	// ImageNTSignature is the PE signature ("PE\0\0").
	ImageNTSignature = 0x00004550
)

// Optional header magic values.
const (
	// ImageNtOptionalHeader32Magic identifies a PE32 optional header, the
	// only variant this engine reads or writes.
	ImageNtOptionalHeader32Magic = 0x10b

	// ImageNtOptionalHeader64Magic identifies a PE32+ optional header.
	// Encountering this magic fails the load with ErrUnsupportedPE32Plus.
	ImageNtOptionalHeader64Magic = 0x20b
)

// ImageFileMachineI386 is the only COFF machine type the Xbox subsystem
// uses; the engine refuses anything else at load time.
const ImageFileMachineI386 = uint16(0x14c)

// COFF Characteristics flags (a subset; only the ones the Xbox toolchain
// sets or that this engine inspects).
const (
	ImageFileRelocsStripped   = 0x0001
	ImageFileExecutableImage  = 0x0002
	ImageFileLineNumsStripped = 0x0004
	ImageFile32BitMachine     = 0x0100

	// ImageFileXboxCharacteristics is the fixed Characteristics value this
	// engine writes for every PE it produces: relocations stripped,
	// executable image, 32-bit machine.
	ImageFileXboxCharacteristics = ImageFileRelocsStripped | ImageFileExecutableImage | ImageFile32BitMachine
)

// Subsystem values of an OptionalHeader (the ones this engine cares about).
const (
	ImageSubsystemWindowsCUI = 3
	ImageSubsystemXBOX       = 14
)

// DataDirectory index of the thread-local-storage directory, the only data
// directory TranslateXbeToPE writes. The PE->XBE direction reads it and the
// import directory (index 1); no translator touches the export directory.
const ImageDirectoryEntryTLS = 9

// ImageDirectoryEntryCertificate is the Authenticode Certificate Table
// directory index; preserved on load/emit but never produced by the
// translators (see pecert.go).
const ImageDirectoryEntryCertificate = 4

// ImageNumberOfDirectoryEntries is the fixed data directory count every PE
// and PE32 optional header this engine reads or writes carries.
const ImageNumberOfDirectoryEntries = 16

// PE section Characteristics flags relevant to Xbox images.
const (
	ImageScnCntCode               = 0x00000020
	ImageScnCntInitializedData    = 0x00000040
	ImageScnCntUninitializedData  = 0x00000080
	ImageScnMemExecute            = 0x20000000
	ImageScnMemRead               = 0x40000000
	ImageScnMemWrite              = 0x80000000
)
