// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// tlsDirectorySize is sizeof(IMAGE_TLS_DIRECTORY32): six uint32 fields.
const tlsDirectorySize = 24

// TLSDirectory is the thread-local-storage directory, shared in shape by
// both the PE (IMAGE_TLS_DIRECTORY32, data directory index
// ImageDirectoryEntryTLS) and the XBE (XBE_TLS) sides of a translation.
// The four address fields are absolute virtual addresses on both sides: a
// PE's are image-base-relative VAs, an XBE's are the same image-relative
// absolute addresses every other XBE field uses (spec §3 "never a raw file
// offset"). The translators copy this struct across verbatim; no field is
// rebased, even when the PE and XBE image bases differ.
type TLSDirectory struct {
	// StartAddressOfRawData is the address of the first byte of the TLS
	// template, the block of data used to initialize each thread's TLS.
	StartAddressOfRawData uint32

	// EndAddressOfRawData is the address of the last byte of the template,
	// excluding the zero-fill tail.
	EndAddressOfRawData uint32

	// AddressOfIndex is where the loader writes the assigned TLS slot
	// index.
	AddressOfIndex uint32

	// AddressOfCallBacks points to a null-terminated array of TLS callback
	// function pointers. Zero when there are no callbacks.
	AddressOfCallBacks uint32

	// SizeOfZeroFill is the size, beyond the raw template, that the loader
	// zero-fills for each thread.
	SizeOfZeroFill uint32

	// Characteristics carries the IMAGE_SCN_ALIGN_* alignment nibble in
	// bits [23:20]; this engine preserves it unexamined.
	Characteristics uint32
}

// parseTLSDirectory reads a TLSDirectory at a file offset already resolved
// from whichever side's directory/field pointed at it.
func parseTLSDirectory(v *byteView, offset uint32) (TLSDirectory, error) {
	var dir TLSDirectory
	err := v.structUnpack(&dir, offset, tlsDirectorySize)
	return dir, err
}

// emitTLSDirectory appends dir and returns the offset it was written at.
func emitTLSDirectory(c *cursor, dir TLSDirectory) (uint32, error) {
	return c.writeStruct(&dir)
}
