// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "encoding/binary"

// dosStubSize is the fixed size of the DOS stub this engine reads and
// writes: the IMAGE_DOS_HEADER plus its canonical real-mode stub program.
const dosStubSize = 128

// elfanewOffset is the offset of e_lfanew within the DOS header.
const elfanewOffset = 0x3c

// canonicalDOSStub is the fixed 128-byte DOS stub every PE this engine
// produces carries: an IMAGE_DOS_HEADER with e_lfanew pointing at offset
// 0x80 (immediately past the stub), followed by the well-known 16-bit
// real-mode program that prints "This program cannot be run in DOS mode."
// and exits. Every Microsoft linker since the early Win32 era emits this
// exact stub; this engine doesn't vary it, per spec §3's fixed-blob
// description.
var canonicalDOSStub = func() [dosStubSize]byte {
	var b [dosStubSize]byte
	copy(b[0:2], []byte{0x4D, 0x5A}) // e_magic "MZ"
	binary.LittleEndian.PutUint16(b[2:4], 0x0090)   // e_cblp
	binary.LittleEndian.PutUint16(b[4:6], 0x0003)   // e_cp
	binary.LittleEndian.PutUint16(b[8:10], 0x0004)  // e_cparhdr
	binary.LittleEndian.PutUint16(b[10:12], 0x0000) // e_minalloc
	binary.LittleEndian.PutUint16(b[12:14], 0xFFFF) // e_maxalloc
	binary.LittleEndian.PutUint16(b[14:16], 0x0000) // e_ss
	binary.LittleEndian.PutUint16(b[16:18], 0x00B8) // e_sp
	binary.LittleEndian.PutUint16(b[24:26], 0x0040) // e_lfarlc
	binary.LittleEndian.PutUint32(b[elfanewOffset:elfanewOffset+4], dosStubSize)

	stub := []byte{
		0x0e, 0x1f, 0xba, 0x0e, 0x00, 0xb4, 0x09, 0xcd,
		0x21, 0xb8, 0x01, 0x4c, 0xcd, 0x21, 0x54, 0x68,
		0x69, 0x73, 0x20, 0x70, 0x72, 0x6f, 0x67, 0x72,
		0x61, 0x6d, 0x20, 0x63, 0x61, 0x6e, 0x6e, 0x6f,
		0x74, 0x20, 0x62, 0x65, 0x20, 0x72, 0x75, 0x6e,
		0x20, 0x69, 0x6e, 0x20, 0x44, 0x4f, 0x53, 0x20,
		0x6d, 0x6f, 0x64, 0x65, 0x2e, 0x0d, 0x0d, 0x0a,
		0x24, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	copy(b[0x40:], stub)
	return b
}()

// parseDOSStub verifies the DOS header magic and reads e_lfanew, returning
// the file offset of the PE signature.
func parseDOSStub(v *byteView) (elfanew uint32, err error) {
	magic, err := v.ReadUint16(0)
	if err != nil {
		return 0, err
	}
	if magic != ImageDOSSignature {
		return 0, ErrDOSMagicNotFound
	}
	elfanew, err = v.ReadUint32(elfanewOffset)
	if err != nil {
		return 0, err
	}
	if elfanew < 4 || uint64(elfanew) >= uint64(v.size()) {
		return 0, ErrInvalidElfanewValue
	}
	return elfanew, nil
}
