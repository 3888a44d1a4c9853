// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "encoding/binary"

// imageOrdinalFlag32 marks a 32-bit IMAGE_THUNK_DATA entry as an
// import-by-ordinal rather than import-by-name; the low 16 bits then carry
// the ordinal. The XBE kernel thunk table reuses this exact bit layout for
// each of its entries (every Xbox kernel import is by ordinal).
const imageOrdinalFlag32 = uint32(0x80000000)

// kernelDLLName is the import name parseKernelOrdinalImports matches to find
// a PE's kernel-mode imports; the Xbox kernel export table itself has no
// notion of a DLL name. This engine does not write a PE import directory,
// so no PE it produces carries this name.
const kernelDLLName = "xboxkrnl.exe"

// imageImportDescriptor is IMAGE_IMPORT_DESCRIPTOR, one per imported
// library; the array is terminated by an all-zero entry.
type imageImportDescriptor struct {
	OriginalFirstThunk uint32
	TimeDateStamp      uint32
	ForwarderChain     uint32
	NameRVA            uint32
	FirstThunk         uint32
}

// parseKernelOrdinalImports walks a PE's import directory (data directory
// index 1) looking for a descriptor whose DLL name is kernelDLLName and
// returns the ordinals of every by-ordinal thunk in its lookup table. A PE
// with no such descriptor (the common case: a freshly compiled Win32 EXE
// retargeted at the Xbox subsystem, not yet re-imported against the kernel)
// returns an empty slice, not an error.
func parseKernelOrdinalImports(pe *PEImage) ([]uint32, error) {
	if len(pe.Sections) == 0 {
		return nil, nil
	}
	dir := pe.OptionalHeader.DataDirectory[1]
	if dir.Size == 0 || dir.VirtualAddress == 0 {
		return nil, nil
	}

	v := newByteView(pe.rawImage())
	base := pe.fileOffsetForRVA(dir.VirtualAddress)
	if base == nil {
		return nil, nil
	}

	var ordinals []uint32
	for i := 0; ; i++ {
		off := *base + uint32(i)*20
		var desc imageImportDescriptor
		if err := v.structUnpack(&desc, off, 20); err != nil {
			return ordinals, nil
		}
		if desc.OriginalFirstThunk == 0 && desc.NameRVA == 0 && desc.FirstThunk == 0 {
			break
		}
		name, err := v.readCString(*pe.fileOffsetForRVA(desc.NameRVA), maxDLLNameLength)
		if err != nil {
			continue
		}
		if !equalFoldASCII(name, kernelDLLName) {
			continue
		}

		thunkRVA := desc.OriginalFirstThunk
		if thunkRVA == 0 {
			thunkRVA = desc.FirstThunk
		}
		thunkOff := pe.fileOffsetForRVA(thunkRVA)
		if thunkOff == nil {
			continue
		}
		for j := 0; ; j++ {
			thunk, err := v.ReadUint32(*thunkOff + uint32(j)*4)
			if err != nil || thunk == 0 {
				break
			}
			if thunk&imageOrdinalFlag32 != 0 {
				ordinals = append(ordinals, thunk&0xFFFF)
			}
		}
	}
	return ordinals, nil
}

const maxDLLNameLength = 0x100

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// buildKernelThunkTable encodes a list of kernel export ordinals as the
// XBE's flat kernel thunk array: one uint32 per ordinal with
// imageOrdinalFlag32 set, terminated by a zero entry.
func buildKernelThunkTable(ordinals []uint32) []byte {
	buf := make([]byte, (len(ordinals)+1)*4)
	for i, ord := range ordinals {
		binary.LittleEndian.PutUint32(buf[i*4:], imageOrdinalFlag32|(ord&0xFFFF))
	}
	return buf
}

// parseKernelThunkTable decodes the XBE's flat kernel thunk array back into
// ordinals, stopping at the terminating zero entry or at maxEntries,
// whichever comes first.
func parseKernelThunkTable(v *byteView, offset uint32, maxEntries int) ([]uint32, error) {
	var ordinals []uint32
	for i := 0; i < maxEntries; i++ {
		entry, err := v.ReadUint32(offset + uint32(i)*4)
		if err != nil {
			return ordinals, err
		}
		if entry == 0 {
			break
		}
		ordinals = append(ordinals, entry&0xFFFF)
	}
	return ordinals, nil
}
