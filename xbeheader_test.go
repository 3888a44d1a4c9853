// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "testing"

func TestDetectModeRetail(t *testing.T) {
	peBase := uint32(DefaultXbeBaseAddr)
	entryVA := peBase + 0x1000
	encoded := entryVA ^ xorEPRetail

	mode, decoded, err := detectMode(encoded, peBase)
	if err != nil {
		t.Fatalf("detectMode: %v", err)
	}
	if mode != ModeRetail {
		t.Errorf("mode = %v, want retail", mode)
	}
	if decoded != entryVA {
		t.Errorf("decoded = %#x, want %#x", decoded, entryVA)
	}
}

func TestDetectModeDebugFallback(t *testing.T) {
	peBase := uint32(DefaultXbeBaseAddr)
	entryVA := peBase + 0x2000
	// Encode with the DEBUG pair so the RETAIL attempt must fail first.
	encoded := entryVA ^ xorEPDebug

	mode, decoded, err := detectMode(encoded, peBase)
	if err != nil {
		t.Fatalf("detectMode: %v", err)
	}
	if mode != ModeDebug {
		t.Errorf("mode = %v, want debug", mode)
	}
	if decoded != entryVA {
		t.Errorf("decoded = %#x, want %#x", decoded, entryVA)
	}
}

func TestDetectModeFailsOutOfRange(t *testing.T) {
	peBase := uint32(DefaultXbeBaseAddr)
	// A value that doesn't decode in range under either XOR pair.
	_, _, err := detectMode(0x00000000, peBase)
	if err == nil {
		t.Fatal("detectMode succeeded, want AddressOutOfRange error")
	}
	fe, ok := err.(*FormatError)
	if !ok {
		t.Fatalf("err type = %T, want *FormatError", err)
	}
	if fe.Kind != AddressOutOfRange {
		t.Errorf("Kind = %v, want AddressOutOfRange", fe.Kind)
	}
}

func TestDecodedEntryAndKernelThunkAddr(t *testing.T) {
	h := Header{
		EntryAddr:            0x12345678 ^ xorEPRetail,
		KernelImageThunkAddr: 0x87654321 ^ xorKTRetail,
	}
	if got := h.decodedEntryAddr(ModeRetail); got != 0x12345678 {
		t.Errorf("decodedEntryAddr = %#x, want 0x12345678", got)
	}
	if got := h.decodedKernelThunkAddr(ModeRetail); got != 0x87654321 {
		t.Errorf("decodedKernelThunkAddr = %#x, want 0x87654321", got)
	}
}

func TestModeString(t *testing.T) {
	if ModeRetail.String() != "retail" {
		t.Errorf("ModeRetail.String() = %q, want retail", ModeRetail.String())
	}
	if ModeDebug.String() != "debug" {
		t.Errorf("ModeDebug.String() = %q, want debug", ModeDebug.String())
	}
}
