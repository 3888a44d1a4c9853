// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import "testing"

func TestAlignUp(t *testing.T) {
	tests := []struct {
		name string
		v, a uint32
		want uint32
	}{
		{"zero value", 0, 0x1000, 0},
		{"already aligned", 0x1000, 0x1000, 0x1000},
		{"rounds up", 0x1001, 0x1000, 0x2000},
		{"one byte under two pages", 0x1FFF, 0x1000, 0x2000},
		{"zero alignment is a no-op", 0x123, 0, 0x123},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlignUp(tt.v, tt.a); got != tt.want {
				t.Errorf("AlignUp(%#x, %#x) = %#x, want %#x", tt.v, tt.a, got, tt.want)
			}
		})
	}
}

func TestByteViewReads(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	v := newByteView(data)

	if got, err := v.ReadUint8(0); err != nil || got != 0x01 {
		t.Errorf("ReadUint8(0) = %#x, %v, want 0x01, nil", got, err)
	}
	if got, err := v.ReadUint16(0); err != nil || got != 0x0201 {
		t.Errorf("ReadUint16(0) = %#x, %v, want 0x0201, nil", got, err)
	}
	if got, err := v.ReadUint32(0); err != nil || got != 0x04030201 {
		t.Errorf("ReadUint32(0) = %#x, %v, want 0x04030201, nil", got, err)
	}
	if got, err := v.ReadUint64(0); err != nil || got != 0x0807060504030201 {
		t.Errorf("ReadUint64(0) = %#x, %v, want 0x0807060504030201, nil", got, err)
	}
	if _, err := v.ReadUint32(6); err != ErrOutsideBoundary {
		t.Errorf("ReadUint32(6) err = %v, want ErrOutsideBoundary", err)
	}
}

func TestByteViewReadCString(t *testing.T) {
	data := append([]byte(".text"), 0, 0, 0)
	v := newByteView(data)
	s, err := v.readCString(0, 256)
	if err != nil {
		t.Fatalf("readCString: %v", err)
	}
	if s != ".text" {
		t.Errorf("readCString = %q, want %q", s, ".text")
	}
}

func TestCursorPadding(t *testing.T) {
	c := newCursor()
	c.write([]byte{1, 2, 3})
	c.padTo(8)
	if c.offset() != 8 {
		t.Fatalf("offset after padTo(8) = %d, want 8", c.offset())
	}
	c.padToOffset(16)
	if c.offset() != 16 {
		t.Fatalf("offset after padToOffset(16) = %d, want 16", c.offset())
	}
	if len(c.bytes()) != 16 {
		t.Fatalf("len(bytes) = %d, want 16", len(c.bytes()))
	}
}
