// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"bytes"
	"encoding/binary"
)

// AlignUp rounds v up to the nearest multiple of a. An alignment of zero is
// treated as "no alignment" and returns v unchanged, matching the teacher's
// RoundUp convention of tolerating a zero multiplier.
func AlignUp(v, a uint32) uint32 {
	if a == 0 || v == 0 {
		return v
	}
	return (v-1)/a*a + a
}

// byteView is a bounds-checked window into a byte slice, used to parse
// fixed-size records out of a larger image buffer without copying until a
// caller asks for owned bytes.
type byteView struct {
	data []byte
}

func newByteView(data []byte) *byteView {
	return &byteView{data: data}
}

func (b *byteView) size() uint32 {
	return uint32(len(b.data))
}

// ReadUint8 reads a uint8 at offset.
func (b *byteView) ReadUint8(offset uint32) (uint8, error) {
	if offset+1 > b.size() {
		return 0, ErrOutsideBoundary
	}
	return b.data[offset], nil
}

// ReadUint16 reads a little-endian uint16 at offset.
func (b *byteView) ReadUint16(offset uint32) (uint16, error) {
	if offset+2 > b.size() {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(b.data[offset:]), nil
}

// ReadUint32 reads a little-endian uint32 at offset.
func (b *byteView) ReadUint32(offset uint32) (uint32, error) {
	if offset+4 > b.size() {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(b.data[offset:]), nil
}

// ReadUint64 reads a little-endian uint64 at offset.
func (b *byteView) ReadUint64(offset uint32) (uint64, error) {
	if offset+8 > b.size() {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint64(b.data[offset:]), nil
}

// ReadBytes returns a bounds-checked slice of size bytes starting at offset.
// The returned slice aliases the underlying buffer; callers that need to
// mutate it must copy first.
func (b *byteView) ReadBytes(offset, size uint32) ([]byte, error) {
	total := offset + size
	if (total > offset) != (size > 0) {
		return nil, ErrOutsideBoundary
	}
	if offset > b.size() || total > b.size() {
		return nil, ErrOutsideBoundary
	}
	return b.data[offset:total], nil
}

// readCString reads a NUL-terminated ASCII string at offset, capped at
// maxLen bytes (not counting the terminator).
func (b *byteView) readCString(offset, maxLen uint32) (string, error) {
	raw, err := b.ReadBytes(offset, minU32(maxLen, b.size()-offset))
	if err != nil {
		return "", err
	}
	if n := bytes.IndexByte(raw, 0); n >= 0 {
		raw = raw[:n]
	}
	return string(raw), nil
}

// structUnpack decodes size little-endian bytes at offset into iface, the
// same bounds-then-binary.Read pattern the teacher's structUnpack follows.
func (b *byteView) structUnpack(iface interface{}, offset, size uint32) error {
	total := offset + size
	if (total > offset) != (size > 0) {
		return ErrOutsideBoundary
	}
	if offset > b.size() || total > b.size() {
		return ErrOutsideBoundary
	}
	r := bytes.NewReader(b.data[offset:total])
	return binary.Read(r, binary.LittleEndian, iface)
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// cursor tracks a monotonically increasing write offset while an on-disk
// image is assembled, so every structure's placement can be recorded as it
// is written and alignment padding can be inserted without the caller
// tracking offsets by hand.
type cursor struct {
	buf bytes.Buffer
}

func newCursor() *cursor {
	return &cursor{}
}

// offset returns the number of bytes written so far.
func (c *cursor) offset() uint32 {
	return uint32(c.buf.Len())
}

// write appends p verbatim and returns the offset it was written at.
func (c *cursor) write(p []byte) uint32 {
	off := c.offset()
	c.buf.Write(p)
	return off
}

// writeStruct little-endian encodes v and appends it, returning the offset
// it was written at.
func (c *cursor) writeStruct(v interface{}) (uint32, error) {
	off := c.offset()
	if err := binary.Write(&c.buf, binary.LittleEndian, v); err != nil {
		return 0, err
	}
	return off, nil
}

// padTo zero-fills up to the next multiple of alignment.
func (c *cursor) padTo(alignment uint32) {
	target := AlignUp(c.offset(), alignment)
	if target > c.offset() {
		c.buf.Write(make([]byte, target-c.offset()))
	}
}

// padToOffset zero-fills until the cursor reaches offset. It is a no-op if
// the cursor is already past offset.
func (c *cursor) padToOffset(offset uint32) {
	if offset > c.offset() {
		c.buf.Write(make([]byte, offset-c.offset()))
	}
}

func (c *cursor) bytes() []byte {
	return c.buf.Bytes()
}
