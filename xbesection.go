// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

// xbeSectionHeaderSize is sizeof(XbeSectionHeader) on disk.
const xbeSectionHeaderSize = 0x38

// XbeSectionHeader is one entry of the XBE section-header table.
type XbeSectionHeader struct {
	Flags uint32

	VirtualAddr uint32
	VirtualSize uint32
	RawAddr     uint32
	SizeOfRaw   uint32

	SectionNameAddr        uint32
	SectionReferenceCount  uint32
	HeadSharedRefCountAddr uint32
	TailSharedRefCountAddr uint32

	SectionDigest [20]byte // SHA-1
}

// XbeSection pairs a section header with its resolved name and raw bytes.
type XbeSection struct {
	Header XbeSectionHeader
	Name   string
	Data   []byte
}

func (h XbeSectionHeader) executable() bool { return h.Flags&XbeSectionExecutable != 0 }
func (h XbeSectionHeader) writable() bool   { return h.Flags&XbeSectionWritable != 0 }

// parseXbeSectionTable reads count consecutive XbeSectionHeader entries.
func parseXbeSectionTable(v *byteView, offset uint32, count uint32) ([]XbeSectionHeader, error) {
	headers := make([]XbeSectionHeader, count)
	for i := range headers {
		off := offset + uint32(i)*xbeSectionHeaderSize
		if err := v.structUnpack(&headers[i], off, xbeSectionHeaderSize); err != nil {
			return nil, err
		}
	}
	return headers, nil
}

// emitXbeSectionTable appends headers in order.
func emitXbeSectionTable(c *cursor, headers []XbeSectionHeader) error {
	for i := range headers {
		if _, err := c.writeStruct(&headers[i]); err != nil {
			return err
		}
	}
	return nil
}
