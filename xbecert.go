// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"golang.org/x/text/encoding/unicode"

	"github.com/openxdk/relink/rlog"
)

// xbeCertificateSize is sizeof(XbeCertificate) on disk.
const xbeCertificateSize = 0x1D0

// titleNameChars is the fixed UTF-16 character count of XbeCertificate's
// title name field.
const titleNameChars = 40

// XbeCertificate is the XBE certificate, present once per image and
// referred to by Header.CertificateAddr.
type XbeCertificate struct {
	Size      uint32
	TimeDate  uint32
	TitleID   uint32
	TitleName [titleNameChars * 2]byte // UTF-16LE, null-padded

	AlternateTitleIDs      [16]uint32
	AllowedMedia           uint32
	GameRegion             uint32
	GameRatings            uint32
	DiskNumber             uint32
	Version                uint32
	LANKey                 [16]byte
	SignatureKey           [16]byte
	AlternateSignatureKeys [16][16]byte
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeTitleName encodes title as UTF-16LE, truncating to titleNameChars
// characters (with a caller-observable warning on truncation per spec
// §4.5.1's "silently truncated with a warning") and null-padding the rest.
func encodeTitleName(title string, log *rlog.Helper) [titleNameChars * 2]byte {
	runes := []rune(title)
	truncated := false
	if len(runes) > titleNameChars {
		runes = runes[:titleNameChars]
		truncated = true
	}
	encoded, _ := utf16le.NewEncoder().String(string(runes))

	var out [titleNameChars * 2]byte
	copy(out[:], encoded)

	if truncated && log != nil {
		log.Warnf("title %q truncated to %d characters", title, titleNameChars)
	}
	return out
}

// decodeTitleName decodes an XbeCertificate's title name field back to a Go
// string, trimming trailing NUL pairs.
func decodeTitleName(raw [titleNameChars * 2]byte) string {
	end := len(raw)
	for end >= 2 && raw[end-2] == 0 && raw[end-1] == 0 {
		end -= 2
	}
	s, err := utf16le.NewDecoder().String(string(raw[:end]))
	if err != nil {
		return ""
	}
	return s
}

// parseXbeCertificate reads an XbeCertificate at offset.
func parseXbeCertificate(v *byteView, offset uint32) (XbeCertificate, error) {
	var cert XbeCertificate
	err := v.structUnpack(&cert, offset, xbeCertificateSize)
	return cert, err
}

// emitXbeCertificate appends cert and returns the offset it was written at.
func emitXbeCertificate(c *cursor, cert XbeCertificate) (uint32, error) {
	return c.writeStruct(&cert)
}
