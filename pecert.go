// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relink

import (
	"go.mozilla.org/pkcs7"
)

// winCertificateHeaderSize is sizeof(WIN_CERTIFICATE) minus its variable
// length payload: a 4-byte Length, a 2-byte Revision, a 2-byte
// CertificateType.
const winCertificateHeaderSize = 8

// WinCertRevision2_0 is the current WIN_CERTIFICATE revision. The revision
// field is not checked: a table of any revision is carried through as Raw.
const WinCertRevision2_0 = 0x0200

// WinCertTypePKCSSignedData marks a WIN_CERTIFICATE payload as a PKCS#7
// SignedData blob, the only certificate type this engine inspects.
const WinCertTypePKCSSignedData = 0x0002

// winCertificateHeader is WIN_CERTIFICATE without its trailing bCertificate
// payload.
type winCertificateHeader struct {
	Length          uint32
	Revision        uint16
	CertificateType uint16
}

// PECertificate is the PE Certificate Table data directory's content: the
// raw WIN_CERTIFICATE entry, decoded only far enough to inspect it. This
// engine never generates or validates a signature (spec Non-goal: "signing
// or validating cryptographic integrity of a PE"); a PE's certificate table
// is carried through on a PE<->PE-shaped round trip (PEImage.Emit writes
// back exactly what Raw holds) and dropped on any translation that
// produces an XBE, since the XBE format has no equivalent directory.
type PECertificate struct {
	Header winCertificateHeader

	// Content is the decoded PKCS#7 SignedData structure, populated only
	// when Header.CertificateType is WinCertTypePKCSSignedData and parsing
	// succeeds. A decode failure is not fatal to loading the PE: Raw still
	// holds the untouched bytes and Content is left zero.
	Content *pkcs7.PKCS7

	// Raw is the exact bytes of the directory, header included, as read
	// from the file. Emit writes this back unmodified.
	Raw []byte
}

// parseCertificate reads the Certificate Table data directory. Unlike every
// other directory this engine resolves, the certificate directory's
// VirtualAddress is a file offset, not an RVA: §4.6 of the Microsoft PE
// spec carves out this one exception.
func parseCertificate(v *byteView, dir DataDirectory) (*PECertificate, error) {
	if dir.Size == 0 || dir.VirtualAddress == 0 {
		return nil, nil
	}
	raw, err := v.ReadBytes(dir.VirtualAddress, dir.Size)
	if err != nil {
		return nil, err
	}

	cert := &PECertificate{Raw: raw}
	if err := v.structUnpack(&cert.Header, dir.VirtualAddress, winCertificateHeaderSize); err != nil {
		return cert, nil
	}
	if cert.Header.CertificateType != WinCertTypePKCSSignedData {
		return cert, nil
	}
	payload := raw[winCertificateHeaderSize:]
	if p7, err := pkcs7.Parse(payload); err == nil {
		cert.Content = p7
	}
	return cert, nil
}

// emitCertificate appends cert.Raw verbatim, padded to an 8-byte boundary
// per the WIN_CERTIFICATE alignment rule, and returns its file offset and
// its unpadded length, len(cert.Raw).
func emitCertificate(c *cursor, cert *PECertificate) (offset, size uint32) {
	offset = c.offset()
	c.write(cert.Raw)
	c.padTo(8)
	return offset, uint32(len(cert.Raw))
}
