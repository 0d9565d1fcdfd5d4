package transcoder

import "bytes"

// DefaultBinaryScanLength bounds the NUL-byte scan on large buffers.
const DefaultBinaryScanLength = 1024 * 1024

var (
	postscriptMagic = []byte("%!PS-Adobe-")
	pngMagic        = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	gif87Magic      = []byte("GIF87a")
	gif89Magic      = []byte("GIF89a")
	pdfMagic        = []byte("%PDF-")
	utf32BEBOM      = []byte{0x00, 0x00, 0xFE, 0xFF}
	utf32LEBOM      = []byte{0xFF, 0xFE, 0x00, 0x00}
	jpegMagic       = []byte{0xFF, 0xD8, 0xFF}
	utf16BEBOM      = []byte{0xFE, 0xFF}
	utf16LEBOM      = []byte{0xFF, 0xFE}
)

// IsBinary reports whether data looks like binary content, scanning at most
// DefaultBinaryScanLength bytes for NULs.
func IsBinary(data []byte) bool {
	return isBinary(data, DefaultBinaryScanLength)
}

// isBinary evaluates the signature rules in order; the first one that fires
// decides. The UTF-32LE BOM starts with the UTF-16LE BOM, so it is checked
// first. A non-positive scanLen scans the whole buffer.
func isBinary(data []byte, scanLen int) bool {
	n := len(data)

	if n > 10 && bytes.HasPrefix(data, postscriptMagic) {
		return false
	}
	if n > 7 && bytes.HasPrefix(data, pngMagic) {
		return true
	}
	if n > 5 && (bytes.HasPrefix(data, gif87Magic) || bytes.HasPrefix(data, gif89Magic)) {
		return true
	}
	if n > 4 && bytes.HasPrefix(data, pdfMagic) {
		return true
	}
	if n > 3 && (bytes.HasPrefix(data, utf32BEBOM) || bytes.HasPrefix(data, utf32LEBOM)) {
		return false
	}
	if n > 2 && bytes.HasPrefix(data, jpegMagic) {
		return true
	}
	if n > 1 && (bytes.HasPrefix(data, utf16BEBOM) || bytes.HasPrefix(data, utf16LEBOM)) {
		return false
	}

	if scanLen <= 0 || scanLen > n {
		scanLen = n
	}
	return bytes.IndexByte(data[:scanLen], 0x00) >= 0
}
