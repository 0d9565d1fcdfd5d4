// Package backend implements the native text-services boundary in pure Go:
// charset detection on saintfish/chardet and codecs on golang.org/x/text.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ErrUnknownEncoding is returned for names no index can open.
var ErrUnknownEncoding = errors.New("unknown encoding")

type quirk struct {
	enc       encoding.Encoding
	canonical string
}

var (
	asciiQuirk = quirk{usASCII{}, "US-ASCII"}
	gb18030    = quirk{simplifiedchinese.GB18030, "GB18030"}
)

// quirks covers names the indexes either miss or resolve differently from
// what the detector and converter expect. Keys are lower case.
var quirks = map[string]quirk{
	// us-ascii is not handled by ianaindex
	"ascii":            asciiQuirk,
	"us-ascii":         asciiQuirk,
	"iso-ir-6":         asciiQuirk,
	"ansi_x3.4-1968":   asciiQuirk,
	"ansi_x3.4-1986":   asciiQuirk,
	"iso_646.irv:1991": asciiQuirk,
	"iso646-us":        asciiQuirk,
	"us":               asciiQuirk,
	"ibm367":           asciiQuirk,
	"cp367":            asciiQuirk,

	"utf-8":    {unicode.UTF8, "UTF-8"},
	"utf-16":   {unicode.UTF16(unicode.BigEndian, unicode.UseBOM), "UTF-16"},
	"utf-16be": {unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), "UTF-16BE"},
	"utf-16le": {unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), "UTF-16LE"},
	"utf-32":   {utf32.UTF32(utf32.BigEndian, utf32.UseBOM), "UTF-32"},
	"utf-32be": {utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), "UTF-32BE"},
	"utf-32le": {utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), "UTF-32LE"},

	// chardet reports GB18030 with a dash
	"gb-18030": gb18030,
	"gb18030":  gb18030,
}

// Registry resolves encoding names to x/text encodings.
type Registry struct{}

// NewRegistry returns a Registry over the built-in quirks table and the
// IANA and WHATWG indexes.
func NewRegistry() *Registry {
	return &Registry{}
}

// Lookup returns the encoding registered under name. The quirks table is
// consulted first, then the IANA index, then the HTML index.
func (r *Registry) Lookup(name string) (encoding.Encoding, error) {
	enc, _, err := r.lookup(name)
	return enc, err
}

// CanonicalName returns the preferred name of the encoding registered under
// name, or false if the registry cannot open it.
func (r *Registry) CanonicalName(name string) (string, bool) {
	enc, canonical, err := r.lookup(name)
	if err != nil {
		return "", false
	}
	if canonical != "" {
		return canonical, true
	}
	if n, err := ianaindex.MIME.Name(enc); err == nil && n != "" {
		return n, true
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil && n != "" {
		return n, true
	}
	if n, err := htmlindex.Name(enc); err == nil && n != "" {
		return n, true
	}
	return "", false
}

func (r *Registry) lookup(name string) (encoding.Encoding, string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, "", fmt.Errorf("%w: empty name", ErrUnknownEncoding)
	}
	if q, ok := quirks[key]; ok {
		return q.enc, q.canonical, nil
	}

	// ianaindex returns a nil encoding without error for names it knows
	// but x/text does not implement
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && usable(enc) {
		return enc, "", nil
	}
	if enc, err := htmlindex.Get(name); err == nil && usable(enc) {
		return enc, "", nil
	}

	return nil, "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// usable rejects the WHATWG replacement encoding, which htmlindex returns for
// ISO-2022-KR, ISO-2022-CN and other charsets it refuses to decode.
func usable(enc encoding.Encoding) bool {
	return enc != nil && enc != encoding.Replacement
}
