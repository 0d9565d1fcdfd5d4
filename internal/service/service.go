// Package service declares the native text-services boundary: charset
// detection sessions, codec handles and local encoding-name resolution.
//
// Implementations live in internal/backend. The transcoder package depends
// only on these interfaces, so a backend can be swapped without touching the
// detection and conversion logic.
package service

// Match is one detection candidate reported by a session.
type Match struct {
	Name       string
	Language   string
	Confidence int
}

// SessionOptions configures a detection session at open time.
type SessionOptions struct {
	// StripTags asks the detector to ignore markup before scoring.
	StripTags bool
}

// Session is a single detection round-trip. It must be closed after use.
type Session interface {
	// SetText submits the bytes to be examined.
	SetText(buf []byte) error
	// DetectBest returns the highest ranked candidate.
	DetectBest() (Match, error)
	// DetectAll returns every candidate in service order. The slice length
	// is the authoritative candidate count.
	DetectAll() ([]Match, error)
	Close() error
}

// Detection opens detection sessions.
type Detection interface {
	OpenSession(opts SessionOptions) (Session, error)
	// DetectableCharsets enumerates every charset name a session can report.
	DetectableCharsets() ([]string, error)
}

// Codec is an open handle on one named character encoding.
type Codec interface {
	Name() string
	Close() error
}

// Conversion opens codecs and transcodes between named encodings.
type Conversion interface {
	OpenCodec(name string) (Codec, error)
	// Convert transcodes src from the source encoding into dst, which is used
	// up to its length. It returns the number of bytes written; a negative
	// count signals failure.
	Convert(target, source string, dst, src []byte) (int, error)
}

// NameResolver maps a detector charset name to the local registry's
// canonical name for the same encoding.
type NameResolver interface {
	CanonicalName(name string) (string, bool)
}
