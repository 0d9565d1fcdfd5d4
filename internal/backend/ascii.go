package backend

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrNotASCII is returned when encoding a character outside US-ASCII.
var ErrNotASCII = errors.New("character not representable in US-ASCII")

// usASCII decodes as a pass-through, like gitea's ascii quirk, but its
// encoder rejects anything at or above 0x80.
type usASCII struct{}

func (usASCII) NewDecoder() *encoding.Decoder { return encoding.Nop.NewDecoder() }

func (usASCII) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: asciiEncoder{}}
}

type asciiEncoder struct{ transform.NopResetter }

func (asciiEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c >= utf8.RuneSelf {
			return nDst, nSrc, ErrNotASCII
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}
