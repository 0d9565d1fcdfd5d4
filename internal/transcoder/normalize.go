package transcoder

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalizer converts text of unknown encoding to UTF-8.
type Normalizer struct {
	detector  *Detector
	converter *Converter
}

// NewNormalizer pairs a detector with a converter.
func NewNormalizer(detector *Detector, converter *Converter) *Normalizer {
	return &Normalizer{detector: detector, converter: converter}
}

// NormalizeToUTF8 detects the encoding of data and returns it as UTF-8.
// A leading UTF-8 BOM is removed. Binary content fails with ErrBinaryContent.
func (n *Normalizer) NormalizeToUTF8(data []byte) ([]byte, error) {
	res, err := n.detector.Detect(data, "")
	if err != nil {
		return nil, err
	}
	if res.Classification == Binary {
		return nil, fmt.Errorf("%w: cannot normalize to UTF-8", ErrBinaryContent)
	}

	if strings.EqualFold(res.Encoding, "UTF-8") {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	converted, err := n.converter.Convert(data, res.Encoding, "UTF-8")
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(converted.Data, utf8BOM), nil
}

// NormalizeReader reads r to the end and returns a reader over its UTF-8
// form. Detection needs the whole input, so nothing is streamed.
func (n *Normalizer) NormalizeReader(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, err := n.NormalizeToUTF8(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}
