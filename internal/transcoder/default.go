package transcoder

import (
	"fmt"
	"sync"

	"github.com/greatbody/charlock/internal/backend"
)

var (
	defaultRegistry = backend.NewRegistry()

	defaultDetector = sync.OnceValue(func() *Detector {
		d, err := NewDetector(backend.NewChardetService(), defaultRegistry)
		if err != nil {
			panic(fmt.Sprintf("transcoder: default detector: %v", err))
		}
		return d
	})
	defaultConverter = sync.OnceValue(func() *Converter {
		c, err := NewConverter(backend.NewXTextService(defaultRegistry))
		if err != nil {
			panic(fmt.Sprintf("transcoder: default converter: %v", err))
		}
		return c
	})
)

// Detect runs Detector.Detect on a shared detector over the built-in
// backends.
func Detect(data []byte, hint string) (DetectionResult, error) {
	return defaultDetector().Detect(data, hint)
}

// DetectAll runs Detector.DetectAll on the shared detector.
func DetectAll(data []byte, hint string) ([]DetectionResult, error) {
	return defaultDetector().DetectAll(data, hint)
}

// SupportedEncodings lists the shared detector's supported encodings.
func SupportedEncodings() ([]string, error) {
	return defaultDetector().SupportedEncodings()
}

// Convert runs Converter.Convert on a shared converter over the built-in
// backends.
func Convert(data []byte, source, target string) (ConvertedBuffer, error) {
	return defaultConverter().Convert(data, source, target)
}

// NormalizeToUTF8 normalizes data with the shared detector and converter.
func NormalizeToUTF8(data []byte) ([]byte, error) {
	return NewNormalizer(defaultDetector(), defaultConverter()).NormalizeToUTF8(data)
}
