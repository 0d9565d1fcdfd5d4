package transcoder

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrInvalidArgument indicates a required input was missing.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInputTooLarge indicates the input exceeds the converter's size bound.
	ErrInputTooLarge = errors.New("input too large")
	// ErrOpen indicates a codec could not be opened.
	ErrOpen = errors.New("codec open failed")
	// ErrConversion indicates the conversion primitive failed.
	ErrConversion = errors.New("conversion failed")
	// ErrDetection indicates the detection service reported a failure.
	ErrDetection = errors.New("detection failed")
	// ErrBinaryContent indicates text-only processing was asked of binary data.
	ErrBinaryContent = errors.New("binary content")
)

// OpenError reports the encoding name a codec could not be opened for.
type OpenError struct {
	Encoding string
	Err      error
}

func (e *OpenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to open codec %q", e.Encoding)
	}
	return fmt.Sprintf("failed to open codec %q: %v", e.Encoding, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

func (e *OpenError) Is(target error) bool { return target == ErrOpen }

// ConversionError reports a failed conversion between two encodings.
type ConversionError struct {
	Source string
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("conversion from %s to %s failed", e.Source, e.Target)
	}
	return fmt.Sprintf("conversion from %s to %s failed: %v", e.Source, e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// DetectionError wraps a detection service failure with the step that failed.
type DetectionError struct {
	Op  string
	Err error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detection %s: %v", e.Op, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

func (e *DetectionError) Is(target error) bool { return target == ErrDetection }

func invalidArgument(what string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidArgument, what)
}
