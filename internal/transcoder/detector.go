package transcoder

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/greatbody/charlock/internal/options"
	"github.com/greatbody/charlock/internal/service"
)

const (
	// BinaryEncoding is the encoding reported for binary content.
	BinaryEncoding = "BINARY"
	// BinaryCanonicalName is the canonical name reported for binary content.
	BinaryCanonicalName = "octet-stream"
	// UnknownCanonicalName is reported for text whose charset has no local
	// equivalent.
	UnknownCanonicalName = "binary"

	// MaxResults caps the number of candidates read from DetectAll.
	MaxResults = 10
)

// Classification tells binary content from text.
type Classification int

const (
	Text Classification = iota
	Binary
)

func (c Classification) String() string {
	switch c {
	case Binary:
		return "binary"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// DetectionResult describes one detected encoding.
type DetectionResult struct {
	Encoding       string         `json:"encoding"`
	Confidence     int            `json:"confidence"`
	Classification Classification `json:"type"`
	Language       string         `json:"language,omitempty"`
	CanonicalName  string         `json:"canonical_name"`
}

func binaryResult() DetectionResult {
	return DetectionResult{
		Encoding:       BinaryEncoding,
		Confidence:     100,
		Classification: Binary,
		CanonicalName:  BinaryCanonicalName,
	}
}

// Detector classifies buffers and asks the detection service for their
// character encoding. It is safe for concurrent use; every call opens and
// closes its own session.
type Detector struct {
	detection service.Detection
	catalog   *Catalog
	logger    *zap.Logger

	stripTags  atomic.Bool
	limit      int
	scanLength int
}

// DetectorOption configures a Detector.
type DetectorOption = options.Option[*Detector]

// WithDetectorLogger sets the logger used for debug events.
func WithDetectorLogger(logger *zap.Logger) DetectorOption {
	return options.NoError(func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	})
}

// WithStripTags makes sessions ignore markup before scoring.
func WithStripTags(enabled bool) DetectorOption {
	return options.NoError(func(d *Detector) {
		d.stripTags.Store(enabled)
	})
}

// WithLimit bounds the number of bytes submitted to the detection service.
// Zero means unbounded.
func WithLimit(n int) DetectorOption {
	return options.New(func(d *Detector) error {
		if n < 0 {
			return fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidArgument, n)
		}
		d.limit = n
		return nil
	})
}

// WithBinaryScanLength sets how many leading bytes are scanned for NULs.
func WithBinaryScanLength(n int) DetectorOption {
	return options.New(func(d *Detector) error {
		if n <= 0 {
			return fmt.Errorf("%w: binary scan length must be positive, got %d", ErrInvalidArgument, n)
		}
		d.scanLength = n
		return nil
	})
}

// NewDetector returns a Detector backed by detection. resolver supplies
// canonical names and may be nil, in which case every text result carries
// UnknownCanonicalName.
func NewDetector(detection service.Detection, resolver service.NameResolver, opts ...DetectorOption) (*Detector, error) {
	if detection == nil {
		return nil, invalidArgument("detection service")
	}

	d := &Detector{
		detection:  detection,
		catalog:    NewCatalog(detection, resolver),
		logger:     zap.NewNop(),
		scanLength: DefaultBinaryScanLength,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// StripTags reports whether markup filtering is enabled.
func (d *Detector) StripTags() bool { return d.stripTags.Load() }

// SetStripTags toggles markup filtering for subsequent calls.
func (d *Detector) SetStripTags(enabled bool) { d.stripTags.Store(enabled) }

// Limit returns the submission cap; zero means unbounded.
func (d *Detector) Limit() int { return d.limit }

// BinaryScanLength returns how many leading bytes are scanned for NULs.
func (d *Detector) BinaryScanLength() int { return d.scanLength }

// Catalog returns the detector's encoding catalog.
func (d *Detector) Catalog() *Catalog { return d.catalog }

// SupportedEncodings lists the encoding names the detector recognizes.
func (d *Detector) SupportedEncodings() ([]string, error) {
	return d.catalog.Supported()
}

// IsBinary reports whether data would be classified as binary by Detect.
func (d *Detector) IsBinary(data []byte) bool {
	return isBinary(data, d.scanLength)
}

// Type classifies data without consulting the detection service.
func (d *Detector) Type(data []byte) Classification {
	if d.IsBinary(data) {
		return Binary
	}
	return Text
}

// Detect returns the single best encoding for data. Binary content is
// recognized locally and never reaches the detection service. hint is
// accepted for API compatibility and is not forwarded.
func (d *Detector) Detect(data []byte, hint string) (DetectionResult, error) {
	if d.IsBinary(data) {
		d.logger.Debug("binary content short-circuit", zap.Int("length", len(data)))
		return binaryResult(), nil
	}

	var match service.Match
	err := d.withSession(data, func(sess service.Session) error {
		m, err := sess.DetectBest()
		if err != nil {
			return &DetectionError{Op: "detect best", Err: err}
		}
		match = m
		return nil
	})
	if err != nil {
		return DetectionResult{}, err
	}

	res := d.textResult(match)
	d.logger.Debug("detected encoding",
		zap.String("encoding", res.Encoding),
		zap.Int("confidence", res.Confidence),
		zap.String("language", res.Language),
		zap.String("canonical", res.CanonicalName),
		zap.String("hint", hint))

	return res, nil
}

// DetectAll returns up to MaxResults candidates in the order the detection
// service ranks them. Unlike Detect it always queries the service, even for
// content that looks binary. Candidates without a name are dropped.
func (d *Detector) DetectAll(data []byte, hint string) ([]DetectionResult, error) {
	var matches []service.Match
	err := d.withSession(data, func(sess service.Session) error {
		m, err := sess.DetectAll()
		if err != nil {
			return &DetectionError{Op: "detect all", Err: err}
		}
		matches = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	results := make([]DetectionResult, 0, len(matches))
	for _, m := range matches {
		if m.Name == "" {
			continue
		}
		results = append(results, d.textResult(m))
	}
	d.logger.Debug("detected candidates",
		zap.Int("count", len(results)),
		zap.String("hint", hint))

	return results, nil
}

func (d *Detector) textResult(m service.Match) DetectionResult {
	canonical, ok := d.catalog.CanonicalName(m.Name)
	if !ok {
		canonical = UnknownCanonicalName
	}
	return DetectionResult{
		Encoding:       m.Name,
		Confidence:     m.Confidence,
		Classification: Text,
		Language:       m.Language,
		CanonicalName:  canonical,
	}
}

// withSession opens a session, submits data and runs fn. The session is
// closed on every path.
func (d *Detector) withSession(data []byte, fn func(service.Session) error) (err error) {
	sess, err := d.detection.OpenSession(service.SessionOptions{StripTags: d.stripTags.Load()})
	if err != nil {
		return &DetectionError{Op: "open session", Err: err}
	}
	if sess == nil {
		return &DetectionError{Op: "open session", Err: errors.New("nil session")}
	}
	defer func() {
		cerr := sess.Close()
		if cerr == nil {
			return
		}
		if err != nil {
			d.logger.Warn("failed to close detection session", zap.Error(cerr))
			return
		}
		err = &DetectionError{Op: "close session", Err: cerr}
	}()

	if d.limit > 0 && len(data) > d.limit {
		data = data[:d.limit]
	}
	if err := sess.SetText(data); err != nil {
		return &DetectionError{Op: "set text", Err: err}
	}

	return fn(sess)
}
