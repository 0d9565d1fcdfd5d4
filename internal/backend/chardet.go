package backend

import (
	"errors"

	"github.com/saintfish/chardet"

	"github.com/greatbody/charlock/internal/service"
)

var (
	// ErrNoMatch is returned by DetectBest when no charset scored.
	ErrNoMatch = errors.New("no charset matched")
	// ErrSessionClosed is returned for calls on a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrNoText is returned when detection runs before SetText.
	ErrNoText = errors.New("no text submitted")
)

// detectableCharsets follows the chardet recognizer order, one entry per
// reported charset name.
var detectableCharsets = []string{
	"UTF-8",
	"UTF-16BE",
	"UTF-16LE",
	"UTF-32BE",
	"UTF-32LE",
	"ISO-8859-1",
	"ISO-8859-2",
	"ISO-8859-5",
	"ISO-8859-6",
	"ISO-8859-7",
	"ISO-8859-8-I",
	"ISO-8859-8",
	"windows-1251",
	"windows-1256",
	"KOI8-R",
	"ISO-8859-9",
	"Shift_JIS",
	"GB-18030",
	"EUC-JP",
	"EUC-KR",
	"Big5",
	"ISO-2022-JP",
	"ISO-2022-KR",
	"ISO-2022-CN",
	"IBM424_rtl",
	"IBM424_ltr",
	"IBM420_rtl",
	"IBM420_ltr",
}

// ChardetService is a service.Detection over saintfish/chardet.
type ChardetService struct{}

var _ service.Detection = (*ChardetService)(nil)

// NewChardetService returns a detection service.
func NewChardetService() *ChardetService {
	return &ChardetService{}
}

// OpenSession returns a session; StripTags selects the HTML detector.
func (s *ChardetService) OpenSession(opts service.SessionOptions) (service.Session, error) {
	detector := chardet.NewTextDetector()
	if opts.StripTags {
		detector = chardet.NewHtmlDetector()
	}
	return &chardetSession{detector: detector}, nil
}

// DetectableCharsets lists every charset name a session can report.
func (s *ChardetService) DetectableCharsets() ([]string, error) {
	out := make([]string, len(detectableCharsets))
	copy(out, detectableCharsets)
	return out, nil
}

type chardetSession struct {
	detector *chardet.Detector
	text     []byte
	hasText  bool
	closed   bool
}

func (s *chardetSession) SetText(buf []byte) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.text = buf
	s.hasText = true
	return nil
}

func (s *chardetSession) ready() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.hasText {
		return ErrNoText
	}
	return nil
}

func (s *chardetSession) DetectBest() (service.Match, error) {
	if err := s.ready(); err != nil {
		return service.Match{}, err
	}
	r, err := s.detector.DetectBest(s.text)
	if errors.Is(err, chardet.NotDetectedError) {
		return service.Match{}, ErrNoMatch
	}
	if err != nil {
		return service.Match{}, err
	}
	return toMatch(*r), nil
}

func (s *chardetSession) DetectAll() ([]service.Match, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	results, err := s.detector.DetectAll(s.text)
	if errors.Is(err, chardet.NotDetectedError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	matches := make([]service.Match, len(results))
	for i, r := range results {
		matches[i] = toMatch(r)
	}
	return matches, nil
}

func (s *chardetSession) Close() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.text = nil
	return nil
}

func toMatch(r chardet.Result) service.Match {
	return service.Match{
		Name:       r.Charset,
		Language:   r.Language,
		Confidence: r.Confidence,
	}
}
