package backend

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/text/transform"

	"github.com/greatbody/charlock/internal/service"
)

var (
	// ErrShortBuffer is returned when the converted output does not fit the
	// destination buffer.
	ErrShortBuffer = errors.New("destination buffer too small")
	// ErrCodecClosed is returned when a codec is closed twice.
	ErrCodecClosed = errors.New("codec already closed")
)

// XTextService is a service.Conversion over golang.org/x/text.
type XTextService struct {
	registry *Registry
}

var _ service.Conversion = (*XTextService)(nil)

// NewXTextService returns a conversion service resolving names through
// registry. A nil registry uses NewRegistry.
func NewXTextService(registry *Registry) *XTextService {
	if registry == nil {
		registry = NewRegistry()
	}
	return &XTextService{registry: registry}
}

type codec struct {
	name   string
	closed atomic.Bool
}

func (c *codec) Name() string { return c.name }

func (c *codec) Close() error {
	if c.closed.Swap(true) {
		return ErrCodecClosed
	}
	return nil
}

// OpenCodec returns a handle on the named encoding.
func (s *XTextService) OpenCodec(name string) (service.Codec, error) {
	if _, err := s.registry.Lookup(name); err != nil {
		return nil, err
	}
	return &codec{name: name}, nil
}

// Convert decodes src from source and encodes it as target into dst. It
// never writes past len(dst) and returns -1 on any failure.
func (s *XTextService) Convert(target, source string, dst, src []byte) (int, error) {
	srcEnc, err := s.registry.Lookup(source)
	if err != nil {
		return -1, err
	}
	dstEnc, err := s.registry.Lookup(target)
	if err != nil {
		return -1, err
	}

	t := transform.Chain(srcEnc.NewDecoder(), dstEnc.NewEncoder())
	nDst, nSrc, err := t.Transform(dst, src, true)
	if errors.Is(err, transform.ErrShortDst) {
		return -1, fmt.Errorf("%w: capacity %d", ErrShortBuffer, len(dst))
	}
	if err != nil {
		return -1, err
	}
	if nSrc != len(src) {
		return -1, fmt.Errorf("consumed %d of %d source bytes", nSrc, len(src))
	}

	return nDst, nil
}
