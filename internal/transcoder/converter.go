package transcoder

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/greatbody/charlock/internal/options"
	"github.com/greatbody/charlock/internal/service"
)

const (
	// expansionFactor is the worst-case output/input byte ratio the output
	// buffer is sized for.
	expansionFactor = 4

	// DefaultMaxInputSize bounds the input accepted by Convert.
	DefaultMaxInputSize = 64 * 1024 * 1024
)

// ConvertedBuffer holds converted bytes and the encoding they are in.
type ConvertedBuffer struct {
	Data     []byte
	Encoding string
}

// Converter transcodes buffers between named encodings. It is safe for
// concurrent use; every call opens and closes its own codecs.
type Converter struct {
	conversion   service.Conversion
	logger       *zap.Logger
	maxInputSize int
}

// ConverterOption configures a Converter.
type ConverterOption = options.Option[*Converter]

// WithConverterLogger sets the logger used for debug events.
func WithConverterLogger(logger *zap.Logger) ConverterOption {
	return options.NoError(func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithMaxInputSize bounds the input length Convert accepts. It is clamped so
// the output buffer size cannot overflow.
func WithMaxInputSize(n int) ConverterOption {
	return options.New(func(c *Converter) error {
		if n <= 0 {
			return fmt.Errorf("%w: max input size must be positive, got %d", ErrInvalidArgument, n)
		}
		c.maxInputSize = min(n, math.MaxInt/expansionFactor)
		return nil
	})
}

// NewConverter returns a Converter backed by conversion.
func NewConverter(conversion service.Conversion, opts ...ConverterOption) (*Converter, error) {
	if conversion == nil {
		return nil, invalidArgument("conversion service")
	}

	c := &Converter{
		conversion:   conversion,
		logger:       zap.NewNop(),
		maxInputSize: DefaultMaxInputSize,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// MaxInputSize returns the largest input Convert accepts.
func (c *Converter) MaxInputSize() int { return c.maxInputSize }

// Convert transcodes data from source to target. A nil data or an empty
// encoding name fails with ErrInvalidArgument before any codec is opened.
//
// "UTF-16" as target means big-endian UTF-16BE; "BINARY" as source is read
// as ASCII. The result is tagged with the normalized target name.
func (c *Converter) Convert(data []byte, source, target string) (ConvertedBuffer, error) {
	switch {
	case data == nil:
		return ConvertedBuffer{}, invalidArgument("buffer")
	case source == "":
		return ConvertedBuffer{}, invalidArgument("source encoding")
	case target == "":
		return ConvertedBuffer{}, invalidArgument("target encoding")
	}

	if target == "UTF-16" {
		target = "UTF-16BE"
	}
	if source == BinaryEncoding {
		source = "ASCII"
	}

	if len(data) > c.maxInputSize {
		return ConvertedBuffer{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInputTooLarge, len(data), c.maxInputSize)
	}

	srcCodec, err := c.open(source)
	if err != nil {
		return ConvertedBuffer{}, err
	}
	defer c.release(srcCodec)

	dstCodec, err := c.open(target)
	if err != nil {
		return ConvertedBuffer{}, err
	}
	defer c.release(dstCodec)

	buf := make([]byte, len(data)*expansionFactor)
	n, err := c.conversion.Convert(target, source, buf, data)
	if err != nil || n < 0 {
		if err == nil {
			err = fmt.Errorf("converted length %d", n)
		}
		return ConvertedBuffer{}, &ConversionError{Source: source, Target: target, Err: err}
	}
	if n > len(buf) {
		return ConvertedBuffer{}, &ConversionError{
			Source: source,
			Target: target,
			Err:    fmt.Errorf("converted length %d exceeds capacity %d", n, len(buf)),
		}
	}

	out := make([]byte, n)
	copy(out, buf[:n])
	c.logger.Debug("converted buffer",
		zap.String("source", source),
		zap.String("target", target),
		zap.Int("in", len(data)),
		zap.Int("out", n))

	return ConvertedBuffer{Data: out, Encoding: target}, nil
}

func (c *Converter) open(name string) (service.Codec, error) {
	codec, err := c.conversion.OpenCodec(name)
	if err != nil {
		return nil, &OpenError{Encoding: name, Err: err}
	}
	if codec == nil {
		return nil, &OpenError{Encoding: name, Err: errors.New("invalid codec handle")}
	}
	c.logger.Debug("opened codec", zap.String("encoding", name))

	return codec, nil
}

func (c *Converter) release(codec service.Codec) {
	if err := codec.Close(); err != nil {
		c.logger.Warn("failed to close codec", zap.String("encoding", codec.Name()), zap.Error(err))
	}
}
