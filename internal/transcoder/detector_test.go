package transcoder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greatbody/charlock/internal/service"
)

func newTestDetector(t *testing.T, det *mockDetection, opts ...DetectorOption) *Detector {
	t.Helper()
	d, err := NewDetector(det, newResolver(), opts...)
	require.NoError(t, err)
	return d
}

func expectSession(det *mockDetection, opts service.SessionOptions) *mockSession {
	sess := &mockSession{}
	det.On("OpenSession", opts).Return(sess, nil).Once()
	return sess
}

func TestDetector_Detect_BinarySignaturesSkipService(t *testing.T) {
	inputs := map[string][]byte{
		"png":        {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
		"gif87a":     []byte("GIF87a..."),
		"gif89a":     []byte("GIF89a..."),
		"jpeg":       {0xFF, 0xD8, 0xFF, 0xE0},
		"pdf":        []byte("%PDF-1.4\n"),
		"nul bytes":  []byte("\x00\x00"),
		"executable": []byte("\x7fELF\x02\x01\x01\x00"),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			det := &mockDetection{}
			d := newTestDetector(t, det)

			res, err := d.Detect(data, "")
			require.NoError(t, err)
			assert.Equal(t, Binary, res.Classification)
			assert.Equal(t, BinaryEncoding, res.Encoding)
			assert.Equal(t, 100, res.Confidence)
			assert.Equal(t, BinaryCanonicalName, res.CanonicalName)
			assert.Empty(t, res.Language)
			det.AssertNotCalled(t, "OpenSession", mock.Anything)
		})
	}
}

func TestDetector_Detect_Text(t *testing.T) {
	det := &mockDetection{}
	sess := expectSession(det, service.SessionOptions{})
	sess.On("SetText", []byte("test")).Return(nil).Once()
	sess.On("DetectBest").Return(service.Match{Name: "ISO-8859-1", Language: "en", Confidence: 40}, nil).Once()
	sess.On("Close").Return(nil).Once()

	d := newTestDetector(t, det)
	res, err := d.Detect([]byte("test"), "")
	require.NoError(t, err)

	assert.Equal(t, DetectionResult{
		Encoding:       "ISO-8859-1",
		Confidence:     40,
		Classification: Text,
		Language:       "en",
		CanonicalName:  "ISO-8859-1",
	}, res)
	det.AssertExpectations(t)
	sess.AssertExpectations(t)
}

func TestDetector_Detect_HintIsNotForwarded(t *testing.T) {
	det := &mockDetection{}
	sess := expectSession(det, service.SessionOptions{})
	sess.On("SetText", []byte("test")).Return(nil).Once()
	sess.On("DetectBest").Return(service.Match{Name: "ISO-8859-1", Confidence: 40}, nil).Once()
	sess.On("Close").Return(nil).Once()

	d := newTestDetector(t, det)
	res, err := d.Detect([]byte("test"), "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "ISO-8859-1", res.Encoding)
	sess.AssertExpectations(t)
}

func TestDetector_Detect_UnmappableNameFallsBackToBinary(t *testing.T) {
	det := &mockDetection{}
	sess := expectSession(det, service.SessionOptions{})
	sess.On("SetText", mock.Anything).Return(nil).Once()
	sess.On("DetectBest").Return(service.Match{Name: "ISO-2022-KR", Language: "ko", Confidence: 100}, nil).Once()
	sess.On("Close").Return(nil).Once()

	d := newTestDetector(t, det)
	res, err := d.Detect([]byte("\x1b$)C\x0e!!\x0f"), "")
	require.NoError(t, err)

	assert.Equal(t, "ISO-2022-KR", res.Encoding)
	assert.Equal(t, Text, res.Classification)
	assert.Equal(t, UnknownCanonicalName, res.CanonicalName)
	assert.NotEqual(t, BinaryCanonicalName, res.CanonicalName)
}

func TestDetector_Detect_Errors(t *testing.T) {
	boom := errors.New("native failure")

	t.Run("open session", func(t *testing.T) {
		det := &mockDetection{}
		det.On("OpenSession", mock.Anything).Return(nil, boom).Once()

		_, err := newTestDetector(t, det).Detect([]byte("text"), "")
		require.ErrorIs(t, err, ErrDetection)
		require.ErrorIs(t, err, boom)

		var detErr *DetectionError
		require.ErrorAs(t, err, &detErr)
		assert.Equal(t, "open session", detErr.Op)
	})

	t.Run("nil session", func(t *testing.T) {
		det := &mockDetection{}
		det.On("OpenSession", mock.Anything).Return(nil, nil).Once()

		_, err := newTestDetector(t, det).Detect([]byte("text"), "")
		require.ErrorIs(t, err, ErrDetection)
	})

	t.Run("set text closes session", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", mock.Anything).Return(boom).Once()
		sess.On("Close").Return(nil).Once()

		_, err := newTestDetector(t, det).Detect([]byte("text"), "")
		require.ErrorIs(t, err, ErrDetection)
		require.ErrorIs(t, err, boom)
		sess.AssertExpectations(t)
		sess.AssertNotCalled(t, "DetectBest")
	})

	t.Run("detect best closes session", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", mock.Anything).Return(nil).Once()
		sess.On("DetectBest").Return(nil, boom).Once()
		sess.On("Close").Return(errors.New("close failed")).Once()

		_, err := newTestDetector(t, det).Detect([]byte("text"), "")
		require.ErrorIs(t, err, boom, "original failure wins over close failure")
		var detErr *DetectionError
		require.ErrorAs(t, err, &detErr)
		assert.Equal(t, "detect best", detErr.Op)
		sess.AssertExpectations(t)
	})

	t.Run("close failure after success", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", mock.Anything).Return(nil).Once()
		sess.On("DetectBest").Return(service.Match{Name: "UTF-8", Confidence: 80}, nil).Once()
		sess.On("Close").Return(boom).Once()

		_, err := newTestDetector(t, det).Detect([]byte("text"), "")
		var detErr *DetectionError
		require.ErrorAs(t, err, &detErr)
		assert.Equal(t, "close session", detErr.Op)
	})
}

func TestDetector_DetectAll(t *testing.T) {
	t.Run("caps at ten and drops unnamed candidates", func(t *testing.T) {
		matches := make([]service.Match, 0, 14)
		for i := 0; i < 14; i++ {
			name := fmt.Sprintf("charset-%d", i)
			if i == 2 || i == 5 {
				name = ""
			}
			matches = append(matches, service.Match{Name: name, Confidence: 90 - i})
		}

		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", mock.Anything).Return(nil).Once()
		sess.On("DetectAll").Return(matches, nil).Once()
		sess.On("Close").Return(nil).Once()

		results, err := newTestDetector(t, det).DetectAll([]byte("test"), "")
		require.NoError(t, err)
		require.Len(t, results, 8)
		for i, r := range results {
			assert.NotEmpty(t, r.Encoding)
			assert.Equal(t, Text, r.Classification)
			if i > 0 {
				assert.Less(t, r.Confidence, results[i-1].Confidence, "service order is kept")
			}
		}
		assert.Equal(t, "charset-9", results[len(results)-1].Encoding)
	})

	t.Run("reads only the reported candidates", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", mock.Anything).Return(nil).Once()
		sess.On("DetectAll").Return([]service.Match{
			{Name: "ISO-8859-1", Language: "en", Confidence: 40},
			{Name: "ISO-8859-2", Language: "ro", Confidence: 20},
			{Name: "UTF-8", Confidence: 10},
		}, nil).Once()
		sess.On("Close").Return(nil).Once()

		results, err := newTestDetector(t, det).DetectAll([]byte("test"), "UTF-8")
		require.NoError(t, err)
		require.Len(t, results, 3)

		names := make([]string, 0, len(results))
		for _, r := range results {
			names = append(names, r.Encoding)
		}
		assert.Equal(t, []string{"ISO-8859-1", "ISO-8859-2", "UTF-8"}, names)
		assert.Equal(t, "ro", results[1].Language)
	})

	t.Run("queries the service for binary content", func(t *testing.T) {
		png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", png).Return(nil).Once()
		sess.On("DetectAll").Return(nil, nil).Once()
		sess.On("Close").Return(nil).Once()

		results, err := newTestDetector(t, det).DetectAll(png, "")
		require.NoError(t, err)
		assert.Empty(t, results)
		det.AssertExpectations(t)
	})

	t.Run("service failure", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", mock.Anything).Return(nil).Once()
		sess.On("DetectAll").Return(nil, errors.New("bad status")).Once()
		sess.On("Close").Return(nil).Once()

		_, err := newTestDetector(t, det).DetectAll([]byte("x"), "")
		require.ErrorIs(t, err, ErrDetection)
		sess.AssertExpectations(t)
	})
}

func TestDetector_Options(t *testing.T) {
	t.Run("limit bounds submitted text", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{})
		sess.On("SetText", []byte("abcd")).Return(nil).Once()
		sess.On("DetectBest").Return(service.Match{Name: "UTF-8", Confidence: 10}, nil).Once()
		sess.On("Close").Return(nil).Once()

		d := newTestDetector(t, det, WithLimit(4))
		assert.Equal(t, 4, d.Limit())
		_, err := d.Detect([]byte("abcdefgh"), "")
		require.NoError(t, err)
		sess.AssertExpectations(t)
	})

	t.Run("strip tags reaches the session", func(t *testing.T) {
		det := &mockDetection{}
		sess := expectSession(det, service.SessionOptions{StripTags: true})
		sess.On("SetText", mock.Anything).Return(nil).Once()
		sess.On("DetectBest").Return(service.Match{Name: "UTF-8", Confidence: 80}, nil).Once()
		sess.On("Close").Return(nil).Once()

		d := newTestDetector(t, det)
		assert.False(t, d.StripTags())
		d.SetStripTags(true)
		assert.True(t, d.StripTags())

		res, err := d.Detect([]byte("<div ascii_attribute='some more ascii'>λ, λ, λ</div>"), "")
		require.NoError(t, err)
		assert.Equal(t, "UTF-8", res.Encoding)
		det.AssertExpectations(t)

		d.SetStripTags(false)
		assert.False(t, d.StripTags())
	})

	t.Run("binary scan length", func(t *testing.T) {
		d := newTestDetector(t, &mockDetection{}, WithBinaryScanLength(2))
		assert.Equal(t, 2, d.BinaryScanLength())
		assert.Equal(t, Text, d.Type([]byte("ab\x00")))
		assert.Equal(t, Binary, d.Type([]byte("a\x00")))
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := NewDetector(&mockDetection{}, nil, WithLimit(-1))
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = NewDetector(&mockDetection{}, nil, WithBinaryScanLength(0))
		require.ErrorIs(t, err, ErrInvalidArgument)

		_, err = NewDetector(nil, nil)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestDetector_NilResolver(t *testing.T) {
	det := &mockDetection{}
	sess := expectSession(det, service.SessionOptions{})
	sess.On("SetText", mock.Anything).Return(nil).Once()
	sess.On("DetectBest").Return(service.Match{Name: "UTF-8", Confidence: 80}, nil).Once()
	sess.On("Close").Return(nil).Once()

	d, err := NewDetector(det, nil)
	require.NoError(t, err)
	res, err := d.Detect([]byte("plain"), "")
	require.NoError(t, err)
	assert.Equal(t, UnknownCanonicalName, res.CanonicalName)
}

func TestClassification_String(t *testing.T) {
	assert.Equal(t, "text", Text.String())
	assert.Equal(t, "binary", Binary.String())
	assert.Equal(t, "Classification(7)", Classification(7).String())

	b, err := Binary.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "binary", string(b))
}
