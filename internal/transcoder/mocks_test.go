package transcoder

import (
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/greatbody/charlock/internal/service"
)

type mockDetection struct {
	mock.Mock
}

func (m *mockDetection) OpenSession(opts service.SessionOptions) (service.Session, error) {
	args := m.Called(opts)
	sess, _ := args.Get(0).(service.Session)
	return sess, args.Error(1)
}

func (m *mockDetection) DetectableCharsets() ([]string, error) {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) SetText(buf []byte) error {
	return m.Called(buf).Error(0)
}

func (m *mockSession) DetectBest() (service.Match, error) {
	args := m.Called()
	match, _ := args.Get(0).(service.Match)
	return match, args.Error(1)
}

func (m *mockSession) DetectAll() ([]service.Match, error) {
	args := m.Called()
	matches, _ := args.Get(0).([]service.Match)
	return matches, args.Error(1)
}

func (m *mockSession) Close() error {
	return m.Called().Error(0)
}

type mockConversion struct {
	mock.Mock
}

func (m *mockConversion) OpenCodec(name string) (service.Codec, error) {
	args := m.Called(name)
	codec, _ := args.Get(0).(service.Codec)
	return codec, args.Error(1)
}

func (m *mockConversion) Convert(target, source string, dst, src []byte) (int, error) {
	args := m.Called(target, source, dst, src)
	return args.Int(0), args.Error(1)
}

type mockCodec struct {
	mock.Mock
	name string
}

func (m *mockCodec) Name() string { return m.name }

func (m *mockCodec) Close() error {
	return m.Called().Error(0)
}

// mapResolver resolves names from a fixed table and counts lookups.
type mapResolver struct {
	names map[string]string
	calls atomic.Int32
}

func (r *mapResolver) CanonicalName(name string) (string, bool) {
	r.calls.Add(1)
	canonical, ok := r.names[name]
	return canonical, ok
}

func newResolver() *mapResolver {
	return &mapResolver{names: map[string]string{
		"ISO-8859-1": "ISO-8859-1",
		"ISO-8859-2": "ISO-8859-2",
		"UTF-8":      "UTF-8",
		"GB18030":    "GB18030",
	}}
}
