package encode

import (
	"context"
	"io"
	"os"
	"sync"
)

// MockEncoder implements Encoder for testing. It copies the source file to
// the destination and records every call.
type MockEncoder struct {
	mu sync.Mutex

	// EncoderName is reported by Name; defaults to "mock".
	EncoderName string

	// Unavailable makes Available report false.
	Unavailable bool

	// FailAll, when set, is returned from every Encode call.
	FailAll error

	calls int
}

// NewMockEncoder returns an available mock encoder.
func NewMockEncoder() *MockEncoder {
	return &MockEncoder{EncoderName: "mock"}
}

func (m *MockEncoder) Name() string {
	if m.EncoderName == "" {
		return "mock"
	}
	return m.EncoderName
}

func (m *MockEncoder) Available() bool {
	return !m.Unavailable
}

func (m *MockEncoder) Encode(_ context.Context, src, dst string, _ float64) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FailAll != nil {
		return m.FailAll
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CallCount returns how many times Encode was invoked.
func (m *MockEncoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
