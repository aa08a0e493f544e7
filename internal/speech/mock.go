package speech

import (
	"context"
	"sync"
)

// MockEngine implements Engine for testing. It records every synthesized
// text and can be configured to fail for specific inputs or entirely.
type MockEngine struct {
	mu sync.Mutex

	// EngineName is reported by Name; defaults to "mock".
	EngineName string

	// Unavailable makes Available report false.
	Unavailable bool

	// FailAll, when set, is returned from every Synthesize call.
	FailAll error

	// FailFor maps exact segment texts to errors, simulating a subprocess
	// exiting non-zero for a single segment.
	FailFor map[string]error

	calls []string
}

// NewMockEngine returns an available mock engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{EngineName: "mock"}
}

func (m *MockEngine) Name() string {
	if m.EngineName == "" {
		return "mock"
	}
	return m.EngineName
}

func (m *MockEngine) Available() bool {
	return !m.Unavailable
}

// Synthesize returns deterministic fake WAV bytes derived from the text.
func (m *MockEngine) Synthesize(_ context.Context, text string, _ VoiceParameters) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.FailAll != nil {
		return nil, m.FailAll
	}
	if err, ok := m.FailFor[text]; ok {
		return nil, err
	}
	return append([]byte("RIFFmock"), []byte(text)...), nil
}

// Calls returns the texts synthesized so far, in call order.
func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Synthesize was invoked.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
