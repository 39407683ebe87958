package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/stockroom/internal/service"
)

// MockWriter is a mock implementation of service.ReportWriter for testing.
type MockWriter struct {
	WriteFunc  func(ctx context.Context, ws service.WorkingSet) error
	WriteCalls []service.WorkingSet
	mu         sync.Mutex
}

var _ service.ReportWriter = (*MockWriter)(nil)

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records ws and delegates to WriteFunc when set.
func (m *MockWriter) Write(ctx context.Context, ws service.WorkingSet) error {
	m.mu.Lock()
	m.WriteCalls = append(m.WriteCalls, ws)
	fn := m.WriteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, ws)
	}
	return nil
}

// Calls returns a copy of every working set written so far.
func (m *MockWriter) Calls() []service.WorkingSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.WorkingSet(nil), m.WriteCalls...)
}

// SetWriteError makes every subsequent Write return err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteFunc = func(context.Context, service.WorkingSet) error {
		return err
	}
}
