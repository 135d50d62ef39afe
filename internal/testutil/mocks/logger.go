// Package mocks provides shared mock implementations for testing.
package mocks

import (
	"sync"

	"github.com/kevin07696/error-mapping/internal/domain/ports"
)

// MockLogger is a capturing implementation of ports.Logger for testing.
// It is safe for concurrent use; child loggers from With share the captured calls.
type MockLogger struct {
	mu     *sync.Mutex
	calls  *[]LogCall
	fields []ports.Field
}

// LogCall represents a captured log call
type LogCall struct {
	Level   string
	Message string
	Fields  []ports.Field
}

// NewMockLogger creates a new mock logger
func NewMockLogger() *MockLogger {
	return &MockLogger{mu: &sync.Mutex{}, calls: &[]LogCall{}}
}

// Info logs an info message
func (m *MockLogger) Info(msg string, fields ...ports.Field) { m.record("info", msg, fields) }

// Error logs an error message
func (m *MockLogger) Error(msg string, fields ...ports.Field) { m.record("error", msg, fields) }

// Warn logs a warning message
func (m *MockLogger) Warn(msg string, fields ...ports.Field) { m.record("warn", msg, fields) }

// Debug logs a debug message
func (m *MockLogger) Debug(msg string, fields ...ports.Field) { m.record("debug", msg, fields) }

// With returns a logger that prepends fields to every captured call
func (m *MockLogger) With(fields ...ports.Field) ports.Logger {
	merged := append(append([]ports.Field{}, m.fields...), fields...)
	return &MockLogger{mu: m.mu, calls: m.calls, fields: merged}
}

func (m *MockLogger) record(level, msg string, fields []ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := append(append([]ports.Field{}, m.fields...), fields...)
	*m.calls = append(*m.calls, LogCall{Level: level, Message: msg, Fields: all})
}

// Calls returns the captured calls at level, or all calls when level is empty
func (m *MockLogger) Calls(level string) []LogCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogCall
	for _, c := range *m.calls {
		if level == "" || c.Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Field returns the value of key in the call, or nil
func (c LogCall) Field(key string) interface{} {
	for _, f := range c.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Reset clears all captured calls
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.calls = []LogCall{}
}
