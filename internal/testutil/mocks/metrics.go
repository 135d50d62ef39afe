package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockMetricsRecorder is a testify mock of classification.MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordClassification(outcome, failureCode string, duration time.Duration) {
	m.Called(outcome, failureCode, duration)
}

func (m *MockMetricsRecorder) SetRulesLoaded(n int) {
	m.Called(n)
}

func (m *MockMetricsRecorder) RecordRuleLoadFailure(kind string) {
	m.Called(kind)
}
