package apiclient

import (
	"context"
	"sync"
)

// MockCall holds the configured behaviour of one mocked client method.
// Without configuration it returns the zero result and no error.
type MockCall[P, R any] struct {
	mu     sync.Mutex
	result R
	err    error
	fn     func(context.Context, P) (R, error)
	calls  []P
}

// Resolve makes the call succeed with result
func (m *MockCall[P, R]) Resolve(result R) *MockCall[P, R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result, m.err, m.fn = result, nil, nil
	return m
}

// Reject makes the call fail with err
func (m *MockCall[P, R]) Reject(err error) *MockCall[P, R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero R
	m.result, m.err, m.fn = zero, err, nil
	return m
}

// Func delegates the call to fn
func (m *MockCall[P, R]) Func(fn func(context.Context, P) (R, error)) *MockCall[P, R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Invoke records params and returns the configured outcome
func (m *MockCall[P, R]) Invoke(ctx context.Context, params P) (R, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	fn, result, err := m.fn, m.result, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, params)
	}
	return result, err
}

// Calls returns the recorded parameters in call order
func (m *MockCall[P, R]) Calls() []P {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]P(nil), m.calls...)
}

// Reset clears the configuration and recorded calls
func (m *MockCall[P, R]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero R
	m.result, m.err, m.fn, m.calls = zero, nil, nil, nil
}
