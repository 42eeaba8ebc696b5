// Package mocks holds testify mocks for the ports interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/ports"
)

// MockQuizStore mocks ports.QuizStore.
type MockQuizStore struct {
	mock.Mock
}

// NewMockQuizStore creates a mock whose expectations are asserted at test
// cleanup.
func NewMockQuizStore(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockQuizStore {
	m := &MockQuizStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockQuizStore) Load(ctx context.Context, sessionID string) (domain.QuizSnapshot, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.QuizSnapshot), args.Bool(1), args.Error(2)
}

func (m *MockQuizStore) Save(ctx context.Context, sessionID string, snap domain.QuizSnapshot) error {
	return m.Called(ctx, sessionID, snap).Error(0)
}

func (m *MockQuizStore) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// MockLeadRelay mocks ports.LeadRelay.
type MockLeadRelay struct {
	mock.Mock
}

// NewMockLeadRelay creates a mock whose expectations are asserted at test
// cleanup.
func NewMockLeadRelay(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockLeadRelay {
	m := &MockLeadRelay{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockLeadRelay) Send(ctx context.Context, lead domain.Lead) (domain.Receipt, error) {
	args := m.Called(ctx, lead)
	return args.Get(0).(domain.Receipt), args.Error(1)
}

// MockHealthRegistry mocks ports.HealthRegistry.
type MockHealthRegistry struct {
	mock.Mock
}

// NewMockHealthRegistry creates a mock whose expectations are asserted at
// test cleanup.
func NewMockHealthRegistry(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockHealthRegistry) Register(checker ports.HealthChecker) error {
	return m.Called(checker).Error(0)
}

func (m *MockHealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	args := m.Called(ctx)

	result, _ := args.Get(0).(*ports.HealthResult)

	return result
}
