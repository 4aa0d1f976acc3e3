package mocks

import (
	"context"

	"github.com/lorrc/user-directory/internal/core/domain"
	"github.com/lorrc/user-directory/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockUserSource is a mock implementation of ports.UserSource
type MockUserSource struct {
	mock.Mock
}

var _ ports.UserSource = (*MockUserSource)(nil)

func NewMockUserSource() *MockUserSource {
	return &MockUserSource{}
}

func (m *MockUserSource) FetchUsers(ctx context.Context) ([]domain.UserRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserRecord), args.Error(1)
}

// MockFetchObserver is a mock implementation of ports.FetchObserver
type MockFetchObserver struct {
	mock.Mock
}

var _ ports.FetchObserver = (*MockFetchObserver)(nil)

func NewMockFetchObserver() *MockFetchObserver {
	return &MockFetchObserver{}
}

func (m *MockFetchObserver) ObserveFetch(outcome string, count int) {
	m.Called(outcome, count)
}
