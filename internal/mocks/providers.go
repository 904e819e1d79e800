package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockSMSSender is a mock of providers.SMSSender
type MockSMSSender struct {
	mock.Mock
}

// NewMockSMSSender creates a mock that asserts its expectations on cleanup
func NewMockSMSSender(t testingT) *MockSMSSender {
	m := &MockSMSSender{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSMSSender) SendOTP(ctx context.Context, phone, code string) error {
	return m.Called(ctx, phone, code).Error(0)
}

// MockFileStorage is a mock of providers.FileStorage
type MockFileStorage struct {
	mock.Mock
}

// NewMockFileStorage creates a mock that asserts its expectations on cleanup
func NewMockFileStorage(t testingT) *MockFileStorage {
	m := &MockFileStorage{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFileStorage) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	args := m.Called(ctx, name, content)
	return args.String(0), args.Error(1)
}

// MockConditionExtractor is a mock of providers.ConditionExtractor
type MockConditionExtractor struct {
	mock.Mock
}

// NewMockConditionExtractor creates a mock that asserts its expectations on cleanup
func NewMockConditionExtractor(t testingT) *MockConditionExtractor {
	m := &MockConditionExtractor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConditionExtractor) ExtractConditions(ctx context.Context, query string) ([]string, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
