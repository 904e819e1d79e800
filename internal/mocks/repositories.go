// Package mocks holds testify mocks for the domain repositories and providers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockDiseaseRepository is a mock of repositories.DiseaseRepository
type MockDiseaseRepository struct {
	mock.Mock
}

// NewMockDiseaseRepository creates a mock that asserts its expectations on cleanup
func NewMockDiseaseRepository(t testingT) *MockDiseaseRepository {
	m := &MockDiseaseRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDiseaseRepository) Create(ctx context.Context, disease *entities.Disease) error {
	return m.Called(ctx, disease).Error(0)
}

func (m *MockDiseaseRepository) GetByID(ctx context.Context, id string) (*entities.Disease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Disease), args.Error(1)
}

func (m *MockDiseaseRepository) GetByName(ctx context.Context, name string) (*entities.Disease, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Disease), args.Error(1)
}

func (m *MockDiseaseRepository) Update(ctx context.Context, disease *entities.Disease) error {
	return m.Called(ctx, disease).Error(0)
}

func (m *MockDiseaseRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDiseaseRepository) List(ctx context.Context, filter repositories.DiseaseFilter) ([]*entities.Disease, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Disease), args.Error(1)
}

func (m *MockDiseaseRepository) ListActive(ctx context.Context) ([]*entities.Disease, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Disease), args.Error(1)
}

func (m *MockDiseaseRepository) CountChildren(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockCenterRepository is a mock of repositories.CenterRepository
type MockCenterRepository struct {
	mock.Mock
}

// NewMockCenterRepository creates a mock that asserts its expectations on cleanup
func NewMockCenterRepository(t testingT) *MockCenterRepository {
	m := &MockCenterRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCenterRepository) Create(ctx context.Context, center *entities.Center) error {
	return m.Called(ctx, center).Error(0)
}

func (m *MockCenterRepository) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Center), args.Error(1)
}

func (m *MockCenterRepository) Update(ctx context.Context, center *entities.Center) error {
	return m.Called(ctx, center).Error(0)
}

func (m *MockCenterRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCenterRepository) Search(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Center), args.Int(1), args.Error(2)
}

func (m *MockCenterRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Center, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Center), args.Error(1)
}

func (m *MockCenterRepository) ListByStatus(ctx context.Context, status entities.CenterStatus) ([]*entities.Center, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Center), args.Error(1)
}

func (m *MockCenterRepository) IncrementViewCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCenterRepository) IncrementReportCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCenterSearchRepository is a mock of repositories.CenterSearchRepository
type MockCenterSearchRepository struct {
	mock.Mock
}

// NewMockCenterSearchRepository creates a mock that asserts its expectations on cleanup
func NewMockCenterSearchRepository(t testingT) *MockCenterSearchRepository {
	m := &MockCenterSearchRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCenterSearchRepository) Search(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Center), args.Int(1), args.Error(2)
}

func (m *MockCenterSearchRepository) Index(ctx context.Context, center *entities.Center) error {
	return m.Called(ctx, center).Error(0)
}

func (m *MockCenterSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserRepository is a mock of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock that asserts its expectations on cleanup
func NewMockUserRepository(t testingT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// MockOTPRepository is a mock of repositories.OTPRepository
type MockOTPRepository struct {
	mock.Mock
}

// NewMockOTPRepository creates a mock that asserts its expectations on cleanup
func NewMockOTPRepository(t testingT) *MockOTPRepository {
	m := &MockOTPRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *entities.OTP) error {
	return m.Called(ctx, otp).Error(0)
}

func (m *MockOTPRepository) ExistsSince(ctx context.Context, phone string, purpose entities.OTPPurpose, since time.Time) (bool, error) {
	args := m.Called(ctx, phone, purpose, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockOTPRepository) FindActive(ctx context.Context, phone string, purpose entities.OTPPurpose, now time.Time) (*entities.OTP, error) {
	args := m.Called(ctx, phone, purpose, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OTP), args.Error(1)
}

func (m *MockOTPRepository) Update(ctx context.Context, otp *entities.OTP) error {
	return m.Called(ctx, otp).Error(0)
}

// MockReportRepository is a mock of repositories.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

// NewMockReportRepository creates a mock that asserts its expectations on cleanup
func NewMockReportRepository(t testingT) *MockReportRepository {
	m := &MockReportRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockReportRepository) Create(ctx context.Context, report *entities.Report) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*entities.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Report), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context) ([]*entities.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Report), args.Error(1)
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, id string, status entities.ReportStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
