package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"litrecord/internal/domain"
	"litrecord/internal/service"
)

// MockCaseService is a mock implementation of service.CaseService.
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Create(ctx context.Context, input *service.CreateCaseInput) (*domain.Case, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) List(ctx context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Case), args.Int(1), args.Error(2)
}

func (m *MockCaseService) GetStatus(ctx context.Context, caseID uuid.UUID) (domain.CaseStatus, error) {
	args := m.Called(ctx, caseID)
	return args.Get(0).(domain.CaseStatus), args.Error(1)
}

func (m *MockCaseService) SetStatus(ctx context.Context, caseID uuid.UUID, status domain.CaseStatus) (*domain.Case, error) {
	args := m.Called(ctx, caseID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) Toggle(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) ListDocuments(ctx context.Context, caseID uuid.UUID) ([]domain.Document, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}
