package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"litrecord/internal/domain"
)

// MockCaseRepo is a mock implementation of port.CaseRepository.
type MockCaseRepo struct {
	mock.Mock
}

func (m *MockCaseRepo) Create(ctx context.Context, c *domain.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepo) GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepo) List(ctx context.Context, status domain.CaseStatus, offset, limit int) ([]domain.Case, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Case), args.Int(1), args.Error(2)
}

func (m *MockCaseRepo) UpdateStatus(ctx context.Context, caseID uuid.UUID, status domain.CaseStatus) error {
	args := m.Called(ctx, caseID, status)
	return args.Error(0)
}
