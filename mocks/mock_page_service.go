package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"litrecord/internal/domain"
)

// MockPageService is a mock implementation of service.PageService.
type MockPageService struct {
	mock.Mock
}

func (m *MockPageService) GetPage(ctx context.Context, pageID uuid.UUID) (*domain.Page, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *MockPageService) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Page, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Page), args.Error(1)
}

func (m *MockPageService) ListByCategory(ctx context.Context, caseID uuid.UUID, category string) ([]domain.Page, error) {
	args := m.Called(ctx, caseID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Page), args.Error(1)
}

func (m *MockPageService) SetCategory(ctx context.Context, pageID uuid.UUID, category string) (*domain.Page, error) {
	args := m.Called(ctx, pageID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *MockPageService) Reorder(ctx context.Context, caseID, pageID uuid.UUID, newPosition int) (*domain.Page, error) {
	args := m.Called(ctx, caseID, pageID, newPosition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *MockPageService) Reclassify(ctx context.Context, caseID uuid.UUID) (int, error) {
	args := m.Called(ctx, caseID)
	return args.Int(0), args.Error(1)
}

func (m *MockPageService) Content(ctx context.Context, pageID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPageService) ContentURL(ctx context.Context, pageID uuid.UUID, expirySeconds int64) (string, error) {
	args := m.Called(ctx, pageID, expirySeconds)
	return args.String(0), args.Error(1)
}
