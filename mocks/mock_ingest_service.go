package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"litrecord/internal/domain"
	"litrecord/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, caseID uuid.UUID, filename string, content []byte) (*domain.IngestResult, error) {
	args := m.Called(ctx, caseID, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestResult), args.Error(1)
}

func (m *MockIngestService) IngestBatch(ctx context.Context, caseID uuid.UUID, files []service.IngestFileInput) ([]service.IngestFileResult, error) {
	args := m.Called(ctx, caseID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.IngestFileResult), args.Error(1)
}
