package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"litrecord/internal/port"
)

// MockDocumentSplitter is a mock implementation of port.DocumentSplitter.
type MockDocumentSplitter struct {
	mock.Mock
}

func (m *MockDocumentSplitter) Split(ctx context.Context, input port.SplitInput) ([]port.PageUnit, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.PageUnit), args.Error(1)
}

func (m *MockDocumentSplitter) Discard(ctx context.Context, units []port.PageUnit) {
	m.Called(ctx, units)
}
