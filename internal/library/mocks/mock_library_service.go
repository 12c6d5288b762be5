package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfshelf/internal/library"
	"pdfshelf/internal/model"
)

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) Documents() []model.Document {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Document)
}

func (m *MockLibraryService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLibraryService) Upload(ctx context.Context, data []byte, name, description, coverImage string) (*model.Document, error) {
	args := m.Called(ctx, data, name, description, coverImage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLibraryService) Create(ctx context.Context, title, body, coverImage string) (*model.Document, error) {
	args := m.Called(ctx, title, body, coverImage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLibraryService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLibraryService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLibraryService) Open(ctx context.Context, id string) (*library.OpenHandle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.OpenHandle), args.Error(1)
}

func (m *MockLibraryService) Opened(token string) (*model.Document, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLibraryService) Close() {
	m.Called()
}
