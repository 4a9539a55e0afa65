package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/studygroups/internal/model"
)

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Load(ctx context.Context) ([]*model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Group), args.Error(1)
}

func (m *MockGroupRepository) Save(ctx context.Context, groups []*model.Group) error {
	args := m.Called(ctx, groups)
	return args.Error(0)
}

func (m *MockGroupRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
