package hyperdrive

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
)

// MockHyperdriveService implements a mock interfaces.HyperdriveService for
// testing. The behavior is determined by how the mock is configured in tests.
type MockHyperdriveService struct {
	mock.Mock
}

func (m *MockHyperdriveService) List(ctx context.Context) ([]interfaces.RemoteConfig, error) {
	args := m.Called(ctx)
	configs, _ := args.Get(0).([]interfaces.RemoteConfig)
	return configs, args.Error(1)
}

func (m *MockHyperdriveService) Create(ctx context.Context, name string, origin interfaces.Origin) (interfaces.RemoteConfig, error) {
	args := m.Called(ctx, name, origin)
	return args.Get(0).(interfaces.RemoteConfig), args.Error(1)
}

func (m *MockHyperdriveService) Edit(ctx context.Context, id string, origin interfaces.Origin) (interfaces.RemoteConfig, error) {
	args := m.Called(ctx, id, origin)
	return args.Get(0).(interfaces.RemoteConfig), args.Error(1)
}
