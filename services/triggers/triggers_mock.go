package triggers

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"actionbot/models"
)

// MockTriggersService is a mock implementation of the services.TriggersService interface
type MockTriggersService struct {
	mock.Mock
}

func (m *MockTriggersService) CreateTrigger(
	ctx context.Context,
	guildID string,
	category models.TriggerCategory,
	activationParams models.ParamMap,
) (*models.Trigger, error) {
	args := m.Called(ctx, guildID, category, activationParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trigger), args.Error(1)
}

func (m *MockTriggersService) GetTriggerByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Trigger], error) {
	args := m.Called(ctx, id, guildID)
	return args.Get(0).(mo.Option[*models.Trigger]), args.Error(1)
}

func (m *MockTriggersService) GetTriggersByCategory(
	ctx context.Context,
	guildID string,
	category models.TriggerCategory,
) ([]*models.Trigger, error) {
	args := m.Called(ctx, guildID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Trigger), args.Error(1)
}

func (m *MockTriggersService) ListTriggers(ctx context.Context, guildID string) ([]*models.Trigger, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Trigger), args.Error(1)
}

func (m *MockTriggersService) DeleteTrigger(ctx context.Context, id int64, guildID string) error {
	args := m.Called(ctx, id, guildID)
	return args.Error(0)
}
