package actions

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"actionbot/models"
)

// MockActionsService is a mock implementation of the services.ActionsService interface
type MockActionsService struct {
	mock.Mock
}

func (m *MockActionsService) CreateAction(
	ctx context.Context,
	triggerID int64,
	guildID string,
	kind models.ActionKind,
	actionParams models.ParamMap,
) (*models.Action, error) {
	args := m.Called(ctx, triggerID, guildID, kind, actionParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Action), args.Error(1)
}

func (m *MockActionsService) GetActionByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Action], error) {
	args := m.Called(ctx, id, guildID)
	return args.Get(0).(mo.Option[*models.Action]), args.Error(1)
}

func (m *MockActionsService) ListActions(ctx context.Context, guildID string) ([]*models.Action, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Action), args.Error(1)
}

func (m *MockActionsService) DeleteAction(ctx context.Context, id int64, guildID string) error {
	args := m.Called(ctx, id, guildID)
	return args.Error(0)
}
