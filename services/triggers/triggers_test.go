package triggers

import (
	"context"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"actionbot/core"
	"actionbot/models"
	"actionbot/services/txmanager"
)

// MockTriggersRepository is a mock implementation of the TriggersRepository interface
type MockTriggersRepository struct {
	mock.Mock
}

func (m *MockTriggersRepository) CreateTrigger(ctx context.Context, trigger *models.Trigger) error {
	args := m.Called(ctx, trigger)
	return args.Error(0)
}

func (m *MockTriggersRepository) GetTriggerByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Trigger], error) {
	args := m.Called(ctx, id, guildID)
	return args.Get(0).(mo.Option[*models.Trigger]), args.Error(1)
}

func (m *MockTriggersRepository) GetTriggersByGuildID(
	ctx context.Context,
	guildID string,
) ([]*models.Trigger, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Trigger), args.Error(1)
}

func (m *MockTriggersRepository) GetTriggersByCategory(
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

func (m *MockTriggersRepository) DeleteTrigger(ctx context.Context, id int64, guildID string) (bool, error) {
	args := m.Called(ctx, id, guildID)
	return args.Bool(0), args.Error(1)
}

// MockActionsCascadeRepository is a mock implementation of the ActionsCascadeRepository interface
type MockActionsCascadeRepository struct {
	mock.Mock
}

func (m *MockActionsCascadeRepository) DeleteActionsByTriggerID(
	ctx context.Context,
	triggerID int64,
	guildID string,
) (int64, error) {
	args := m.Called(ctx, triggerID, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func setupTriggersService() (*TriggersService, *MockTriggersRepository, *MockActionsCascadeRepository) {
	triggersRepo := new(MockTriggersRepository)
	actionsRepo := new(MockActionsCascadeRepository)
	service := NewTriggersService(triggersRepo, actionsRepo, &txmanager.PassthroughTransactionManager{})
	return service, triggersRepo, actionsRepo
}

func TestCreateTrigger(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		service, triggersRepo, _ := setupTriggersService()
		triggersRepo.On("CreateTrigger", ctx, mock.AnythingOfType("*models.Trigger")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Trigger).ID = 1
			}).
			Return(nil)

		trigger, err := service.CreateTrigger(ctx, "guild-7", models.TriggerCategoryMessage, models.ParamMap{
			"match_statement": "ping",
			"channel_id":      "42",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), trigger.ID)
		assert.Equal(t, "guild-7", trigger.GuildID)
		triggersRepo.AssertExpectations(t)
	})

	t.Run("MissingActivationKey", func(t *testing.T) {
		service, triggersRepo, _ := setupTriggersService()

		_, err := service.CreateTrigger(ctx, "guild-7", models.TriggerCategoryMessage, models.ParamMap{
			"match_statement": "ping",
		})

		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
		triggersRepo.AssertNotCalled(t, "CreateTrigger", mock.Anything, mock.Anything)
	})

	t.Run("ExtraActivationKey", func(t *testing.T) {
		service, triggersRepo, _ := setupTriggersService()

		_, err := service.CreateTrigger(ctx, "guild-7", models.TriggerCategoryReactionAdd, models.ParamMap{
			"channel_id": "5",
			"message_id": "100",
			"emoji":      "",
			"pattern":    "extra",
		})

		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
		triggersRepo.AssertNotCalled(t, "CreateTrigger", mock.Anything, mock.Anything)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		service, _, _ := setupTriggersService()

		_, err := service.CreateTrigger(ctx, "guild-7", models.TriggerCategory("bogus"), models.ParamMap{})

		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("EmptyGuildID", func(t *testing.T) {
		service, _, _ := setupTriggersService()

		_, err := service.CreateTrigger(ctx, "", models.TriggerCategoryMessage, models.ParamMap{
			"match_statement": "ping",
			"channel_id":      "42",
		})

		require.Error(t, err)
	})
}

func TestDeleteTrigger(t *testing.T) {
	ctx := context.Background()

	t.Run("CascadeDeletesActionsAndTrigger", func(t *testing.T) {
		service, triggersRepo, actionsRepo := setupTriggersService()
		actionsRepo.On("DeleteActionsByTriggerID", mock.Anything, int64(1), "guild-7").Return(int64(3), nil)
		triggersRepo.On("DeleteTrigger", mock.Anything, int64(1), "guild-7").Return(true, nil)

		err := service.DeleteTrigger(ctx, 1, "guild-7")

		require.NoError(t, err)
		actionsRepo.AssertExpectations(t)
		triggersRepo.AssertExpectations(t)
	})

	t.Run("NonexistentTriggerReturnsNotFound", func(t *testing.T) {
		service, triggersRepo, actionsRepo := setupTriggersService()
		actionsRepo.On("DeleteActionsByTriggerID", mock.Anything, int64(99), "guild-7").Return(int64(0), nil)
		triggersRepo.On("DeleteTrigger", mock.Anything, int64(99), "guild-7").Return(false, nil)

		err := service.DeleteTrigger(ctx, 99, "guild-7")

		require.Error(t, err)
		assert.True(t, core.IsNotFoundError(err))
	})

	t.Run("WrongGuildReturnsNotFound", func(t *testing.T) {
		// The repository scopes every statement by guild, so a trigger owned
		// by another guild deletes zero rows and surfaces as not-found.
		service, triggersRepo, actionsRepo := setupTriggersService()
		actionsRepo.On("DeleteActionsByTriggerID", mock.Anything, int64(1), "guild-other").Return(int64(0), nil)
		triggersRepo.On("DeleteTrigger", mock.Anything, int64(1), "guild-other").Return(false, nil)

		err := service.DeleteTrigger(ctx, 1, "guild-other")

		require.Error(t, err)
		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestGetTriggersByCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("ScopedToGuildAndCategory", func(t *testing.T) {
		service, triggersRepo, _ := setupTriggersService()
		expected := []*models.Trigger{{ID: 1, GuildID: "guild-7", Category: models.TriggerCategoryMessage}}
		triggersRepo.On("GetTriggersByCategory", ctx, "guild-7", models.TriggerCategoryMessage).
			Return(expected, nil)

		triggers, err := service.GetTriggersByCategory(ctx, "guild-7", models.TriggerCategoryMessage)

		require.NoError(t, err)
		assert.Equal(t, expected, triggers)
	})

	t.Run("EmptyGuildID", func(t *testing.T) {
		service, _, _ := setupTriggersService()

		_, err := service.GetTriggersByCategory(ctx, "", models.TriggerCategoryMessage)

		require.Error(t, err)
	})
}
