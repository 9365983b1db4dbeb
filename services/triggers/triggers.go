package triggers

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"actionbot/core"
	"actionbot/models"
	"actionbot/params"
	"actionbot/services"
)

// TriggersRepository is the persistence surface the service needs.
// *db.PostgresTriggersRepository satisfies it.
type TriggersRepository interface {
	CreateTrigger(ctx context.Context, trigger *models.Trigger) error
	GetTriggerByID(ctx context.Context, id int64, guildID string) (mo.Option[*models.Trigger], error)
	GetTriggersByGuildID(ctx context.Context, guildID string) ([]*models.Trigger, error)
	GetTriggersByCategory(
		ctx context.Context,
		guildID string,
		category models.TriggerCategory,
	) ([]*models.Trigger, error)
	DeleteTrigger(ctx context.Context, id int64, guildID string) (bool, error)
}

// ActionsCascadeRepository is the slice of the actions repository used for
// cascade deletion. *db.PostgresActionsRepository satisfies it.
type ActionsCascadeRepository interface {
	DeleteActionsByTriggerID(ctx context.Context, triggerID int64, guildID string) (int64, error)
}

type TriggersService struct {
	triggersRepo TriggersRepository
	actionsRepo  ActionsCascadeRepository
	txManager    services.TransactionManager
}

func NewTriggersService(
	triggersRepo TriggersRepository,
	actionsRepo ActionsCascadeRepository,
	txManager services.TransactionManager,
) *TriggersService {
	return &TriggersService{
		triggersRepo: triggersRepo,
		actionsRepo:  actionsRepo,
		txManager:    txManager,
	}
}

// CreateTrigger validates the activation params against the category's exact
// key set and persists the trigger. Triggers are immutable once created.
func (s *TriggersService) CreateTrigger(
	ctx context.Context,
	guildID string,
	category models.TriggerCategory,
	activationParams models.ParamMap,
) (*models.Trigger, error) {
	log.Printf("📋 Starting to create %s trigger for guild: %s", category, guildID)
	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}
	if !category.IsValid() {
		return nil, core.NewValidationError("category", "unknown trigger category %q", category)
	}
	if err := params.ValidateActivationParams(category, activationParams); err != nil {
		return nil, err
	}

	trigger := &models.Trigger{
		GuildID:          guildID,
		Category:         category,
		ActivationParams: activationParams,
	}
	if err := s.triggersRepo.CreateTrigger(ctx, trigger); err != nil {
		return nil, fmt.Errorf("failed to create trigger: %w", err)
	}

	log.Printf("📋 Completed successfully - created trigger with ID: %d", trigger.ID)
	return trigger, nil
}

func (s *TriggersService) GetTriggerByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Trigger], error) {
	if guildID == "" {
		return mo.None[*models.Trigger](), fmt.Errorf("guild_id cannot be empty")
	}

	maybeTrigger, err := s.triggersRepo.GetTriggerByID(ctx, id, guildID)
	if err != nil {
		return mo.None[*models.Trigger](), fmt.Errorf("failed to get trigger by ID: %w", err)
	}
	return maybeTrigger, nil
}

// GetTriggersByCategory returns the guild's triggers of one category with
// their actions eagerly loaded, as a single consistent snapshot.
func (s *TriggersService) GetTriggersByCategory(
	ctx context.Context,
	guildID string,
	category models.TriggerCategory,
) ([]*models.Trigger, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown trigger category %q", category)
	}

	triggers, err := s.triggersRepo.GetTriggersByCategory(ctx, guildID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to get triggers by category: %w", err)
	}
	return triggers, nil
}

func (s *TriggersService) ListTriggers(ctx context.Context, guildID string) ([]*models.Trigger, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}

	triggers, err := s.triggersRepo.GetTriggersByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	return triggers, nil
}

// DeleteTrigger removes the trigger and every action bound to it in one
// transaction, so a concurrent reader never observes a partial cascade.
func (s *TriggersService) DeleteTrigger(ctx context.Context, id int64, guildID string) error {
	log.Printf("📋 Starting to delete trigger with ID: %d in guild: %s", id, guildID)
	if guildID == "" {
		return fmt.Errorf("guild_id cannot be empty")
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		removed, err := s.actionsRepo.DeleteActionsByTriggerID(txCtx, id, guildID)
		if err != nil {
			return fmt.Errorf("failed to cascade-delete actions: %w", err)
		}

		deleted, err := s.triggersRepo.DeleteTrigger(txCtx, id, guildID)
		if err != nil {
			return fmt.Errorf("failed to delete trigger: %w", err)
		}
		if !deleted {
			// Rolls back any cascade deletion performed above
			return core.ErrNotFound
		}

		log.Printf("📋 Cascade-deleted %d actions for trigger: %d", removed, id)
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("📋 Completed successfully - deleted trigger with ID: %d", id)
	return nil
}
