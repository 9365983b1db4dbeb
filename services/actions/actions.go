package actions

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"actionbot/core"
	"actionbot/models"
	"actionbot/params"
)

// ActionsRepository is the persistence surface the service needs.
// *db.PostgresActionsRepository satisfies it.
type ActionsRepository interface {
	CreateAction(ctx context.Context, action *models.Action) error
	GetActionByID(ctx context.Context, id int64, guildID string) (mo.Option[*models.Action], error)
	GetActionsByGuildID(ctx context.Context, guildID string) ([]*models.Action, error)
	DeleteAction(ctx context.Context, id int64, guildID string) (bool, error)
}

// TriggersFinder is the slice of the triggers repository used to resolve the
// parent trigger at creation time. *db.PostgresTriggersRepository satisfies it.
type TriggersFinder interface {
	GetTriggerByID(ctx context.Context, id int64, guildID string) (mo.Option[*models.Trigger], error)
}

type ActionsService struct {
	actionsRepo  ActionsRepository
	triggersRepo TriggersFinder
}

func NewActionsService(actionsRepo ActionsRepository, triggersRepo TriggersFinder) *ActionsService {
	return &ActionsService{actionsRepo: actionsRepo, triggersRepo: triggersRepo}
}

// CreateAction resolves the parent trigger, validates the action params and
// their template placeholders against the trigger's category, and persists
// the action. Templates referencing undeclared dynamic parameters are
// rejected here and never reach execution.
func (s *ActionsService) CreateAction(
	ctx context.Context,
	triggerID int64,
	guildID string,
	kind models.ActionKind,
	actionParams models.ParamMap,
) (*models.Action, error) {
	log.Printf("📋 Starting to create %s action for trigger: %d in guild: %s", kind, triggerID, guildID)
	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}
	if !kind.IsValid() {
		return nil, core.NewValidationError("kind", "unknown action kind %q", kind)
	}

	maybeTrigger, err := s.triggersRepo.GetTriggerByID(ctx, triggerID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parent trigger: %w", err)
	}
	if !maybeTrigger.IsPresent() {
		return nil, core.ErrNotFound
	}
	trigger := maybeTrigger.MustGet()

	if err := params.ValidateActionParams(kind, actionParams, trigger.Category); err != nil {
		return nil, err
	}

	action := &models.Action{
		GuildID:      guildID,
		Kind:         kind,
		ActionParams: actionParams,
		TriggerID:    trigger.ID,
	}
	if err := s.actionsRepo.CreateAction(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}

	log.Printf("📋 Completed successfully - created action with ID: %d", action.ID)
	return action, nil
}

func (s *ActionsService) GetActionByID(
	ctx context.Context,
	id int64,
	guildID string,
) (mo.Option[*models.Action], error) {
	if guildID == "" {
		return mo.None[*models.Action](), fmt.Errorf("guild_id cannot be empty")
	}

	maybeAction, err := s.actionsRepo.GetActionByID(ctx, id, guildID)
	if err != nil {
		return mo.None[*models.Action](), fmt.Errorf("failed to get action by ID: %w", err)
	}
	return maybeAction, nil
}

func (s *ActionsService) ListActions(ctx context.Context, guildID string) ([]*models.Action, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild_id cannot be empty")
	}

	actions, err := s.actionsRepo.GetActionsByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}

func (s *ActionsService) DeleteAction(ctx context.Context, id int64, guildID string) error {
	log.Printf("📋 Starting to delete action with ID: %d in guild: %s", id, guildID)
	if guildID == "" {
		return fmt.Errorf("guild_id cannot be empty")
	}

	deleted, err := s.actionsRepo.DeleteAction(ctx, id, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	if !deleted {
		return core.ErrNotFound
	}

	log.Printf("📋 Completed successfully - deleted action with ID: %d", id)
	return nil
}
