package services

import (
	"context"

	"github.com/samber/mo"

	"actionbot/models"
)

// TriggersService defines the interface for trigger rule operations
type TriggersService interface {
	CreateTrigger(
		ctx context.Context,
		guildID string,
		category models.TriggerCategory,
		activationParams models.ParamMap,
	) (*models.Trigger, error)
	GetTriggerByID(ctx context.Context, id int64, guildID string) (mo.Option[*models.Trigger], error)
	GetTriggersByCategory(
		ctx context.Context,
		guildID string,
		category models.TriggerCategory,
	) ([]*models.Trigger, error)
	ListTriggers(ctx context.Context, guildID string) ([]*models.Trigger, error)
	DeleteTrigger(ctx context.Context, id int64, guildID string) error
}

// ActionsService defines the interface for action rule operations
type ActionsService interface {
	CreateAction(
		ctx context.Context,
		triggerID int64,
		guildID string,
		kind models.ActionKind,
		actionParams models.ParamMap,
	) (*models.Action, error)
	GetActionByID(ctx context.Context, id int64, guildID string) (mo.Option[*models.Action], error)
	ListActions(ctx context.Context, guildID string) ([]*models.Action, error)
	DeleteAction(ctx context.Context, id int64, guildID string) error
}

// TransactionManager defines the interface for managing database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}
