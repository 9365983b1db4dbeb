package usecases

import (
	"context"

	"actionbot/models"
	"actionbot/usecases/dispatch"
)

// DispatchUseCaseInterface defines the dispatch operations exposed to the
// gateway handlers
type DispatchUseCaseInterface interface {
	ProcessMessageEvent(ctx context.Context, event models.MessageEvent) ([]dispatch.TriggerOutcome, error)
	ProcessReactionEvent(
		ctx context.Context,
		category models.TriggerCategory,
		event models.ReactionEvent,
	) ([]dispatch.TriggerOutcome, error)
	ProcessMemberEvent(
		ctx context.Context,
		category models.TriggerCategory,
		event models.MemberEvent,
	) ([]dispatch.TriggerOutcome, error)
}
