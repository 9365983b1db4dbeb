package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"

	"actionbot/clients"
	"actionbot/metrics"
	"actionbot/models"
	"actionbot/params"
)

// ErrActionNotImplemented is returned when an action of a declared but
// unimplemented kind is executed, so operators can tell misconfiguration
// apart from silence.
var ErrActionNotImplemented = errors.New("action kind not implemented")

// ActionOutcome is the result of executing one action. Outcomes are
// independent: one action's failure never affects its siblings.
type ActionOutcome struct {
	ActionID int64
	Kind     models.ActionKind
	Status   string
	Err      error
}

// executeAction dispatches purely on the action's kind. The executor holds
// no state between calls; all side effects go through the Discord client.
func executeAction(
	ctx context.Context,
	discordClient clients.DiscordClient,
	action *models.Action,
	paramCtx params.Context,
) ActionOutcome {
	outcome := ActionOutcome{ActionID: action.ID, Kind: action.Kind}

	switch action.Kind {
	case models.ActionKindMessageSend:
		outcome.Status, outcome.Err = executeMessageSend(ctx, discordClient, action, paramCtx)
	default:
		outcome.Status = metrics.StatusNotImplemented
		outcome.Err = fmt.Errorf("%w: %s", ErrActionNotImplemented, action.Kind)
	}

	metrics.ActionsExecuted.WithLabelValues(string(action.Kind), outcome.Status).Inc()
	return outcome
}

func executeMessageSend(
	ctx context.Context,
	discordClient clients.DiscordClient,
	action *models.Action,
	paramCtx params.Context,
) (string, error) {
	channelID := action.ActionParams[models.ActionParamChannelID]
	template := action.ActionParams[models.ActionParamMessageContent]

	channel, err := discordClient.GetOrFetchChannel(ctx, channelID)
	if err != nil {
		return metrics.StatusFailed, fmt.Errorf("failed to resolve destination channel: %w", err)
	}

	// A misconfigured destination must not abort the batch, so a channel
	// that cannot receive text is a silent no-op rather than an error
	if !channel.IsTextCapable {
		log.Printf("⏭️ Action %d skipped: channel %s is not text-capable", action.ID, channelID)
		return metrics.StatusSkipped, nil
	}

	content := params.Render(template, paramCtx)
	if err := discordClient.SendMessage(ctx, channelID, content); err != nil {
		return metrics.StatusFailed, fmt.Errorf("failed to send message: %w", err)
	}

	return metrics.StatusOK, nil
}
