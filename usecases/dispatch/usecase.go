// Package dispatch is the entry point for inbound gateway events: it selects
// the guild's candidate triggers for the event's category, evaluates each
// activation predicate, and fans out concurrent execution of every matched
// trigger's actions.
package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"actionbot/clients"
	"actionbot/core"
	"actionbot/metrics"
	"actionbot/models"
	"actionbot/params"
	"actionbot/services"
)

const defaultActionTimeout = 10 * time.Second

// TriggerOutcome aggregates the per-action outcomes of one matched trigger
type TriggerOutcome struct {
	TriggerID int64
	Outcomes  []ActionOutcome
}

// Failed returns the outcomes of actions that did not succeed
func (t TriggerOutcome) Failed() []ActionOutcome {
	var failed []ActionOutcome
	for _, o := range t.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

type DispatchUseCase struct {
	triggersService services.TriggersService
	discordClient   clients.DiscordClient
	// actionTimeout bounds each action's external calls so one stalled call
	// cannot hold the trigger's join forever
	actionTimeout time.Duration
}

func NewDispatchUseCase(
	triggersService services.TriggersService,
	discordClient clients.DiscordClient,
) *DispatchUseCase {
	return &DispatchUseCase{
		triggersService: triggersService,
		discordClient:   discordClient,
		actionTimeout:   defaultActionTimeout,
	}
}

// ProcessMessageEvent dispatches an inbound guild message against the
// guild's Message triggers.
func (u *DispatchUseCase) ProcessMessageEvent(
	ctx context.Context,
	event models.MessageEvent,
) ([]TriggerOutcome, error) {
	return u.dispatch(ctx, models.TriggerCategoryMessage, event.GuildID, event.EventID,
		func(candidates []*models.Trigger) []*models.Trigger {
			return MatchMessageTriggers(candidates, event)
		},
		func(trigger *models.Trigger) params.Context {
			// Full-match semantics: the matched string is the whole content
			return params.BuildMessageContext(event, event.Content)
		})
}

// ProcessReactionEvent dispatches an inbound reaction against the guild's
// ReactionAdd or ReactionRemove triggers, depending on category.
func (u *DispatchUseCase) ProcessReactionEvent(
	ctx context.Context,
	category models.TriggerCategory,
	event models.ReactionEvent,
) ([]TriggerOutcome, error) {
	return u.dispatch(ctx, category, event.GuildID, event.EventID,
		func(candidates []*models.Trigger) []*models.Trigger {
			return MatchReactionTriggers(candidates, event)
		},
		func(trigger *models.Trigger) params.Context {
			return params.BuildReactionContext(event)
		})
}

// ProcessMemberEvent dispatches a member join or leave against the guild's
// MemberJoin or MemberLeave triggers, depending on category.
func (u *DispatchUseCase) ProcessMemberEvent(
	ctx context.Context,
	category models.TriggerCategory,
	event models.MemberEvent,
) ([]TriggerOutcome, error) {
	return u.dispatch(ctx, category, event.GuildID, event.EventID,
		func(candidates []*models.Trigger) []*models.Trigger {
			return MatchMemberTriggers(candidates, event)
		},
		func(trigger *models.Trigger) params.Context {
			return params.BuildMemberContext(event)
		})
}

// dispatch runs one event through match and fan-out. A store failure fails
// this dispatch only; execution failures are contained per action and
// reported in the aggregated outcomes.
func (u *DispatchUseCase) dispatch(
	ctx context.Context,
	category models.TriggerCategory,
	guildID string,
	eventID string,
	match func([]*models.Trigger) []*models.Trigger,
	buildContext func(*models.Trigger) params.Context,
) ([]TriggerOutcome, error) {
	start := time.Now()
	dispatchID := core.NewID("disp")
	metrics.EventsReceived.WithLabelValues(string(category)).Inc()

	log.Printf("📋 [%s] Starting to dispatch %s event %s in guild %s", dispatchID, category, eventID, guildID)

	candidates, err := u.triggersService.GetTriggersByCategory(ctx, guildID, category)
	if err != nil {
		log.Printf("❌ [%s] Failed to fetch candidate triggers: %v", dispatchID, err)
		return nil, err
	}

	matched := match(candidates)
	metrics.TriggersMatched.WithLabelValues(string(category)).Add(float64(len(matched)))
	log.Printf("🔍 [%s] Matched %d of %d candidate triggers", dispatchID, len(matched), len(candidates))

	outcomes := make([]TriggerOutcome, 0, len(matched))
	for _, trigger := range matched {
		// One immutable context per matched trigger; every action in the
		// batch observes the same values
		paramCtx := buildContext(trigger)
		outcome := u.runTriggerActions(ctx, dispatchID, trigger, paramCtx)
		outcomes = append(outcomes, outcome)
	}

	metrics.DispatchDuration.Observe(float64(time.Since(start).Milliseconds()))
	log.Printf("📋 [%s] Completed successfully - dispatched %s event %s", dispatchID, category, eventID)
	return outcomes, nil
}

// runTriggerActions launches every action of the trigger concurrently and
// joins on the whole batch. Sibling failures are independent: the batch
// never short-circuits.
func (u *DispatchUseCase) runTriggerActions(
	ctx context.Context,
	dispatchID string,
	trigger *models.Trigger,
	paramCtx params.Context,
) TriggerOutcome {
	outcome := TriggerOutcome{
		TriggerID: trigger.ID,
		Outcomes:  make([]ActionOutcome, len(trigger.Actions)),
	}

	var wg sync.WaitGroup
	for i, action := range trigger.Actions {
		wg.Add(1)
		go func(i int, action *models.Action) {
			defer wg.Done()

			actionCtx, cancel := context.WithTimeout(ctx, u.actionTimeout)
			defer cancel()

			outcome.Outcomes[i] = executeAction(actionCtx, u.discordClient, action, paramCtx)
		}(i, action)
	}
	wg.Wait()

	for _, failed := range outcome.Failed() {
		log.Printf("❌ [%s] Action %d (%s) of trigger %d failed: %v",
			dispatchID, failed.ActionID, failed.Kind, trigger.ID, failed.Err)
	}

	return outcome
}
