package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"actionbot/clients"
	discordclient "actionbot/clients/discord"
	"actionbot/models"
	"actionbot/services/triggers"
)

const (
	testGuildID = "guild-7"
)

// dispatchTestFixture encapsulates test setup and mocks
type dispatchTestFixture struct {
	useCase         *DispatchUseCase
	triggersService *triggers.MockTriggersService
	discordClient   *discordclient.MockDiscordClient
	ctx             context.Context
}

func setupDispatchTest(t *testing.T) *dispatchTestFixture {
	triggersService := new(triggers.MockTriggersService)
	discordClient := new(discordclient.MockDiscordClient)

	return &dispatchTestFixture{
		useCase:         NewDispatchUseCase(triggersService, discordClient),
		triggersService: triggersService,
		discordClient:   discordClient,
		ctx:             context.Background(),
	}
}

func textChannel(id string) *clients.DiscordChannel {
	return &clients.DiscordChannel{ID: id, GuildID: testGuildID, IsTextCapable: true}
}

func voiceChannel(id string) *clients.DiscordChannel {
	return &clients.DiscordChannel{ID: id, GuildID: testGuildID, IsTextCapable: false}
}

func messageSendAction(id, triggerID int64, channelID, template string) *models.Action {
	return &models.Action{
		ID:        id,
		GuildID:   testGuildID,
		Kind:      models.ActionKindMessageSend,
		TriggerID: triggerID,
		ActionParams: models.ParamMap{
			"message_content": template,
			"channel_id":      channelID,
		},
	}
}

func TestProcessMessageEvent(t *testing.T) {
	t.Run("MatchedTriggerSendsRenderedMessage", func(t *testing.T) {
		f := setupDispatchTest(t)

		trigger := messageTrigger(1, "ping", "42")
		trigger.Actions = []*models.Action{
			messageSendAction(10, 1, "42", "{member_mention} said {matched_string}"),
		}
		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryMessage).
			Return([]*models.Trigger{trigger}, nil)
		f.discordClient.On("GetOrFetchChannel", mock.Anything, "42").Return(textChannel("42"), nil)
		f.discordClient.On("SendMessage", mock.Anything, "42", "<@U1> said ping").Return(nil)

		outcomes, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID:     "evt-1",
			GuildID:     testGuildID,
			ChannelID:   "42",
			UserID:      "U1",
			UserMention: "<@U1>",
			Content:     "ping",
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, int64(1), outcomes[0].TriggerID)
		require.Len(t, outcomes[0].Outcomes, 1)
		assert.NoError(t, outcomes[0].Outcomes[0].Err)
		f.discordClient.AssertExpectations(t)
	})

	t.Run("NoMatchNoEffect", func(t *testing.T) {
		f := setupDispatchTest(t)

		trigger := messageTrigger(1, "ping", "42")
		trigger.Actions = []*models.Action{messageSendAction(10, 1, "42", "hi")}
		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryMessage).
			Return([]*models.Trigger{trigger}, nil)

		outcomes, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID:   "evt-2",
			GuildID:   testGuildID,
			ChannelID: "42",
			Content:   "ping pong",
		})

		require.NoError(t, err)
		assert.Empty(t, outcomes)
		f.discordClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CandidateFetchIsGuildScoped", func(t *testing.T) {
		f := setupDispatchTest(t)

		// A trigger with identical channel and pattern exists in another
		// guild; dispatch only ever consults the event's own guild.
		f.triggersService.On("GetTriggersByCategory", mock.Anything, "guild-other", models.TriggerCategoryMessage).
			Return([]*models.Trigger{}, nil)

		outcomes, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID:   "evt-8",
			GuildID:   "guild-other",
			ChannelID: "42",
			Content:   "ping",
		})

		require.NoError(t, err)
		assert.Empty(t, outcomes)
		f.triggersService.AssertExpectations(t)
		f.discordClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreFailureFailsDispatch", func(t *testing.T) {
		f := setupDispatchTest(t)

		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryMessage).
			Return(nil, errors.New("connection refused"))

		_, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID: "evt-3",
			GuildID: testGuildID,
		})

		require.Error(t, err)
	})
}

func TestProcessReactionEvent(t *testing.T) {
	t.Run("UnfilteredReactionTriggerSendsMention", func(t *testing.T) {
		f := setupDispatchTest(t)

		trigger := reactionTrigger(1, "5", "100", "")
		trigger.Actions = []*models.Action{
			messageSendAction(10, 1, "6", "{member_mention} reacted!"),
		}
		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryReactionAdd).
			Return([]*models.Trigger{trigger}, nil)
		f.discordClient.On("GetOrFetchChannel", mock.Anything, "6").Return(textChannel("6"), nil)
		f.discordClient.On("SendMessage", mock.Anything, "6", "<@U1> reacted!").Return(nil)

		outcomes, err := f.useCase.ProcessReactionEvent(f.ctx, models.TriggerCategoryReactionAdd, models.ReactionEvent{
			EventID:     "evt-4",
			GuildID:     testGuildID,
			ChannelID:   "5",
			MessageID:   "100",
			UserID:      "U1",
			UserMention: "<@U1>",
			Emoji:       "👍",
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		f.discordClient.AssertNumberOfCalls(t, "SendMessage", 1)
	})
}

func TestActionIsolation(t *testing.T) {
	t.Run("SiblingOutcomeUnaffectedByFailure", func(t *testing.T) {
		f := setupDispatchTest(t)

		trigger := messageTrigger(1, "ping", "42")
		trigger.Actions = []*models.Action{
			messageSendAction(10, 1, "broken", "first"),
			messageSendAction(11, 1, "42", "second"),
		}
		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryMessage).
			Return([]*models.Trigger{trigger}, nil)
		f.discordClient.On("GetOrFetchChannel", mock.Anything, "broken").
			Return(nil, errors.New("channel not found"))
		f.discordClient.On("GetOrFetchChannel", mock.Anything, "42").Return(textChannel("42"), nil)
		f.discordClient.On("SendMessage", mock.Anything, "42", "second").Return(nil)

		outcomes, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID:   "evt-5",
			GuildID:   testGuildID,
			ChannelID: "42",
			Content:   "ping",
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		require.Len(t, outcomes[0].Outcomes, 2)

		byAction := map[int64]ActionOutcome{}
		for _, o := range outcomes[0].Outcomes {
			byAction[o.ActionID] = o
		}
		assert.Error(t, byAction[10].Err)
		assert.NoError(t, byAction[11].Err)
		f.discordClient.AssertExpectations(t)
	})

	t.Run("NonTextChannelIsSilentNoOp", func(t *testing.T) {
		f := setupDispatchTest(t)

		trigger := messageTrigger(1, "ping", "42")
		trigger.Actions = []*models.Action{messageSendAction(10, 1, "99", "hi")}
		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryMessage).
			Return([]*models.Trigger{trigger}, nil)
		f.discordClient.On("GetOrFetchChannel", mock.Anything, "99").Return(voiceChannel("99"), nil)

		outcomes, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID:   "evt-6",
			GuildID:   testGuildID,
			ChannelID: "42",
			Content:   "ping",
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		require.Len(t, outcomes[0].Outcomes, 1)
		assert.NoError(t, outcomes[0].Outcomes[0].Err)
		f.discordClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnimplementedKindIsDistinguishable", func(t *testing.T) {
		f := setupDispatchTest(t)

		trigger := messageTrigger(1, "ping", "42")
		trigger.Actions = []*models.Action{{
			ID:        10,
			GuildID:   testGuildID,
			Kind:      models.ActionKindMessageDelete,
			TriggerID: 1,
			ActionParams: models.ParamMap{
				"channel_id": "42",
				"message_id": "100",
			},
		}}
		f.triggersService.On("GetTriggersByCategory", mock.Anything, testGuildID, models.TriggerCategoryMessage).
			Return([]*models.Trigger{trigger}, nil)

		outcomes, err := f.useCase.ProcessMessageEvent(f.ctx, models.MessageEvent{
			EventID:   "evt-7",
			GuildID:   testGuildID,
			ChannelID: "42",
			Content:   "ping",
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		require.Len(t, outcomes[0].Outcomes, 1)
		assert.ErrorIs(t, outcomes[0].Outcomes[0].Err, ErrActionNotImplemented)
	})
}
