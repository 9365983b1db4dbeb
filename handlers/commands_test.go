package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionbot/models"
	"actionbot/usecases/dispatch"
)

func TestNormalizeEmojiOption(t *testing.T) {
	t.Run("CustomEmojiMentionReducesToSnowflake", func(t *testing.T) {
		assert.Equal(t, "832471920312", normalizeEmojiOption("<:party:832471920312>"))
	})

	t.Run("AnimatedEmojiMentionReducesToSnowflake", func(t *testing.T) {
		assert.Equal(t, "832471920312", normalizeEmojiOption("<a:party:832471920312>"))
	})

	t.Run("UnicodeEmojiPassesThrough", func(t *testing.T) {
		assert.Equal(t, "👍", normalizeEmojiOption("👍"))
	})

	t.Run("EmptyFilterPassesThrough", func(t *testing.T) {
		assert.Equal(t, "", normalizeEmojiOption(""))
	})

	t.Run("CustomFilterMatchesInboundReaction", func(t *testing.T) {
		// The stored filter must compare equal to the canonical form the
		// gateway handler derives from inbound reaction events.
		trigger := &models.Trigger{
			ID:       1,
			GuildID:  "guild-7",
			Category: models.TriggerCategoryReactionAdd,
			ActivationParams: models.ParamMap{
				models.ActivationKeyChannelID: "5",
				models.ActivationKeyMessageID: "100",
				models.ActivationKeyEmoji:     normalizeEmojiOption("<:party:832471920312>"),
			},
		}

		matched := dispatch.MatchReactionTriggers([]*models.Trigger{trigger}, models.ReactionEvent{
			ChannelID: "5",
			MessageID: "100",
			Emoji:     canonicalEmoji(discordgo.Emoji{ID: "832471920312", Name: "party"}),
		})

		require.Len(t, matched, 1)
		assert.Equal(t, int64(1), matched[0].ID)
	})
}

func TestWatchedMessageReply(t *testing.T) {
	restError := func(status int) error {
		return fmt.Errorf("fetch failed: %w", &discordgo.RESTError{
			Response: &http.Response{StatusCode: status},
		})
	}

	t.Run("NotFound", func(t *testing.T) {
		assert.Equal(t,
			"Couldn't find that message in the given channel!",
			watchedMessageReply(restError(http.StatusNotFound)))
	})

	t.Run("Forbidden", func(t *testing.T) {
		assert.Equal(t,
			"I'm not allowed to read messages in that channel!",
			watchedMessageReply(restError(http.StatusForbidden)))
	})

	t.Run("OtherFailure", func(t *testing.T) {
		assert.Equal(t,
			"Couldn't verify that message, please try again!",
			watchedMessageReply(errors.New("connection reset")))
	})
}

func TestChunkFields(t *testing.T) {
	makeFields := func(n int) []*discordgo.MessageEmbedField {
		fields := make([]*discordgo.MessageEmbedField, n)
		for i := range fields {
			fields[i] = &discordgo.MessageEmbedField{Name: fmt.Sprintf("f%d", i)}
		}
		return fields
	}

	t.Run("FewerThanCapIsOnePage", func(t *testing.T) {
		chunks := chunkFields(makeFields(3), maxEmbedFields)
		require.Len(t, chunks, 1)
		assert.Len(t, chunks[0], 3)
	})

	t.Run("LargeListSplitsAtCap", func(t *testing.T) {
		chunks := chunkFields(makeFields(60), maxEmbedFields)
		require.Len(t, chunks, 3)
		assert.Len(t, chunks[0], 25)
		assert.Len(t, chunks[1], 25)
		assert.Len(t, chunks[2], 10)
	})

	t.Run("EmptyListIsOneEmptyPage", func(t *testing.T) {
		chunks := chunkFields(nil, maxEmbedFields)
		require.Len(t, chunks, 1)
		assert.Empty(t, chunks[0])
	})
}

func TestFocusedOption(t *testing.T) {
	t.Run("FindsNestedFocusedOption", func(t *testing.T) {
		options := []*discordgo.ApplicationCommandInteractionDataOption{
			{
				Name: "remove",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "trigger_id", Focused: true},
				},
			},
		}

		focused := focusedOption(options)
		require.NotNil(t, focused)
		assert.Equal(t, "trigger_id", focused.Name)
	})

	t.Run("NoFocusedOption", func(t *testing.T) {
		options := []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "list"},
		}
		assert.Nil(t, focusedOption(options))
	})
}
