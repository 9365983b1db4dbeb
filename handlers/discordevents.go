package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"actionbot/alerts"
	"actionbot/models"
	"actionbot/usecases"
)

// DiscordEventsHandler bridges the Discord gateway to the dispatch pipeline.
// It maps SDK payloads to our event models, rejects guild-less events (DMs)
// before they reach dispatch, and reports dispatch failures to the alert
// notifier. Each gateway event is handled on its own goroutine by the SDK,
// so unrelated dispatches never block each other.
type DiscordEventsHandler struct {
	session         *discordgo.Session
	dispatchUseCase usecases.DispatchUseCaseInterface
	alertNotifier   *alerts.Notifier
}

func NewDiscordEventsHandler(
	botToken string,
	dispatchUseCase usecases.DispatchUseCaseInterface,
	alertNotifier *alerts.Notifier,
) (*DiscordEventsHandler, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	handler := &DiscordEventsHandler{
		session:         session,
		dispatchUseCase: dispatchUseCase,
		alertNotifier:   alertNotifier,
	}

	session.AddHandler(handler.handleMessageCreatedEvent)
	session.AddHandler(handler.handleReactionAddedEvent)
	session.AddHandler(handler.handleReactionRemovedEvent)
	session.AddHandler(handler.handleMemberJoinedEvent)
	session.AddHandler(handler.handleMemberLeftEvent)

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	return handler, nil
}

// Session exposes the underlying discordgo session for components that share
// it (effect sink, command registration)
func (h *DiscordEventsHandler) Session() *discordgo.Session {
	return h.session
}

// SetDispatchUseCase wires in the dispatch pipeline. The effect sink is built
// around this handler's session, so dispatch can only be constructed after the
// handler; call this before StartBot.
func (h *DiscordEventsHandler) SetDispatchUseCase(dispatchUseCase usecases.DispatchUseCaseInterface) {
	h.dispatchUseCase = dispatchUseCase
}

// StartBot opens the Discord connection and starts listening for events
func (h *DiscordEventsHandler) StartBot() error {
	if err := h.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Printf("🤖 Discord bot is now running and listening for events")
	return nil
}

// StopBot gracefully closes the Discord connection
func (h *DiscordEventsHandler) StopBot() {
	h.session.Close()
}

func (h *DiscordEventsHandler) handleMessageCreatedEvent(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		// Direct messages have no guild context and are never dispatched
		return
	}
	if m.Author == nil || m.Author.Bot {
		// Skip bot-authored messages so a MessageSend action can never
		// re-trigger its own pattern in a loop
		return
	}

	event := models.MessageEvent{
		EventID:        uuid.NewString(),
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		MessageID:      m.ID,
		UserID:         m.Author.ID,
		UserMention:    m.Author.Mention(),
		ChannelMention: channelMention(m.ChannelID),
		Content:        m.Content,
	}

	if _, err := h.dispatchUseCase.ProcessMessageEvent(context.Background(), event); err != nil {
		log.Printf("❌ Failed to dispatch message event %s: %v", event.EventID, err)
		h.alertNotifier.AlertError(err, "message event dispatch")
	}
}

func (h *DiscordEventsHandler) handleReactionAddedEvent(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	h.handleReactionEvent(models.TriggerCategoryReactionAdd, r.MessageReaction)
}

func (h *DiscordEventsHandler) handleReactionRemovedEvent(
	s *discordgo.Session,
	r *discordgo.MessageReactionRemove,
) {
	h.handleReactionEvent(models.TriggerCategoryReactionRemove, r.MessageReaction)
}

func (h *DiscordEventsHandler) handleReactionEvent(
	category models.TriggerCategory,
	r *discordgo.MessageReaction,
) {
	if r.GuildID == "" {
		return
	}

	event := models.ReactionEvent{
		EventID:        uuid.NewString(),
		GuildID:        r.GuildID,
		ChannelID:      r.ChannelID,
		MessageID:      r.MessageID,
		UserID:         r.UserID,
		UserMention:    userMention(r.UserID),
		ChannelMention: channelMention(r.ChannelID),
		Emoji:          canonicalEmoji(r.Emoji),
	}

	if _, err := h.dispatchUseCase.ProcessReactionEvent(context.Background(), category, event); err != nil {
		log.Printf("❌ Failed to dispatch %s event %s: %v", category, event.EventID, err)
		h.alertNotifier.AlertError(err, "reaction event dispatch")
	}
}

func (h *DiscordEventsHandler) handleMemberJoinedEvent(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	h.handleMemberEvent(models.TriggerCategoryMemberJoin, m.GuildID, m.User)
}

func (h *DiscordEventsHandler) handleMemberLeftEvent(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	h.handleMemberEvent(models.TriggerCategoryMemberLeave, m.GuildID, m.User)
}

func (h *DiscordEventsHandler) handleMemberEvent(
	category models.TriggerCategory,
	guildID string,
	user *discordgo.User,
) {
	if guildID == "" || user == nil {
		return
	}

	event := models.MemberEvent{
		EventID:     uuid.NewString(),
		GuildID:     guildID,
		UserID:      user.ID,
		UserMention: user.Mention(),
	}

	if _, err := h.dispatchUseCase.ProcessMemberEvent(context.Background(), category, event); err != nil {
		log.Printf("❌ Failed to dispatch %s event %s: %v", category, event.EventID, err)
		h.alertNotifier.AlertError(err, "member event dispatch")
	}
}

// canonicalEmoji returns the stored/compared form of an emoji: the numeric
// snowflake ID for custom emojis, the unicode name otherwise
func canonicalEmoji(emoji discordgo.Emoji) string {
	if emoji.ID != "" {
		return emoji.ID
	}
	return emoji.Name
}

func userMention(userID string) string {
	return "<@" + userID + ">"
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}
