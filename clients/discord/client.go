package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"actionbot/clients"
)

// DiscordClient implements the clients.DiscordClient interface on top of a
// shared discordgo session. The session's state cache is consulted before any
// REST call is made.
type DiscordClient struct {
	session *discordgo.Session
}

// NewDiscordClient wraps an existing discordgo session as the effect sink
func NewDiscordClient(session *discordgo.Session) clients.DiscordClient {
	return &DiscordClient{session: session}
}

// GetOrFetchChannel gets a channel from the local state cache, querying the
// Discord API only when the cache misses
func (c *DiscordClient) GetOrFetchChannel(ctx context.Context, channelID string) (*clients.DiscordChannel, error) {
	channel, err := c.session.State.Channel(channelID)
	if err != nil {
		channel, err = c.session.Channel(channelID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
		}
	}

	return &clients.DiscordChannel{
		ID:            channel.ID,
		GuildID:       channel.GuildID,
		Name:          channel.Name,
		IsTextCapable: isTextCapable(channel.Type),
	}, nil
}

func (c *DiscordClient) SendMessage(ctx context.Context, channelID, content string) error {
	if _, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return nil
}

func (c *DiscordClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %s in channel %s: %w", messageID, channelID, err)
	}
	return nil
}

func (c *DiscordClient) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := c.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction to message %s: %w", messageID, err)
	}
	return nil
}

func (c *DiscordClient) RemoveReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := c.session.MessageReactionRemove(channelID, messageID, emoji, "@me", discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove reaction from message %s: %w", messageID, err)
	}
	return nil
}

func isTextCapable(channelType discordgo.ChannelType) bool {
	switch channelType {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}
