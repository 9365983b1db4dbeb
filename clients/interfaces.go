package clients

import "context"

// DiscordChannel is the subset of channel data the effect sink exposes
type DiscordChannel struct {
	ID      string
	GuildID string
	Name    string
	// IsTextCapable is true when the channel can receive text messages
	// (guild text channels, announcement channels and threads)
	IsTextCapable bool
}

// DiscordClient defines the interface to the external effect sink. Channel
// resolution is cache-first with a remote fetch on miss; effect calls return
// wrapped SDK errors attributed to the single action that made them.
type DiscordClient interface {
	// GetOrFetchChannel resolves a channel from the local session state,
	// falling back to the Discord API when the cache misses
	GetOrFetchChannel(ctx context.Context, channelID string) (*DiscordChannel, error)
	SendMessage(ctx context.Context, channelID, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, channelID, messageID, emoji string) error
}
