package models

// Inbound gateway events, mapped from the platform SDK's payloads before they
// reach the dispatch pipeline. Every event carries the guild it originated in;
// guild-less events (DMs) are rejected by the gateway handler and never reach
// dispatch. EventID is assigned by the handler for log correlation.

type MessageEvent struct {
	EventID        string `json:"event_id"`
	GuildID        string `json:"guild_id"`
	ChannelID      string `json:"channel_id"`
	MessageID      string `json:"message_id"`
	UserID         string `json:"user_id"`
	UserMention    string `json:"user_mention"`
	ChannelMention string `json:"channel_mention"`
	Content        string `json:"content"`
}

type ReactionEvent struct {
	EventID        string `json:"event_id"`
	GuildID        string `json:"guild_id"`
	ChannelID      string `json:"channel_id"`
	MessageID      string `json:"message_id"`
	UserID         string `json:"user_id"`
	UserMention    string `json:"user_mention"`
	ChannelMention string `json:"channel_mention"`
	// Emoji is the canonical filter representation: the numeric snowflake ID
	// (as a decimal string) for custom emojis, the unicode name otherwise.
	Emoji string `json:"emoji"`
}

type MemberEvent struct {
	EventID     string `json:"event_id"`
	GuildID     string `json:"guild_id"`
	UserID      string `json:"user_id"`
	UserMention string `json:"user_mention"`
}
