package models

import (
	"time"
)

// TriggerCategory is the closed set of platform event kinds a trigger can
// react to. Each category statically determines both the activation-parameter
// keys a trigger must store and the dynamic parameters its actions may
// reference in templates.
type TriggerCategory string

const (
	TriggerCategoryMessage        TriggerCategory = "message"
	TriggerCategoryReactionAdd    TriggerCategory = "reaction_add"
	TriggerCategoryReactionRemove TriggerCategory = "reaction_remove"
	TriggerCategoryMemberJoin     TriggerCategory = "member_join"
	TriggerCategoryMemberLeave    TriggerCategory = "member_leave"
)

// Activation parameter keys. Channel/message/member identifiers are Discord
// snowflakes carried as strings; an empty emoji or member_id value means the
// filter is unset and matches everything.
const (
	ActivationKeyMatchStatement = "match_statement"
	ActivationKeyChannelID      = "channel_id"
	ActivationKeyMessageID      = "message_id"
	ActivationKeyEmoji          = "emoji"
	ActivationKeyMemberID       = "member_id"
)

// Dynamic parameter names exposed to action templates.
const (
	DynamicParamMember         = "member"
	DynamicParamMemberMention  = "member_mention"
	DynamicParamChannel        = "channel"
	DynamicParamMatchedString  = "matched_string"
	DynamicParamMessageContent = "message_content"
	DynamicParamEmoji          = "emoji"
)

// IsValid returns true if the category is a known member of the closed set
func (c TriggerCategory) IsValid() bool {
	switch c {
	case TriggerCategoryMessage,
		TriggerCategoryReactionAdd,
		TriggerCategoryReactionRemove,
		TriggerCategoryMemberJoin,
		TriggerCategoryMemberLeave:
		return true
	}
	return false
}

// ActivationKeys returns the exact key set a trigger of this category must
// store in its activation params - no more, no fewer.
func (c TriggerCategory) ActivationKeys() []string {
	switch c {
	case TriggerCategoryMessage:
		return []string{ActivationKeyMatchStatement, ActivationKeyChannelID}
	case TriggerCategoryReactionAdd, TriggerCategoryReactionRemove:
		return []string{ActivationKeyChannelID, ActivationKeyMessageID, ActivationKeyEmoji}
	case TriggerCategoryMemberJoin, TriggerCategoryMemberLeave:
		return []string{ActivationKeyMemberID}
	}
	return nil
}

// DynamicParams returns the closed set of dynamic parameter names this
// category guarantees to populate for every matched event.
func (c TriggerCategory) DynamicParams() []string {
	switch c {
	case TriggerCategoryMessage:
		return []string{
			DynamicParamMember,
			DynamicParamMemberMention,
			DynamicParamChannel,
			DynamicParamMatchedString,
			DynamicParamMessageContent,
		}
	case TriggerCategoryReactionAdd, TriggerCategoryReactionRemove:
		return []string{
			DynamicParamMember,
			DynamicParamMemberMention,
			DynamicParamChannel,
			DynamicParamEmoji,
		}
	case TriggerCategoryMemberJoin, TriggerCategoryMemberLeave:
		return []string{
			DynamicParamMember,
			DynamicParamMemberMention,
		}
	}
	return nil
}

// HasDynamicParam returns true if name is a declared dynamic parameter for
// this category
func (c TriggerCategory) HasDynamicParam(name string) bool {
	for _, p := range c.DynamicParams() {
		if p == name {
			return true
		}
	}
	return false
}

// Trigger is a persisted rule matching one category of platform event within
// one guild. Triggers are immutable once created; removal cascades to all
// actions bound to the trigger.
type Trigger struct {
	ID               int64           `db:"id"                json:"id"`
	GuildID          string          `db:"guild_id"          json:"guild_id"`
	Category         TriggerCategory `db:"category"          json:"category"`
	ActivationParams ParamMap        `db:"activation_params" json:"activation_params"`
	CreatedAt        time.Time       `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"        json:"updated_at"`

	// Actions are eagerly loaded alongside the trigger by the repository
	Actions []*Action `db:"-" json:"actions,omitempty"`
}
