package models

import (
	"time"
)

// ActionKind is the closed set of side effects an action can perform.
// Only MessageSend is currently executable; the remaining kinds are declared
// so operators can see them, and executing one yields an explicit
// not-implemented outcome rather than a silent no-op.
type ActionKind string

const (
	ActionKindMessageSend    ActionKind = "message_send"
	ActionKindMessageDelete  ActionKind = "message_delete"
	ActionKindReactionAdd    ActionKind = "reaction_add"
	ActionKindReactionRemove ActionKind = "reaction_remove"
)

// Action parameter keys.
const (
	ActionParamMessageContent = "message_content"
	ActionParamChannelID      = "channel_id"
)

// IsValid returns true if the kind is a known member of the closed set
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionKindMessageSend,
		ActionKindMessageDelete,
		ActionKindReactionAdd,
		ActionKindReactionRemove:
		return true
	}
	return false
}

// RequiredParams returns the exact key set an action of this kind must store
// in its action params.
func (k ActionKind) RequiredParams() []string {
	switch k {
	case ActionKindMessageSend:
		return []string{ActionParamMessageContent, ActionParamChannelID}
	case ActionKindMessageDelete:
		return []string{ActionParamChannelID, ActivationKeyMessageID}
	case ActionKindReactionAdd, ActionKindReactionRemove:
		return []string{ActionParamChannelID, ActivationKeyMessageID, ActivationKeyEmoji}
	}
	return nil
}

// TemplatedParams returns the keys of this kind's params whose values are
// templates subject to dynamic-parameter substitution. All other params are
// static configuration.
func (k ActionKind) TemplatedParams() []string {
	switch k {
	case ActionKindMessageSend:
		return []string{ActionParamMessageContent}
	}
	return nil
}

// Action is a persisted effect bound to exactly one trigger, executed every
// time that trigger matches an inbound event. Its guild must equal the
// owning trigger's guild.
type Action struct {
	ID           int64      `db:"id"            json:"id"`
	GuildID      string     `db:"guild_id"      json:"guild_id"`
	Kind         ActionKind `db:"kind"          json:"kind"`
	ActionParams ParamMap   `db:"action_params" json:"action_params"`
	TriggerID    int64      `db:"trigger_id"    json:"trigger_id"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}
