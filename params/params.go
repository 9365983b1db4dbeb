// Package params implements template validation for action parameters and
// construction of the per-event dynamic parameter context used during
// substitution. Validation happens once at action creation; binding happens
// on every dispatch.
package params

import (
	"regexp"
	"strings"

	"actionbot/core"
	"actionbot/models"
	"actionbot/utils"
)

// Context maps dynamic parameter names to live values for one matched
// event/trigger pair. A context is built fresh per dispatch, never persisted
// and never mutated after construction.
type Context map[string]string

const (
	escapedOpen  = "\x00"
	escapedClose = "\x01"
)

var placeholderRegex = regexp.MustCompile(`\{([a-zA-Z0-9_]*)\}`)

// escapeBraces swaps doubled literal braces for sentinels so placeholder
// scanning never sees them. Doubled braces follow the original template
// syntax: "{{" renders as "{".
func escapeBraces(template string) string {
	template = strings.ReplaceAll(template, "{{", escapedOpen)
	return strings.ReplaceAll(template, "}}", escapedClose)
}

func unescapeBraces(template string) string {
	template = strings.ReplaceAll(template, escapedOpen, "{")
	return strings.ReplaceAll(template, escapedClose, "}")
}

// ExtractPlaceholders returns every placeholder token in the template, in
// order of appearance, with duplicates preserved.
func ExtractPlaceholders(template string) []string {
	var tokens []string
	for _, match := range placeholderRegex.FindAllStringSubmatch(escapeBraces(template), -1) {
		tokens = append(tokens, match[1])
	}
	return tokens
}

// ValidateTemplate confirms every placeholder in the template is a declared
// dynamic parameter for the given trigger category. It fails with a
// ValidationError citing the first unknown placeholder found.
func ValidateTemplate(template string, category models.TriggerCategory) error {
	for _, token := range ExtractPlaceholders(template) {
		if token == "" {
			return core.NewValidationError("template", "empty placeholder {} is not allowed")
		}
		if !category.HasDynamicParam(token) {
			return core.NewValidationError(
				"template",
				"{%s} is not a valid parameter for %s triggers",
				token, category,
			)
		}
	}
	return nil
}

// ValidateActionParams checks an action's params against its kind: the key
// set must exactly match the kind's required params, and every templated
// field must only reference dynamic parameters declared by the parent
// trigger's category.
func ValidateActionParams(
	kind models.ActionKind,
	actionParams models.ParamMap,
	category models.TriggerCategory,
) error {
	required := kind.RequiredParams()

	for _, key := range required {
		if _, ok := actionParams[key]; !ok {
			return core.NewValidationError(key, "missing required parameter for %s actions", kind)
		}
	}
	if len(actionParams) != len(required) {
		for key := range actionParams {
			if !containsKey(required, key) {
				return core.NewValidationError(key, "unexpected parameter for %s actions", kind)
			}
		}
	}

	for _, key := range kind.TemplatedParams() {
		if err := ValidateTemplate(actionParams[key], category); err != nil {
			return err
		}
	}
	return nil
}

// ValidateActivationParams checks that a trigger's activation params contain
// exactly the keys mandated by its category - no more, no fewer.
func ValidateActivationParams(category models.TriggerCategory, activationParams models.ParamMap) error {
	required := category.ActivationKeys()

	for _, key := range required {
		if _, ok := activationParams[key]; !ok {
			return core.NewValidationError(key, "missing required parameter for %s triggers", category)
		}
	}
	if len(activationParams) != len(required) {
		for key := range activationParams {
			if !containsKey(required, key) {
				return core.NewValidationError(key, "unexpected parameter for %s triggers", category)
			}
		}
	}
	return nil
}

// Render substitutes every placeholder in the template with its value from
// the context. Creation-time validation already guarantees the template only
// references declared parameters, so a missing context key is a programming
// invariant violation, not a user-facing error.
func Render(template string, ctx Context) string {
	escaped := escapeBraces(template)
	rendered := placeholderRegex.ReplaceAllStringFunc(escaped, func(match string) string {
		token := match[1 : len(match)-1]
		value, ok := ctx[token]
		utils.AssertInvariant(ok, "template references undeclared parameter "+token)
		return value
	})
	return unescapeBraces(rendered)
}

// BuildMessageContext builds the dynamic parameter context for a matched
// Message trigger. The matched string is the full event content, since
// message patterns use full-match semantics.
func BuildMessageContext(event models.MessageEvent, matchedString string) Context {
	return Context{
		models.DynamicParamMember:         event.UserID,
		models.DynamicParamMemberMention:  event.UserMention,
		models.DynamicParamChannel:        event.ChannelMention,
		models.DynamicParamMatchedString:  matchedString,
		models.DynamicParamMessageContent: event.Content,
	}
}

// BuildReactionContext builds the dynamic parameter context for a matched
// ReactionAdd or ReactionRemove trigger.
func BuildReactionContext(event models.ReactionEvent) Context {
	return Context{
		models.DynamicParamMember:        event.UserID,
		models.DynamicParamMemberMention: event.UserMention,
		models.DynamicParamChannel:       event.ChannelMention,
		models.DynamicParamEmoji:         event.Emoji,
	}
}

// BuildMemberContext builds the dynamic parameter context for a matched
// MemberJoin or MemberLeave trigger.
func BuildMemberContext(event models.MemberEvent) Context {
	return Context{
		models.DynamicParamMember:        event.UserID,
		models.DynamicParamMemberMention: event.UserMention,
	}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
