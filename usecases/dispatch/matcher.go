package dispatch

import (
	"log"
	"regexp"

	"actionbot/metrics"
	"actionbot/models"
)

// Matching is pure: candidates come from one store snapshot and each
// trigger's activation predicate is evaluated independently, so the order of
// candidates never affects which of them match.

// MatchMessageTriggers returns the candidates whose stored pattern fully
// matches the event content in the trigger's configured channel. A pattern
// that fails to compile is treated as a non-match for that trigger and
// reported; it never fails the batch.
func MatchMessageTriggers(candidates []*models.Trigger, event models.MessageEvent) []*models.Trigger {
	var matched []*models.Trigger
	for _, trigger := range candidates {
		matchStatement := trigger.ActivationParams[models.ActivationKeyMatchStatement]
		channelID := trigger.ActivationParams[models.ActivationKeyChannelID]

		if channelID != event.ChannelID {
			continue
		}

		// Anchor the stored pattern so `hello` matches `hello` but not
		// `hello world`
		re, err := regexp.Compile(`\A(?:` + matchStatement + `)\z`)
		if err != nil {
			log.Printf("❌ Trigger %d has a malformed match statement %q: %v",
				trigger.ID, matchStatement, err)
			metrics.PatternFailures.Inc()
			continue
		}

		if re.MatchString(event.Content) {
			matched = append(matched, trigger)
		}
	}
	return matched
}

// MatchReactionTriggers returns the candidates whose channel and message
// identifiers equal the event's, and whose emoji filter is either unset or
// equal to the event's canonical emoji representation.
func MatchReactionTriggers(candidates []*models.Trigger, event models.ReactionEvent) []*models.Trigger {
	var matched []*models.Trigger
	for _, trigger := range candidates {
		channelID := trigger.ActivationParams[models.ActivationKeyChannelID]
		messageID := trigger.ActivationParams[models.ActivationKeyMessageID]
		emojiFilter := trigger.ActivationParams[models.ActivationKeyEmoji]

		if channelID != event.ChannelID || messageID != event.MessageID {
			continue
		}
		if emojiFilter != "" && emojiFilter != event.Emoji {
			continue
		}
		matched = append(matched, trigger)
	}
	return matched
}

// MatchMemberTriggers returns the candidates whose member filter is unset or
// equal to the event's member identifier.
func MatchMemberTriggers(candidates []*models.Trigger, event models.MemberEvent) []*models.Trigger {
	var matched []*models.Trigger
	for _, trigger := range candidates {
		memberFilter := trigger.ActivationParams[models.ActivationKeyMemberID]

		if memberFilter != "" && memberFilter != event.UserID {
			continue
		}
		matched = append(matched, trigger)
	}
	return matched
}
