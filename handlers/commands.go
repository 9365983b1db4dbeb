package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"actionbot/core"
	"actionbot/models"
	"actionbot/services"
)

// CommandsHandler implements the operator-facing slash commands that create,
// list and remove triggers and actions.
type CommandsHandler struct {
	session         *discordgo.Session
	triggersService services.TriggersService
	actionsService  services.ActionsService
}

func NewCommandsHandler(
	session *discordgo.Session,
	triggersService services.TriggersService,
	actionsService services.ActionsService,
) *CommandsHandler {
	handler := &CommandsHandler{
		session:         session,
		triggersService: triggersService,
		actionsService:  actionsService,
	}
	session.AddHandler(handler.handleInteraction)
	return handler
}

var adminPermission int64 = discordgo.PermissionAdministrator

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "trigger",
			Description:              "Add or modify action triggers",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "add",
					Description: "Add action triggers",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "message",
							Description: "Trigger when a new message fully matches the match statement (regex allowed)",
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "match_statement",
									Description: "Pattern the whole message content must match",
									Required:    true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionChannel,
									Name:        "channel",
									Description: "Channel to watch",
									Required:    true,
								},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "reactionadd",
							Description: "Trigger when someone reacts to a message. Matches all emojis by default",
							Options:     reactionTriggerOptions(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "reactionremove",
							Description: "Trigger when someone unreacts from a message. Matches all emojis by default",
							Options:     reactionTriggerOptions(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "memberjoin",
							Description: "Trigger when a member joins the server",
							Options:     memberTriggerOptions(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "memberleave",
							Description: "Trigger when a member leaves the server",
							Options:     memberTriggerOptions(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Permanently remove a trigger and all associated actions",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionInteger,
							Name:         "trigger_id",
							Description:  "ID of the trigger to remove",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all the triggers in the current server",
				},
			},
		},
		{
			Name:                     "action",
			Description:              "Add or modify actions",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "add",
					Description: "Add new actions",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "messagesend",
							Description: "Send a message when the trigger fires",
							Options: []*discordgo.ApplicationCommandOption{
								{
									Type:         discordgo.ApplicationCommandOptionInteger,
									Name:         "trigger_id",
									Description:  "ID of the trigger to bind this action to",
									Required:     true,
									Autocomplete: true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionString,
									Name:        "message_content",
									Description: "Message to send; dynamic parameters like {member_mention} are substituted",
									Required:    true,
								},
								{
									Type:        discordgo.ApplicationCommandOptionChannel,
									Name:        "channel",
									Description: "Channel to send the message to",
									Required:    true,
								},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Permanently remove an action",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionInteger,
							Name:         "action_id",
							Description:  "ID of the action to remove",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List all the actions in the current server",
				},
			},
		},
	}
}

func reactionTriggerOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Channel containing the message",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message_id",
			Description: "ID of the message to watch",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "emoji",
			Description: "Custom emoji ID or unicode emoji to filter on; leave empty for all emojis",
			Required:    false,
		},
	}
}

func memberTriggerOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "member",
			Description: "Only fire for this member; leave empty for all members",
			Required:    false,
		},
	}
}

// RegisterCommands creates the application commands with Discord. Must be
// called after the session is open.
func (h *CommandsHandler) RegisterCommands() error {
	for _, cmd := range commandDefinitions() {
		if _, err := h.session.ApplicationCommandCreate(h.session.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("failed to register /%s command: %w", cmd.Name, err)
		}
	}

	log.Printf("✅ Registered operator slash commands")
	return nil
}

func (h *CommandsHandler) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}

	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		h.handleAutocomplete(ctx, i)
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "trigger":
			h.handleTriggerCommand(ctx, i, data.Options[0])
		case "action":
			h.handleActionCommand(ctx, i, data.Options[0])
		}
	}
}

// Discord caps an autocomplete response at 25 choices
const maxAutocompleteChoices = 25

// handleAutocomplete suggests existing trigger/action IDs while the operator
// is still typing the id option
func (h *CommandsHandler) handleAutocomplete(ctx context.Context, i *discordgo.InteractionCreate) {
	focused := focusedOption(i.ApplicationCommandData().Options)
	if focused == nil {
		return
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch focused.Name {
	case "trigger_id":
		triggers, err := h.triggersService.ListTriggers(ctx, i.GuildID)
		if err != nil {
			log.Printf("❌ Failed to list triggers for autocomplete: %v", err)
			return
		}
		for _, trigger := range triggers {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%d (%s)", trigger.ID, trigger.Category),
				Value: trigger.ID,
			})
		}
	case "action_id":
		actions, err := h.actionsService.ListActions(ctx, i.GuildID)
		if err != nil {
			log.Printf("❌ Failed to list actions for autocomplete: %v", err)
			return
		}
		for _, action := range actions {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%d (%s, trigger %d)", action.ID, action.Kind, action.TriggerID),
				Value: action.ID,
			})
		}
	default:
		return
	}

	if len(choices) > maxAutocompleteChoices {
		choices = choices[:maxAutocompleteChoices]
	}

	err := h.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		log.Printf("❌ Failed to respond to autocomplete: %v", err)
	}
}

// focusedOption walks the nested subcommand options to the one currently
// being typed
func focusedOption(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
		if nested := focusedOption(opt.Options); nested != nil {
			return nested
		}
	}
	return nil
}

func (h *CommandsHandler) handleTriggerCommand(
	ctx context.Context,
	i *discordgo.InteractionCreate,
	opt *discordgo.ApplicationCommandInteractionDataOption,
) {
	switch opt.Name {
	case "add":
		sub := opt.Options[0]
		options := indexOptions(sub.Options)

		var category models.TriggerCategory
		activationParams := models.ParamMap{}

		switch sub.Name {
		case "message":
			category = models.TriggerCategoryMessage
			activationParams[models.ActivationKeyMatchStatement] = options["match_statement"].StringValue()
			activationParams[models.ActivationKeyChannelID] = options["channel"].ChannelValue(nil).ID
		case "reactionadd", "reactionremove":
			if sub.Name == "reactionadd" {
				category = models.TriggerCategoryReactionAdd
			} else {
				category = models.TriggerCategoryReactionRemove
			}
			channelID := options["channel"].ChannelValue(nil).ID
			messageID := options["message_id"].StringValue()
			if reply := h.verifyWatchedMessage(channelID, messageID); reply != "" {
				h.respondEphemeral(i, reply)
				return
			}
			activationParams[models.ActivationKeyChannelID] = channelID
			activationParams[models.ActivationKeyMessageID] = messageID
			activationParams[models.ActivationKeyEmoji] = normalizeEmojiOption(optionalString(options, "emoji"))
		case "memberjoin", "memberleave":
			if sub.Name == "memberjoin" {
				category = models.TriggerCategoryMemberJoin
			} else {
				category = models.TriggerCategoryMemberLeave
			}
			activationParams[models.ActivationKeyMemberID] = optionalUserID(options, "member")
		default:
			return
		}

		trigger, err := h.triggersService.CreateTrigger(ctx, i.GuildID, category, activationParams)
		if err != nil {
			h.respondError(i, err)
			return
		}

		h.respondEmbed(i, &discordgo.MessageEmbed{
			Title:       "New Trigger",
			Description: "A new trigger has been created!",
			Color:       0x00008b,
			Fields: append([]*discordgo.MessageEmbedField{
				{Name: "Trigger ID", Value: fmt.Sprintf("%d", trigger.ID), Inline: true},
				{Name: "Trigger Category", Value: string(trigger.Category), Inline: true},
			}, paramFields(trigger.ActivationParams)...),
		})

	case "remove":
		triggerID := indexOptions(opt.Options)["trigger_id"].IntValue()

		if err := h.triggersService.DeleteTrigger(ctx, triggerID, i.GuildID); err != nil {
			h.respondError(i, err)
			return
		}

		h.respondEmbed(i, &discordgo.MessageEmbed{
			Title:       "Removed Trigger",
			Description: "An existing trigger has been permanently removed, along with all actions associated with it!",
			Color:       0x00008b,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Trigger ID", Value: fmt.Sprintf("%d", triggerID), Inline: true},
			},
		})

	case "list":
		triggers, err := h.triggersService.ListTriggers(ctx, i.GuildID)
		if err != nil {
			h.respondError(i, err)
			return
		}
		if len(triggers) == 0 {
			h.respondEphemeral(i, "This server has no triggers!")
			return
		}

		var fields []*discordgo.MessageEmbedField
		for _, trigger := range triggers {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:  fmt.Sprintf("Trigger ID: %d", trigger.ID),
				Value: fmt.Sprintf("Category: `%s`\n%s", trigger.Category, formatParams(trigger.ActivationParams)),
			})
		}
		h.respondFieldPages(i, "Triggers in this server", 0x00008b, fields)
	}
}

func (h *CommandsHandler) handleActionCommand(
	ctx context.Context,
	i *discordgo.InteractionCreate,
	opt *discordgo.ApplicationCommandInteractionDataOption,
) {
	switch opt.Name {
	case "add":
		sub := opt.Options[0]
		if sub.Name != "messagesend" {
			return
		}
		options := indexOptions(sub.Options)

		actionParams := models.ParamMap{
			models.ActionParamMessageContent: options["message_content"].StringValue(),
			models.ActionParamChannelID:      options["channel"].ChannelValue(nil).ID,
		}

		action, err := h.actionsService.CreateAction(
			ctx,
			options["trigger_id"].IntValue(),
			i.GuildID,
			models.ActionKindMessageSend,
			actionParams,
		)
		if err != nil {
			h.respondError(i, err)
			return
		}

		h.respondEmbed(i, &discordgo.MessageEmbed{
			Title:       "New Action",
			Description: "A new action has been created!",
			Color:       0x2ecc71,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Action ID", Value: fmt.Sprintf("%d", action.ID), Inline: true},
				{Name: "Trigger ID", Value: fmt.Sprintf("%d", action.TriggerID), Inline: true},
				{Name: "Action Kind", Value: string(action.Kind), Inline: true},
				{Name: "Message Content", Value: truncate(actionParams[models.ActionParamMessageContent], 100)},
			},
		})

	case "remove":
		actionID := indexOptions(opt.Options)["action_id"].IntValue()

		if err := h.actionsService.DeleteAction(ctx, actionID, i.GuildID); err != nil {
			h.respondError(i, err)
			return
		}

		h.respondEmbed(i, &discordgo.MessageEmbed{
			Title:       "Removed Action",
			Description: "An existing action has been permanently removed!",
			Color:       0x2ecc71,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Action ID", Value: fmt.Sprintf("%d", actionID), Inline: true},
			},
		})

	case "list":
		actions, err := h.actionsService.ListActions(ctx, i.GuildID)
		if err != nil {
			h.respondError(i, err)
			return
		}
		if len(actions) == 0 {
			h.respondEphemeral(i, "This server has no actions!")
			return
		}

		var fields []*discordgo.MessageEmbedField
		for _, action := range actions {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name: fmt.Sprintf("Action ID: %d", action.ID),
				Value: fmt.Sprintf("Trigger ID: %d\nKind: `%s`\n%s",
					action.TriggerID, action.Kind, formatParams(action.ActionParams)),
			})
		}
		h.respondFieldPages(i, "Actions in this server", 0x2ecc71, fields)
	}
}

func (h *CommandsHandler) respondError(i *discordgo.InteractionCreate, err error) {
	switch {
	case core.IsValidationError(err):
		h.respondEphemeral(i, fmt.Sprintf("Invalid definition: %v", err))
	case core.IsNotFoundError(err):
		h.respondEphemeral(i, "Couldn't find that ID in this server!")
	default:
		log.Printf("❌ Command failed: %v", err)
		h.respondEphemeral(i, "Something went wrong, please try again!")
	}
}

func (h *CommandsHandler) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := h.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("❌ Failed to respond to interaction: %v", err)
	}
}

func (h *CommandsHandler) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := h.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("❌ Failed to respond to interaction: %v", err)
	}
}

// Discord caps an embed at 25 fields
const maxEmbedFields = 25

func chunkFields(fields []*discordgo.MessageEmbedField, size int) [][]*discordgo.MessageEmbedField {
	var chunks [][]*discordgo.MessageEmbedField
	for len(fields) > size {
		chunks = append(chunks, fields[:size])
		fields = fields[size:]
	}
	return append(chunks, fields)
}

// respondFieldPages sends the fields as a sequence of embeds so large guilds
// never exceed the per-embed field cap: the first page is the interaction
// response, remaining pages follow up on the same interaction.
func (h *CommandsHandler) respondFieldPages(
	i *discordgo.InteractionCreate,
	title string,
	color int,
	fields []*discordgo.MessageEmbedField,
) {
	pages := chunkFields(fields, maxEmbedFields)
	for idx, page := range pages {
		pageTitle := title
		if len(pages) > 1 {
			pageTitle = fmt.Sprintf("%s (%d/%d)", title, idx+1, len(pages))
		}
		embed := &discordgo.MessageEmbed{Title: pageTitle, Color: color, Fields: page}

		if idx == 0 {
			h.respondEmbed(i, embed)
			continue
		}
		_, err := h.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
		})
		if err != nil {
			log.Printf("❌ Failed to send list page %d/%d: %v", idx+1, len(pages), err)
		}
	}
}

// customEmojiMention is the form Discord clients insert into a string option
// when the operator types a custom emoji: <:name:id> or <a:name:id> for
// animated ones.
var customEmojiMention = regexp.MustCompile(`\A<a?:[\w~]+:(\d+)>\z`)

// normalizeEmojiOption reduces a typed emoji to the canonical stored form:
// the bare snowflake ID for a custom emoji mention, the literal input
// otherwise (unicode emoji, or empty for no filter). Inbound reaction events
// are canonicalized the same way, so the stored filter compares equal.
func normalizeEmojiOption(input string) string {
	if m := customEmojiMention.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// verifyWatchedMessage confirms the target message is readable before the
// trigger is persisted, so typos surface at creation instead of producing a
// trigger that never fires. Returns an operator-facing reply on failure,
// empty string on success.
func (h *CommandsHandler) verifyWatchedMessage(channelID, messageID string) string {
	if _, err := h.session.ChannelMessage(channelID, messageID); err != nil {
		log.Printf("⚠️ Could not verify message %s in channel %s: %v", messageID, channelID, err)
		return watchedMessageReply(err)
	}
	return ""
}

func watchedMessageReply(err error) string {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return "Couldn't find that message in the given channel!"
		case http.StatusForbidden:
			return "I'm not allowed to read messages in that channel!"
		}
	}
	return "Couldn't verify that message, please try again!"
}

func indexOptions(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	indexed := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		indexed[opt.Name] = opt
	}
	return indexed
}

func optionalString(
	options map[string]*discordgo.ApplicationCommandInteractionDataOption,
	name string,
) string {
	if opt, ok := options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func optionalUserID(
	options map[string]*discordgo.ApplicationCommandInteractionDataOption,
	name string,
) string {
	if opt, ok := options[name]; ok {
		if user := opt.UserValue(nil); user != nil {
			return user.ID
		}
	}
	return ""
}

func paramFields(paramMap models.ParamMap) []*discordgo.MessageEmbedField {
	var fields []*discordgo.MessageEmbedField
	for key, value := range paramMap {
		if value == "" {
			value = "(unset)"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   strings.ReplaceAll(key, "_", " "),
			Value:  fmt.Sprintf("`%s`", value),
			Inline: true,
		})
	}
	return fields
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func formatParams(paramMap models.ParamMap) string {
	var lines []string
	for key, value := range paramMap {
		if value == "" {
			value = "(unset)"
		}
		lines = append(lines, fmt.Sprintf("%s: `%s`", strings.ReplaceAll(key, "_", " "), value))
	}
	return strings.Join(lines, "\n")
}
