package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"treasurer/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// FormatAmount formats a currency amount with thousand separators
func FormatAmount(amount int64) string {
	str := fmt.Sprintf("%d", amount)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n > 3 {
		var result strings.Builder
		for i, digit := range str {
			if i > 0 && (n-i)%3 == 0 {
				result.WriteRune(',')
			}
			result.WriteRune(digit)
		}
		str = result.String()
	}
	if negative {
		return "-" + str
	}
	return str
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays
// in the viewer's local timezone. "R" gives relative time.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// userMessage translates a service error into something safe to show
func userMessage(err error) string {
	if cooldownErr, ok := service.IsCooldown(err); ok {
		return fmt.Sprintf("You can use `%s` again %s.",
			cooldownErr.Action,
			FormatDiscordTimestamp(time.Now().Add(cooldownErr.Remaining), "R"))
	}
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return "You don't have enough cash for that."
	case errors.Is(err, service.ErrInvalidAmount):
		return "That amount or option isn't valid here."
	case errors.Is(err, service.ErrInvalidTarget):
		return "You can't target that user."
	case errors.Is(err, service.ErrNotFound):
		return "Nothing by that name was found."
	case errors.Is(err, service.ErrActiveGame):
		return "You already have a game in progress. Finish it first."
	case errors.Is(err, service.ErrNoActiveGame):
		return "You don't have a game in progress."
	case errors.Is(err, service.ErrOutOfStock):
		return "That item is out of stock."
	case errors.Is(err, service.ErrItemExpired):
		return "That item is no longer available."
	case errors.Is(err, service.ErrLimitExceeded):
		return "That would exceed a purchase limit on this item."
	case errors.Is(err, service.ErrRequirementUnmet):
		return "You don't meet the requirements to buy that item."
	case errors.Is(err, service.ErrNotUsable):
		return "That item can't be used."
	case errors.Is(err, service.ErrAlreadyClaimed):
		return "You already claimed that today."
	default:
		return "Something went wrong. Please try again."
	}
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to interaction: %v", err)
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending ephemeral response: %v", err)
	}
}

func (b *Bot) respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("Error sending embed response: %v", err)
	}
}

func (b *Bot) respondWithServiceError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	b.respondEphemeral(s, i, userMessage(err))
}

// currencyEmoji returns the guild's configured emoji, falling back to the
// global default when settings can't be read.
func (b *Bot) currencyEmoji(ctx context.Context, guildID int64) string {
	settings, err := b.settingsService.Get(ctx, guildID)
	if err != nil || settings.CurrencyEmoji == "" {
		return b.defaultEmoji
	}
	return settings.CurrencyEmoji
}

// interactionIDs extracts the caller and guild IDs from an interaction
func interactionIDs(i *discordgo.InteractionCreate) (userID, guildID int64, err error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, fmt.Errorf("interaction has no guild member")
	}
	userID, err = parseSnowflake(i.Member.User.ID)
	if err != nil {
		return 0, 0, err
	}
	guildID, err = parseSnowflake(i.GuildID)
	if err != nil {
		return 0, 0, err
	}
	return userID, guildID, nil
}

// optionMap flattens interaction options (one level of subcommand) into a
// name-keyed map.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
