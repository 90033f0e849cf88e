package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.incomeService.Work(ctx, userID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	message := fmt.Sprintf("💼 You worked and earned %s **%s**.", emoji, FormatAmount(result.Gain))
	if result.Bonus {
		message = fmt.Sprintf("💼 Outstanding shift! Bonus pay brings you %s **%s**.", emoji, FormatAmount(result.Gain))
	}
	b.respond(s, i, fmt.Sprintf("%s Cash: **%s**", message, FormatAmount(result.NewCash)))
}

func (b *Bot) handleCrime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.incomeService.Crime(ctx, userID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	if result.Success {
		b.respond(s, i, fmt.Sprintf("🔫 You pulled it off and made %s **%s**. Cash: **%s**",
			emoji, FormatAmount(result.Gain), FormatAmount(result.NewCash)))
		return
	}
	b.respond(s, i, fmt.Sprintf("🚓 You got caught and paid %s **%s** in fines. Cash: **%s**",
		emoji, FormatAmount(result.Loss), FormatAmount(result.NewCash)))
}

func (b *Bot) handleSlut(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.incomeService.Slut(ctx, userID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	if result.Success {
		b.respond(s, i, fmt.Sprintf("💋 The night went well: %s **%s**. Cash: **%s**",
			emoji, FormatAmount(result.Gain), FormatAmount(result.NewCash)))
		return
	}
	b.respond(s, i, fmt.Sprintf("🤕 That went badly. You lost %s **%s**. Cash: **%s**",
		emoji, FormatAmount(result.Loss), FormatAmount(result.NewCash)))
}

func (b *Bot) handleRob(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	target := opts["user"].UserValue(s)
	targetID, err := parseSnowflake(target.ID)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.incomeService.Rob(ctx, userID, targetID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	if result.Success {
		b.respond(s, i, fmt.Sprintf("🦹 <@%s> robbed <@%s> of %s **%s**! Cash: **%s**",
			i.Member.User.ID, target.ID, emoji, FormatAmount(result.Stolen), FormatAmount(result.ActorCash)))
		return
	}
	b.respond(s, i, fmt.Sprintf("🚨 <@%s> was caught robbing <@%s> and fined %s **%s**. Cash: **%s**",
		i.Member.User.ID, target.ID, emoji, FormatAmount(result.Fine), FormatAmount(result.ActorCash)))
}

func (b *Bot) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.incomeService.Daily(ctx, userID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	b.respond(s, i, fmt.Sprintf("📅 Daily reward collected: %s **%s**. Cash: **%s**",
		emoji, FormatAmount(result.Amount), FormatAmount(result.NewCash)))
}

func (b *Bot) handleClaimSalary(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.passiveService.ClaimSalary(ctx, userID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	if !result.Claimed {
		b.respondEphemeral(s, i, "Nothing to claim: you hold no income roles.")
		return
	}
	emoji := b.currencyEmoji(ctx, guildID)
	b.respond(s, i, fmt.Sprintf("💰 Salary of %s **%s** deposited to your bank.",
		emoji, FormatAmount(result.Amount)))
}
