package bot

import (
	"context"
	"fmt"
	"strings"

	"treasurer/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// targetOrSelf resolves the "user" option, falling back to the caller
func targetOrSelf(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (int64, string, error) {
	if opt, ok := opts["user"]; ok {
		target := opt.UserValue(s)
		id, err := parseSnowflake(target.ID)
		return id, target.ID, err
	}
	id, err := parseSnowflake(i.Member.User.ID)
	return id, i.Member.User.ID, err
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	targetID, mention, err := targetOrSelf(s, i, opts)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := b.userService.GetOrCreateUser(ctx, targetID, guildID)
	if err != nil {
		log.Errorf("Error getting user %d: %v", targetID, err)
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title: "Balance",
		Description: fmt.Sprintf("<@%s>\n%s Cash: **%s**\n🏦 Bank: **%s**\nTotal: **%s**",
			mention, emoji,
			FormatAmount(user.Cash), FormatAmount(user.Bank), FormatAmount(user.TotalBalance())),
		Color: 0x2ecc71,
	})
}

func (b *Bot) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	var user *models.User
	if opt, ok := opts["amount"]; ok {
		user, err = b.userService.Deposit(ctx, userID, guildID, opt.IntValue())
	} else {
		user, err = b.userService.DepositAll(ctx, userID, guildID)
	}
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	b.respond(s, i, fmt.Sprintf("🏦 Deposited. Cash: **%s**, Bank: **%s**",
		FormatAmount(user.Cash), FormatAmount(user.Bank)))
}

func (b *Bot) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	user, err := b.userService.Withdraw(ctx, userID, guildID, opts["amount"].IntValue())
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	b.respond(s, i, fmt.Sprintf("💵 Withdrawn. Cash: **%s**, Bank: **%s**",
		FormatAmount(user.Cash), FormatAmount(user.Bank)))
}

func (b *Bot) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	recipient := opts["user"].UserValue(s)
	recipientID, err := parseSnowflake(recipient.ID)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.userService.Transfer(ctx, userID, recipientID, guildID, opts["amount"].IntValue())
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	message := fmt.Sprintf("%s <@%s> gave **%s** to <@%s>", emoji,
		i.Member.User.ID, FormatAmount(result.Amount), recipient.ID)
	if result.Tax > 0 {
		message += fmt.Sprintf(" (they received **%s** after a **%s** tax)",
			FormatAmount(result.Received), FormatAmount(result.Tax))
	}
	b.respond(s, i, message)
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	board := "wealth"
	if opt, ok := opts["board"]; ok {
		board = opt.StringValue()
	}
	page := 1
	if opt, ok := opts["page"]; ok && opt.IntValue() > 0 {
		page = int(opt.IntValue())
	}

	var entries []*models.LeaderboardEntry
	var title string
	if board == "xp" {
		title = "XP Leaderboard"
		entries, err = b.levelService.XPLeaderboard(ctx, guildID, page)
	} else {
		title = "Wealth Leaderboard"
		entries, err = b.userService.WealthLeaderboard(ctx, guildID, models.WealthKeyTotal, page)
	}
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	if len(entries) == 0 {
		b.respondEphemeral(s, i, "Nothing on that page.")
		return
	}

	var sb strings.Builder
	for _, entry := range entries {
		if board == "xp" {
			fmt.Fprintf(&sb, "**%d.** <@%d> — level **%d** (%s XP)\n",
				entry.Rank, entry.UserID, entry.Level, FormatAmount(entry.XP))
		} else {
			fmt.Fprintf(&sb, "**%d.** <@%d> — **%s**\n",
				entry.Rank, entry.UserID, FormatAmount(entry.Cash+entry.Bank))
		}
	}
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       0xf1c40f,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d", page)},
	})
}

func (b *Bot) handleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	targetID, mention, err := targetOrSelf(s, i, opts)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := b.userService.GetOrCreateUser(ctx, targetID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	rank, err := b.levelService.Rank(ctx, targetID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	next := b.levelService.XPRequired(user.Level + 1)
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title: "Rank",
		Description: fmt.Sprintf("<@%s> is rank **#%d**\nLevel **%d** — %s / %s XP to next level",
			mention, rank, user.Level, FormatAmount(user.XP), FormatAmount(next)),
		Color: 0x3498db,
	})
}

// signedAmount renders a delta with an explicit sign for history rows
func signedAmount(delta int64) string {
	if delta >= 0 {
		return "+" + FormatAmount(delta)
	}
	return FormatAmount(delta)
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)
	targetID, mention, err := targetOrSelf(s, i, opts)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}
	limit := 10
	if opt, ok := opts["limit"]; ok {
		limit = int(opt.IntValue())
	}

	entries, err := b.auditService.History(ctx, targetID, guildID, limit)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	if len(entries) == 0 {
		b.respondEphemeral(s, i, "No recorded balance changes yet.")
		return
	}

	var sb strings.Builder
	for _, entry := range entries {
		delta := entry.CashChange + entry.BankChange
		fmt.Fprintf(&sb, "%s **%s** `%s` (cash %s, bank %s)\n",
			FormatDiscordTimestamp(entry.CreatedAt, "d"), signedAmount(delta), entry.Reason,
			FormatAmount(entry.NewCash), FormatAmount(entry.NewBank))
	}
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Balance History",
		Description: fmt.Sprintf("<@%s>\n%s", mention, sb.String()),
		Color:       0x95a5a6,
	})
}
