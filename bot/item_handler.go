package bot

import (
	"context"
	"fmt"
	"strings"

	"treasurer/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}
	opts := optionMap(i.ApplicationCommandData().Options)

	if opt, ok := opts["item"]; ok {
		item, err := b.itemService.GetItem(ctx, guildID, opt.StringValue())
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respondWithEmbed(s, i, itemEmbed(item, b.currencyEmoji(ctx, guildID)))
		return
	}

	category := ""
	if opt, ok := opts["category"]; ok {
		category = opt.StringValue()
	}
	items, err := b.itemService.ListItems(ctx, guildID, category)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	if len(items) == 0 {
		b.respondEphemeral(s, i, "The shop is empty.")
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	var sb strings.Builder
	for _, item := range items {
		line := fmt.Sprintf("**%s** — %s %s", item.Name, emoji, FormatAmount(item.Price))
		if item.Stock != nil {
			line += fmt.Sprintf(" (%d left)", *item.Stock)
		}
		sb.WriteString(line + "\n")
	}
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Shop",
		Description: sb.String(),
		Color:       0x9b59b6,
	})
}

func itemEmbed(item *models.Item, emoji string) *discordgo.MessageEmbed {
	var sb strings.Builder
	if item.Description != "" {
		sb.WriteString(item.Description + "\n\n")
	}
	fmt.Fprintf(&sb, "Price: %s **%s**\n", emoji, FormatAmount(item.Price))
	if item.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", item.Category)
	}
	if item.Stock != nil {
		fmt.Fprintf(&sb, "Stock: %d\n", *item.Stock)
	}
	if item.MaxPerUser != nil {
		fmt.Fprintf(&sb, "Max per member: %d\n", *item.MaxPerUser)
	}
	if item.ExpiresAt != nil {
		fmt.Fprintf(&sb, "Available until %s\n", FormatDiscordTimestamp(*item.ExpiresAt, "f"))
	}
	if item.Usable {
		sb.WriteString("Usable\n")
	}
	title := item.Name
	if item.Emoji != "" {
		title = item.Emoji + " " + item.Name
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       0x9b59b6,
	}
	if item.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: item.ImageURL}
	}
	return embed
}

func (b *Bot) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	qty := int64(1)
	if opt, ok := opts["quantity"]; ok {
		qty = opt.IntValue()
	}

	result, err := b.itemService.Purchase(ctx, userID, guildID, opts["item"].StringValue(), qty)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	emoji := b.currencyEmoji(ctx, guildID)
	message := fmt.Sprintf("🛒 Bought **%d× %s** for %s **%s**. Cash: **%s**",
		result.Quantity, result.Item.Name, emoji, FormatAmount(result.TotalPrice), FormatAmount(result.NewCash))
	if result.Item.PurchaseMessage != "" {
		message += "\n" + result.Item.PurchaseMessage
	}
	b.respond(s, i, message)
}

func (b *Bot) handleUseItem(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	qty := int64(1)
	if opt, ok := opts["quantity"]; ok {
		qty = opt.IntValue()
	}

	result, err := b.itemService.Use(ctx, userID, guildID, opts["item"].StringValue(), qty)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("✨ Used **%d× %s**.", result.Quantity, result.ItemName))
	for _, effect := range result.Applied {
		switch e := effect.(type) {
		case models.CashEffect:
			lines = append(lines, fmt.Sprintf("You gained **%s** cash.", FormatAmount(e.Amount*result.Quantity)))
		case models.XPEffect:
			lines = append(lines, fmt.Sprintf("You gained **%s** XP.", FormatAmount(e.Amount*result.Quantity)))
		}
	}
	if result.LeveledUp {
		lines = append(lines, fmt.Sprintf("🎉 You reached level **%d**!", result.NewLevel))
	}
	for _, effect := range result.Reported {
		if opaque, ok := effect.(models.OpaqueEffect); ok {
			lines = append(lines, opaque.Value)
		}
	}
	b.respond(s, i, strings.Join(lines, "\n"))
}

func (b *Bot) handleGiveItem(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	qty := int64(1)
	if opt, ok := opts["quantity"]; ok {
		qty = opt.IntValue()
	}
	name := opts["item"].StringValue()

	if err := b.itemService.Give(ctx, userID, recipientID, guildID, name, qty); err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	b.respond(s, i, fmt.Sprintf("🎁 <@%s> gave **%d× %s** to <@%s>.",
		i.Member.User.ID, qty, name, recipient.ID))
}

func (b *Bot) handleInventory(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	entries, err := b.itemService.Inventory(ctx, targetID, guildID)
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}
	if len(entries) == 0 {
		b.respondEphemeral(s, i, "That inventory is empty.")
		return
	}

	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "**%d× %s**\n", entry.Quantity, entry.ItemName)
	}
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Inventory",
		Description: fmt.Sprintf("<@%s>\n%s", mention, sb.String()),
		Color:       0x9b59b6,
	})
}
