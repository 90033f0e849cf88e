package bot

import (
	"context"
	"fmt"
	"strings"

	"treasurer/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	moderatorID, guildID, err := interactionIDs(i)
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

	result, err := b.moderationSvc.Warn(ctx, guildID, targetID, moderatorID, opts["reason"].StringValue())
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	message := fmt.Sprintf("⚠️ <@%s> has been warned (%d total): %s",
		target.ID, result.Count, result.Warning.Reason)
	if result.AutoActed {
		message += "\n🔇 They hit the warning threshold and have been timed out."
	} else if result.ActedError != "" {
		message += "\n⚠️ Automatic timeout failed: " + result.ActedError
	}
	b.respond(s, i, message)
}

func (b *Bot) handleWarnings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "list":
		targetID, mention, err := targetOrSelf(s, i, opts)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		warnings, err := b.moderationSvc.Warnings(ctx, guildID, targetID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		if len(warnings) == 0 {
			b.respondEphemeral(s, i, "No warnings on record.")
			return
		}
		var sb strings.Builder
		for _, w := range warnings {
			fmt.Fprintf(&sb, "%s — %s (by <@%d>)\n",
				FormatDiscordTimestamp(w.CreatedAt, "d"), w.Reason, w.ModeratorID)
		}
		b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Warnings",
			Description: fmt.Sprintf("<@%s>\n%s", mention, sb.String()),
			Color:       0xe67e22,
		})

	case "clear":
		target := opts["user"].UserValue(s)
		targetID, err := parseSnowflake(target.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		cleared, err := b.moderationSvc.ClearWarnings(ctx, guildID, targetID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("🧹 Cleared %d warnings for <@%s>.", cleared, target.ID))
	}
}

func (b *Bot) handleEconomyAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	moderatorID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "add-money":
		target := opts["user"].UserValue(s)
		targetID, err := parseSnowflake(target.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		amount := opts["amount"].IntValue()
		toBank := false
		if opt, ok := opts["bank"]; ok {
			toBank = opt.BoolValue()
		}

		deltaCash, deltaBank := amount, int64(0)
		if toBank {
			deltaCash, deltaBank = 0, amount
		}
		reason := fmt.Sprintf("admin adjustment by %d", moderatorID)
		user, err := b.userService.AdminAdjust(ctx, targetID, guildID, deltaCash, deltaBank, reason)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("🔧 Adjusted <@%s> by **%s**. Cash: **%s**, Bank: **%s**",
			target.ID, FormatAmount(amount), FormatAmount(user.Cash), FormatAmount(user.Bank)))

	case "purge":
		target := opts["user"].UserValue(s)
		targetID, err := parseSnowflake(target.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		if err := b.userService.Purge(ctx, targetID, guildID); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		log.WithFields(log.Fields{
			"moderatorID": moderatorID,
			"targetID":    targetID,
			"guildID":     guildID,
		}).Warn("Economy profile purged")
		b.respond(s, i, fmt.Sprintf("🗑️ Economy profile for <@%s> deleted.", target.ID))

	case "stats":
		stats, err := b.userService.EconomyStats(ctx, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		emoji := b.currencyEmoji(ctx, guildID)
		b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title: "Economy Stats",
			Description: fmt.Sprintf("Members: **%d**\n%s In circulation: **%s** (cash **%s**, bank **%s**)\nAverage wealth: **%s**\nRichest: <@%d>",
				stats.Users, emoji,
				FormatAmount(stats.TotalWealth), FormatAmount(stats.TotalCash), FormatAmount(stats.TotalBank),
				FormatAmount(stats.AvgWealth), stats.RichestID),
			Color: 0x1abc9c,
		})
	}
}

func (b *Bot) handleItemAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "create":
		item := &models.Item{
			GuildID: guildID,
			Name:    opts["name"].StringValue(),
			Price:   opts["price"].IntValue(),
		}
		if opt, ok := opts["description"]; ok {
			item.Description = opt.StringValue()
		}
		if opt, ok := opts["category"]; ok {
			item.Category = opt.StringValue()
		}
		if opt, ok := opts["stock"]; ok {
			stock := opt.IntValue()
			item.Stock = &stock
		}
		if opt, ok := opts["usable"]; ok {
			item.Usable = opt.BoolValue()
		}

		created, err := b.itemService.CreateItem(ctx, item)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("✅ Created **%s** at %s **%s**.",
			created.Name, b.currencyEmoji(ctx, guildID), FormatAmount(created.Price)))

	case "delete":
		name := opts["name"].StringValue()
		if err := b.itemService.DeleteItem(ctx, guildID, name); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("🗑️ Deleted **%s** and every held copy.", name))

	case "spawn":
		target := opts["user"].UserValue(s)
		targetID, err := parseSnowflake(target.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		qty := int64(1)
		if opt, ok := opts["quantity"]; ok {
			qty = opt.IntValue()
		}
		name := opts["item"].StringValue()
		if err := b.itemService.Spawn(ctx, targetID, guildID, name, qty); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("✨ Spawned **%d× %s** for <@%s>.", qty, name, target.ID))

	case "take":
		target := opts["user"].UserValue(s)
		targetID, err := parseSnowflake(target.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		qty := int64(1)
		if opt, ok := opts["quantity"]; ok {
			qty = opt.IntValue()
		}
		name := opts["item"].StringValue()
		if err := b.itemService.Take(ctx, targetID, guildID, name, qty); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("🗑️ Took **%d× %s** from <@%s>.", qty, name, target.ID))
	}
}

func (b *Bot) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "view":
		settings, err := b.settingsService.Get(ctx, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title: "Economy Settings",
			Description: fmt.Sprintf("Currency emoji: %s\nPassive income per message: **%s**\nSalary mode: **%s**",
				settings.CurrencyEmoji, FormatAmount(settings.PassiveChatIncome), settings.IncomeReset),
			Color: 0x95a5a6,
		})

	case "set":
		settings, err := b.settingsService.Get(ctx, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		if opt, ok := opts["emoji"]; ok {
			settings.CurrencyEmoji = opt.StringValue()
		}
		if opt, ok := opts["passive-income"]; ok {
			settings.PassiveChatIncome = opt.IntValue()
		}
		var warning string
		if opt, ok := opts["income-reset"]; ok {
			switch opt.StringValue() {
			case "daily":
				settings.IncomeReset = models.IncomeResetDaily
			case "accumulate":
				settings.IncomeReset = models.IncomeResetAccumulate
				warning = "\n⚠️ Accumulate mode does not rate limit salary claims."
			}
		}
		if err := b.settingsService.Update(ctx, settings); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, "✅ Settings updated."+warning)
	}
}

func (b *Bot) handleIncomeRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "set":
		role := opts["role"].RoleValue(s, i.GuildID)
		roleID, err := parseSnowflake(role.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		salary := opts["salary"].IntValue()
		err = b.settingsService.SetIncomeRole(ctx, &models.IncomeRole{
			GuildID:     guildID,
			RoleID:      roleID,
			DailyIncome: salary,
		})
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("✅ Members with <@&%s> now earn **%s** per day.",
			role.ID, FormatAmount(salary)))

	case "remove":
		role := opts["role"].RoleValue(s, i.GuildID)
		roleID, err := parseSnowflake(role.ID)
		if err != nil {
			b.respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		if err := b.settingsService.RemoveIncomeRole(ctx, guildID, roleID); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("🗑️ <@&%s> no longer pays a salary.", role.ID))

	case "list":
		roles, err := b.settingsService.ListIncomeRoles(ctx, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		if len(roles) == 0 {
			b.respondEphemeral(s, i, "No income roles configured.")
			return
		}
		var sb strings.Builder
		for _, role := range roles {
			fmt.Fprintf(&sb, "<@&%d> — **%s** per day\n", role.RoleID, FormatAmount(role.DailyIncome))
		}
		b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Income Roles",
			Description: sb.String(),
			Color:       0x1abc9c,
		})
	}
}

func (b *Bot) handleLevelReward(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	_, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "set":
		reward := &models.LevelReward{
			GuildID: guildID,
			Level:   opts["level"].IntValue(),
		}
		if opt, ok := opts["money"]; ok {
			reward.Money = opt.IntValue()
		}
		if opt, ok := opts["role"]; ok {
			role := opt.RoleValue(s, i.GuildID)
			roleID, err := parseSnowflake(role.ID)
			if err != nil {
				b.respondEphemeral(s, i, "Unable to process request. Please try again.")
				return
			}
			reward.RolesAdd = []int64{roleID}
		}
		if err := b.levelService.SetReward(ctx, reward); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("✅ Reward for level **%d** saved.", reward.Level))

	case "delete":
		level := opts["level"].IntValue()
		if err := b.levelService.DeleteReward(ctx, guildID, level); err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respond(s, i, fmt.Sprintf("🗑️ Reward for level **%d** removed.", level))

	case "list":
		rewards, err := b.levelService.ListRewards(ctx, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		if len(rewards) == 0 {
			b.respondEphemeral(s, i, "No level rewards configured.")
			return
		}
		var sb strings.Builder
		for _, reward := range rewards {
			parts := []string{}
			if reward.Money > 0 {
				parts = append(parts, fmt.Sprintf("**%s** cash", FormatAmount(reward.Money)))
			}
			for _, roleID := range reward.RolesAdd {
				parts = append(parts, fmt.Sprintf("<@&%d>", roleID))
			}
			for name, qty := range reward.Items {
				parts = append(parts, fmt.Sprintf("%d× %s", qty, name))
			}
			if len(parts) == 0 {
				parts = append(parts, "nothing")
			}
			fmt.Fprintf(&sb, "Level **%d** — %s\n", reward.Level, strings.Join(parts, ", "))
		}
		b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Level Rewards",
			Description: sb.String(),
			Color:       0x3498db,
		})
	}
}
