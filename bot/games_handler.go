package bot

import (
	"context"
	"fmt"
	"strings"

	"treasurer/models"

	"github.com/bwmarrin/discordgo"
)

func formatHand(hand []models.Card, hideHole bool) string {
	var sb strings.Builder
	for idx, c := range hand {
		if idx > 0 {
			sb.WriteString(" ")
		}
		if hideHole && idx == 1 {
			sb.WriteString("🂠")
			continue
		}
		sb.WriteString("`" + c.String() + "`")
	}
	return sb.String()
}

func blackjackTableEmbed(game *models.BlackjackGame) *discordgo.MessageEmbed {
	playerValue, _ := models.HandValue(game.Player)
	return &discordgo.MessageEmbed{
		Title: "Blackjack",
		Description: fmt.Sprintf("Your hand: %s (**%d**)\nDealer shows: %s\n\nBet: **%s** — `/blackjack hit`, `/blackjack stand`, or `/blackjack double`",
			formatHand(game.Player, false), playerValue,
			formatHand(game.Dealer, true), FormatAmount(game.Bet)),
		Color: 0x34495e,
	}
}

func blackjackResultEmbed(result *models.BlackjackResult) *discordgo.MessageEmbed {
	playerValue, _ := models.HandValue(result.Player)
	dealerValue, _ := models.HandValue(result.Dealer)

	var headline string
	color := 0x95a5a6
	switch result.Outcome {
	case models.OutcomePlayerBlackjack:
		headline = fmt.Sprintf("♠ Blackjack! You win **%s**.", FormatAmount(result.Delta))
		color = 0x2ecc71
	case models.OutcomePlayer:
		headline = fmt.Sprintf("🎉 You win **%s**.", FormatAmount(result.Delta))
		color = 0x2ecc71
	case models.OutcomeDealer:
		headline = fmt.Sprintf("😔 Dealer wins. You lose **%s**.", FormatAmount(-result.Delta))
		color = 0xe74c3c
	default:
		headline = "🤝 Push. Your bet is returned."
	}

	return &discordgo.MessageEmbed{
		Title: "Blackjack",
		Description: fmt.Sprintf("%s\n\nYour hand: %s (**%d**)\nDealer: %s (**%d**)\nCash: **%s**",
			headline,
			formatHand(result.Player, false), playerValue,
			formatHand(result.Dealer, false), dealerValue,
			FormatAmount(result.NewCash)),
		Color: color,
	}
}

func (b *Bot) handleBlackjack(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "play":
		opts := optionMap(sub.Options)
		game, result, err := b.blackjackService.Start(ctx, userID, guildID, opts["bet"].IntValue())
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		if result != nil {
			b.respondWithEmbed(s, i, blackjackResultEmbed(result))
			return
		}
		b.respondWithEmbed(s, i, blackjackTableEmbed(game))

	case "hit":
		game, result, err := b.blackjackService.Hit(ctx, userID, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		if result != nil {
			b.respondWithEmbed(s, i, blackjackResultEmbed(result))
			return
		}
		b.respondWithEmbed(s, i, blackjackTableEmbed(game))

	case "stand":
		result, err := b.blackjackService.Stand(ctx, userID, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respondWithEmbed(s, i, blackjackResultEmbed(result))

	case "double":
		result, err := b.blackjackService.DoubleDown(ctx, userID, guildID)
		if err != nil {
			b.respondWithServiceError(s, i, err)
			return
		}
		b.respondWithEmbed(s, i, blackjackResultEmbed(result))
	}
}

func (b *Bot) handleRoulette(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID, guildID, err := interactionIDs(i)
	if err != nil {
		b.respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	bet := &models.RouletteBet{Kind: models.RouletteBetKind(opts["bet"].StringValue())}
	if bet.Kind == models.BetStraight {
		opt, ok := opts["number"]
		if !ok {
			b.respondEphemeral(s, i, "A straight bet needs a number.")
			return
		}
		bet.Number = models.Pocket(opt.IntValue())
	}

	result, err := b.rouletteService.Spin(ctx, userID, guildID, bet, opts["amount"].IntValue())
	if err != nil {
		b.respondWithServiceError(s, i, err)
		return
	}

	pocket := fmt.Sprintf("**%s** (%s)", result.Pocket, result.Pocket.Color())
	if result.Win {
		b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "Roulette",
			Description: fmt.Sprintf("🎡 The ball lands on %s.\n🎉 You win **%s**! Cash: **%s**", pocket, FormatAmount(result.Delta), FormatAmount(result.NewCash)),
			Color:       0x2ecc71,
		})
		return
	}
	b.respondWithEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Roulette",
		Description: fmt.Sprintf("🎡 The ball lands on %s.\n😔 You lose **%s**. Cash: **%s**", pocket, FormatAmount(-result.Delta), FormatAmount(result.NewCash)),
		Color:       0xe74c3c,
	})
}
