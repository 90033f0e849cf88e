package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var manageGuild int64 = discordgo.PermissionManageServer

func (b *Bot) registerCommands() error {
	userOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}
	intOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}
	stringOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}
	roleOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        name,
			Description: description,
			Required:    required,
		}
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check cash and bank balances",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "User to check (defaults to you)", false)},
		},
		{
			Name:        "deposit",
			Description: "Move cash into your bank",
			Options:     []*discordgo.ApplicationCommandOption{intOption("amount", "Amount to deposit (omit for all)", false)},
		},
		{
			Name:        "withdraw",
			Description: "Move money from your bank to cash",
			Options:     []*discordgo.ApplicationCommandOption{intOption("amount", "Amount to withdraw", true)},
		},
		{
			Name:        "give",
			Description: "Give cash to another member (a transfer tax applies)",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Recipient", true),
				intOption("amount", "Amount of cash to give", true),
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the guild leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "board",
					Description: "Which board to show",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "wealth", Value: "wealth"},
						{Name: "xp", Value: "xp"},
					},
				},
				intOption("page", "Page number", false),
			},
		},
		{
			Name:        "rank",
			Description: "Show level, XP, and rank",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "User to check (defaults to you)", false)},
		},
		{
			Name:        "history",
			Description: "Show recent balance changes",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "User to check (defaults to you)", false),
				intOption("limit", "How many entries (default 10, max 50)", false),
			},
		},
		{Name: "work", Description: "Do an honest day's work"},
		{Name: "crime", Description: "Commit a crime for a big payout, or a big loss"},
		{Name: "slut", Description: "Take a shady gig for quick cash"},
		{
			Name:        "rob",
			Description: "Try to rob another member's cash",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member to rob", true)},
		},
		{Name: "daily", Description: "Collect your daily reward"},
		{Name: "claim", Description: "Claim your income role salary"},
		{
			Name:        "blackjack",
			Description: "Play blackjack",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "play",
					Description: "Start a hand",
					Options:     []*discordgo.ApplicationCommandOption{intOption("bet", "Amount to bet", true)},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "hit", Description: "Draw another card"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "stand", Description: "Stand and let the dealer play"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "double", Description: "Double your bet, draw one card, and stand"},
			},
		},
		{
			Name:        "roulette",
			Description: "Spin the roulette wheel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "bet",
					Description: "Bet type",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "red", Value: "red"},
						{Name: "black", Value: "black"},
						{Name: "odd", Value: "odd"},
						{Name: "even", Value: "even"},
						{Name: "low (1-18)", Value: "low"},
						{Name: "high (19-36)", Value: "high"},
						{Name: "dozen 1 (1-12)", Value: "dozen1"},
						{Name: "dozen 2 (13-24)", Value: "dozen2"},
						{Name: "dozen 3 (25-36)", Value: "dozen3"},
						{Name: "column 1", Value: "column1"},
						{Name: "column 2", Value: "column2"},
						{Name: "column 3", Value: "column3"},
						{Name: "straight (single number)", Value: "straight"},
					},
				},
				intOption("amount", "Amount to bet", true),
				intOption("number", "Number for a straight bet", false),
			},
		},
		{
			Name:        "shop",
			Description: "Browse the guild shop",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("category", "Filter by category", false),
				stringOption("item", "Show one item in detail", false),
			},
		},
		{
			Name:        "buy",
			Description: "Buy an item from the shop",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("item", "Item name", true),
				intOption("quantity", "How many (default 1)", false),
			},
		},
		{
			Name:        "use",
			Description: "Use an item from your inventory",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("item", "Item name", true),
				intOption("quantity", "How many (default 1)", false),
			},
		},
		{
			Name:        "give-item",
			Description: "Give an item from your inventory to another member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Recipient", true),
				stringOption("item", "Item name", true),
				intOption("quantity", "How many (default 1)", false),
			},
		},
		{
			Name:        "inventory",
			Description: "Show an inventory",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "User to check (defaults to you)", false)},
		},
		{
			Name:                     "warn",
			Description:              "Warn a member",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Member to warn", true),
				stringOption("reason", "Reason for the warning", true),
			},
		},
		{
			Name:        "warnings",
			Description: "Show or clear a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List a member's warnings",
					Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member (defaults to you)", false)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Clear a member's warnings",
					Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member", true)},
				},
			},
		},
		{
			Name:                     "economy",
			Description:              "Economy administration",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add-money",
					Description: "Add money to a member",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "Member", true),
						intOption("amount", "Amount (negative to remove)", true),
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "bank",
							Description: "Apply to bank instead of cash",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "purge",
					Description: "Delete a member's economy profile",
					Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member", true)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show guild economy totals",
				},
			},
		},
		{
			Name:                     "item-admin",
			Description:              "Shop catalog administration",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a shop item",
					Options: []*discordgo.ApplicationCommandOption{
						stringOption("name", "Item name", true),
						intOption("price", "Price in cash", true),
						stringOption("description", "Item description", false),
						stringOption("category", "Category", false),
						intOption("stock", "Stock (omit for unlimited)", false),
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "usable",
							Description: "Whether the item can be used",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete a shop item and all held copies",
					Options:     []*discordgo.ApplicationCommandOption{stringOption("name", "Item name", true)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "spawn",
					Description: "Create item copies in a member's inventory",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "Member", true),
						stringOption("item", "Item name", true),
						intOption("quantity", "How many (default 1)", false),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "take",
					Description: "Remove item copies from a member's inventory",
					Options: []*discordgo.ApplicationCommandOption{
						userOption("user", "Member", true),
						stringOption("item", "Item name", true),
						intOption("quantity", "How many (default 1)", false),
					},
				},
			},
		},
		{
			Name:                     "settings",
			Description:              "Guild economy settings",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "view", Description: "Show current settings"},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Change a setting",
					Options: []*discordgo.ApplicationCommandOption{
						stringOption("emoji", "Currency emoji", false),
						intOption("passive-income", "Passive income per message", false),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "income-reset",
							Description: "Salary claim mode",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "daily", Value: "daily"},
								{Name: "accumulate", Value: "accumulate"},
							},
						},
					},
				},
			},
		},
		{
			Name:                     "income-role",
			Description:              "Manage income roles",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a role's daily salary",
					Options: []*discordgo.ApplicationCommandOption{
						roleOption("role", "Role", true),
						intOption("salary", "Daily salary", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a role's salary",
					Options:     []*discordgo.ApplicationCommandOption{roleOption("role", "Role", true)},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List income roles"},
			},
		},
		{
			Name:                     "level-reward",
			Description:              "Manage level-up rewards",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set the reward for reaching a level",
					Options: []*discordgo.ApplicationCommandOption{
						intOption("level", "Level (2 or higher)", true),
						intOption("money", "Cash reward", false),
						roleOption("role", "Role granted at this level", false),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete the reward for a level",
					Options:     []*discordgo.ApplicationCommandOption{intOption("level", "Level", true)},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List configured rewards"},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
