package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"treasurer/events"
	"treasurer/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token                string
	GuildID              string
	DefaultCurrencyEmoji string
	BlackjackTimeout     time.Duration
}

type Bot struct {
	config           Config
	session          *discordgo.Session
	host             service.HostActor
	userService      service.UserService
	incomeService    service.IncomeService
	passiveService   service.PassiveIncomeService
	levelService     service.LevelService
	itemService      service.ItemService
	blackjackService service.BlackjackService
	rouletteService  service.RouletteService
	moderationSvc    service.ModerationService
	cooldownService  service.CooldownService
	settingsService  service.GuildSettingsService
	auditService     service.AuditService
	eventBus         *events.Bus
	defaultEmoji     string
}

// Services bundles the service layer dependencies handed to the bot.
type Services struct {
	User      service.UserService
	Income    service.IncomeService
	Passive   service.PassiveIncomeService
	Level     service.LevelService
	Item      service.ItemService
	Blackjack service.BlackjackService
	Roulette  service.RouletteService
	Mod       service.ModerationService
	Cooldown  service.CooldownService
	Settings  service.GuildSettingsService
	Audit     service.AuditService
}

// NewSession creates the Discord session. It is separate from New so the
// host adapter can be handed to the service layer before the bot starts.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	return dg, nil
}

func New(config Config, dg *discordgo.Session, services Services, eventBus *events.Bus) (*Bot, error) {
	bot := &Bot{
		config:           config,
		session:          dg,
		host:             NewHostActor(dg),
		userService:      services.User,
		incomeService:    services.Income,
		passiveService:   services.Passive,
		levelService:     services.Level,
		itemService:      services.Item,
		blackjackService: services.Blackjack,
		rouletteService:  services.Roulette,
		moderationSvc:    services.Mod,
		cooldownService:  services.Cooldown,
		settingsService:  services.Settings,
		auditService:     services.Audit,
		eventBus:         eventBus,
		defaultEmoji:     config.DefaultCurrencyEmoji,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Every guild message earns passive income and XP
	dg.AddHandler(bot.handleMessageCreate)

	// Role side effects ride the event bus so they happen after commit
	eventBus.Subscribe(events.EventTypeLevelUp, bot.onLevelUp)
	eventBus.Subscribe(events.EventTypeItemPurchased, bot.onItemPurchased)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	go bot.startMaintenanceLoop()
	go bot.startSalaryLoop()

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// onLevelUp applies role rewards once the level-up has committed
func (b *Bot) onLevelUp(ctx context.Context, event events.Event) {
	levelUp, ok := event.(events.LevelUpEvent)
	if !ok {
		return
	}
	for _, roleID := range levelUp.RolesAdd {
		if err := b.host.AddRole(ctx, levelUp.GuildID, levelUp.UserID, roleID); err != nil {
			log.Errorf("Failed to grant level reward role %d to user %d: %v", roleID, levelUp.UserID, err)
		}
	}
	for _, roleID := range levelUp.RolesRemove {
		if err := b.host.RemoveRole(ctx, levelUp.GuildID, levelUp.UserID, roleID); err != nil {
			log.Errorf("Failed to revoke role %d from user %d: %v", roleID, levelUp.UserID, err)
		}
	}
}

// onItemPurchased applies item role effects after the purchase committed.
// A failed role grant never unwinds the sale.
func (b *Bot) onItemPurchased(ctx context.Context, event events.Event) {
	purchase, ok := event.(events.ItemPurchasedEvent)
	if !ok {
		return
	}
	for _, roleID := range purchase.RolesGranted {
		if err := b.host.AddRole(ctx, purchase.GuildID, purchase.UserID, roleID); err != nil {
			log.Errorf("Failed to grant role %d for item %q: %v", roleID, purchase.ItemName, err)
		}
	}
	for _, roleID := range purchase.RolesRevoked {
		if err := b.host.RemoveRole(ctx, purchase.GuildID, purchase.UserID, roleID); err != nil {
			log.Errorf("Failed to revoke role %d for item %q: %v", roleID, purchase.ItemName, err)
		}
	}
}

// handleMessageCreate feeds guild chatter into the passive income pipeline
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	userID, err := parseSnowflake(m.Author.ID)
	if err != nil {
		return
	}
	guildID, err := parseSnowflake(m.GuildID)
	if err != nil {
		return
	}

	ctx := context.Background()
	levelUp, err := b.passiveService.HandleMessage(ctx, userID, guildID)
	if err != nil {
		log.Errorf("Failed to process message income for user %d: %v", userID, err)
		return
	}
	if levelUp != nil {
		announcement := fmt.Sprintf("🎉 <@%s> reached level **%d**!", m.Author.ID, levelUp.NewLevel)
		if _, err := s.ChannelMessageSend(m.ChannelID, announcement); err != nil {
			log.Errorf("Failed to announce level up: %v", err)
		}
	}
}

// startMaintenanceLoop abandons idle blackjack games and sweeps expired
// cooldown rows.
func (b *Bot) startMaintenanceLoop() {
	timeout := b.config.BlackjackTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if dropped := b.blackjackService.AbandonStale(timeout); dropped > 0 {
			log.Infof("Abandoned %d stale blackjack games", dropped)
		}
		if _, err := b.cooldownService.Sweep(context.Background()); err != nil {
			log.Errorf("Failed to sweep expired cooldowns: %v", err)
		}
	}
}

// startSalaryLoop pays income role salaries at each UTC midnight
func (b *Bot) startSalaryLoop() {
	if b.config.GuildID == "" {
		log.Warn("No guild configured, automatic salary distribution disabled")
		return
	}
	guildID, err := parseSnowflake(b.config.GuildID)
	if err != nil {
		log.Errorf("Malformed guild ID %q, salary distribution disabled", b.config.GuildID)
		return
	}

	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		time.Sleep(next.Sub(now))

		result, err := b.passiveService.DistributeSalaries(context.Background(), guildID)
		if err != nil {
			log.Errorf("Failed to distribute salaries: %v", err)
			continue
		}
		log.WithFields(log.Fields{
			"guildID": guildID,
			"members": result.Members,
			"paid":    result.Paid,
			"total":   result.Total,
		}).Info("Distributed income role salaries")
	}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "deposit":
		b.handleDeposit(s, i)
	case "withdraw":
		b.handleWithdraw(s, i)
	case "give":
		b.handleGive(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "rank":
		b.handleRank(s, i)
	case "history":
		b.handleHistory(s, i)
	case "work":
		b.handleWork(s, i)
	case "crime":
		b.handleCrime(s, i)
	case "slut":
		b.handleSlut(s, i)
	case "rob":
		b.handleRob(s, i)
	case "daily":
		b.handleDaily(s, i)
	case "claim":
		b.handleClaimSalary(s, i)
	case "blackjack":
		b.handleBlackjack(s, i)
	case "roulette":
		b.handleRoulette(s, i)
	case "shop":
		b.handleShop(s, i)
	case "buy":
		b.handleBuy(s, i)
	case "use":
		b.handleUseItem(s, i)
	case "give-item":
		b.handleGiveItem(s, i)
	case "inventory":
		b.handleInventory(s, i)
	case "warn":
		b.handleWarn(s, i)
	case "warnings":
		b.handleWarnings(s, i)
	case "economy":
		b.handleEconomyAdmin(s, i)
	case "item-admin":
		b.handleItemAdmin(s, i)
	case "settings":
		b.handleSettings(s, i)
	case "income-role":
		b.handleIncomeRole(s, i)
	case "level-reward":
		b.handleLevelReward(s, i)
	}
}
