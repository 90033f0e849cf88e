package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"treasurer/bot"
	"treasurer/config"
	"treasurer/database"
	"treasurer/events"
	"treasurer/repository"
	"treasurer/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting treasurer bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// The Discord session exists before the bot starts so the host adapter
	// can be handed to the service layer
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	host := bot.NewHostActor(session)

	// Initialize services
	log.Println("Initializing services...")
	cooldownService := service.NewCooldownService(repository.NewCooldownRepository(db), cfg)
	userService := service.NewUserService(uowFactory, cfg)
	levelService := service.NewLevelService(uowFactory)
	incomeService := service.NewIncomeService(uowFactory, cooldownService, host, cfg, service.SystemRand())
	passiveService := service.NewPassiveIncomeService(uowFactory, levelService, host, cfg)
	itemService := service.NewItemService(uowFactory, levelService, host, cfg)
	blackjackService := service.NewBlackjackService(uowFactory, cooldownService, cfg)
	rouletteService := service.NewRouletteService(uowFactory, cooldownService, cfg)
	moderationService := service.NewModerationService(uowFactory, host, cfg)
	settingsService := service.NewGuildSettingsService(uowFactory)
	auditService := service.NewAuditService(repository.NewBalanceHistoryRepository(db))
	log.Println("Services initialized successfully")

	// Every committed balance change lands in the audit trail
	eventBus.Subscribe(events.EventTypeBalanceChange, auditService.HandleBalanceChange)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:                cfg.DiscordToken,
		GuildID:              cfg.DiscordGuildID,
		DefaultCurrencyEmoji: cfg.DefaultCurrencyEmoji,
		BlackjackTimeout:     cfg.BlackjackTimeout,
	}
	discordBot, err := bot.New(botConfig, session, bot.Services{
		User:      userService,
		Income:    incomeService,
		Passive:   passiveService,
		Level:     levelService,
		Item:      itemService,
		Blackjack: blackjackService,
		Roulette:  rouletteService,
		Mod:       moderationService,
		Cooldown:  cooldownService,
		Settings:  settingsService,
		Audit:     auditService,
	}, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
