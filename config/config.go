package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Economy defaults
	DefaultBalance    int64 // starting cash for new users
	PassiveChatIncome int64 // coins per counted chat message
	TransferTaxBps    int64 // transfer tax in basis points

	// Income action ranges
	WorkMinPayout   int64
	WorkMaxPayout   int64
	WorkBonusChance float64
	CrimeMinPayout  int64
	CrimeMaxPayout  int64
	CrimeSuccess    float64 // probability a crime succeeds
	CrimeMinLosePct float64 // loss share range drawn on failure
	CrimeMaxLosePct float64
	SlutMinPayout   int64
	SlutMaxPayout   int64
	SlutSuccess     float64
	SlutMinLosePct  float64
	SlutMaxLosePct  float64
	RobFloor        int64 // minimum target cash to be robbable
	RobSelfFloor    int64 // minimum actor cash to attempt a rob
	DailyBase       int64

	// Cooldowns
	WorkCooldown  time.Duration
	CrimeCooldown time.Duration
	SlutCooldown  time.Duration
	RobCooldown   time.Duration
	DailyCooldown time.Duration
	XPCooldown    time.Duration // passive income and XP rate limit window

	// Gambling
	MinBet            int64
	MaxBet            int64
	RouletteAmerican  bool // spin a 38-slot wheel with 00
	BlackjackCooldown time.Duration
	RouletteCooldown  time.Duration
	BlackjackTimeout  time.Duration // idle games are abandoned after this

	// Progression
	XPPerMessage int64

	// Moderation
	MaxWarnsBeforeAction int
	DefaultMuteDuration  time.Duration

	// Presentation
	DefaultCurrencyEmoji string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Economy defaults
		DefaultBalance:    500,
		PassiveChatIncome: 5,
		TransferTaxBps:    500, // 5%

		WorkMinPayout:   100,
		WorkMaxPayout:   400,
		WorkBonusChance: 0.15,
		CrimeMinPayout:  250,
		CrimeMaxPayout:  700,
		CrimeSuccess:    0.3,
		CrimeMinLosePct: 0.1,
		CrimeMaxLosePct: 0.3,
		SlutMinPayout:   150,
		SlutMaxPayout:   500,
		SlutSuccess:     0.5,
		SlutMinLosePct:  0.05,
		SlutMaxLosePct:  0.2,
		RobFloor:        100,
		RobSelfFloor:    50,
		DailyBase:       1000,

		WorkCooldown:  10 * time.Minute,
		CrimeCooldown: time.Hour,
		SlutCooldown:  15 * time.Minute,
		RobCooldown:   45 * time.Minute,
		DailyCooldown: 24 * time.Hour,
		XPCooldown:    time.Minute,

		MinBet:            50,
		MaxBet:            100000,
		RouletteAmerican:  os.Getenv("ROULETTE_AMERICAN") == "true",
		BlackjackCooldown: 30 * time.Second,
		RouletteCooldown:  30 * time.Second,
		BlackjackTimeout:  300 * time.Second,

		XPPerMessage: 15,

		MaxWarnsBeforeAction: 3,
		DefaultMuteDuration:  time.Hour,

		DefaultCurrencyEmoji: "💰",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	overrideInt64(&config.DefaultBalance, "DEFAULT_BALANCE")
	overrideInt64(&config.PassiveChatIncome, "PASSIVE_CHAT_INCOME")
	overrideInt64(&config.MinBet, "MIN_BET")
	overrideInt64(&config.MaxBet, "MAX_BET")
	overrideInt64(&config.XPPerMessage, "XP_PER_MESSAGE")
	overrideInt64(&config.DailyBase, "DAILY_BASE")
	overrideInt(&config.MaxWarnsBeforeAction, "MAX_WARNS_BEFORE_ACTION")
	overrideDuration(&config.WorkCooldown, "WORK_COOLDOWN")
	overrideDuration(&config.CrimeCooldown, "CRIME_COOLDOWN")
	overrideDuration(&config.SlutCooldown, "SLUT_COOLDOWN")
	overrideDuration(&config.RobCooldown, "ROB_COOLDOWN")
	overrideDuration(&config.XPCooldown, "XP_COOLDOWN")
	overrideDuration(&config.BlackjackCooldown, "BLACKJACK_COOLDOWN")
	overrideDuration(&config.RouletteCooldown, "ROULETTE_COOLDOWN")
	overrideDuration(&config.BlackjackTimeout, "BLACKJACK_TIMEOUT")
	overrideDuration(&config.DefaultMuteDuration, "DEFAULT_MUTE_DURATION")
	if emoji := os.Getenv("DEFAULT_CURRENCY_EMOJI"); emoji != "" {
		config.DefaultCurrencyEmoji = emoji
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func overrideInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
