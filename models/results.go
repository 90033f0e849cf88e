package models

// WorkResult is the outcome of a work action. Work always pays.
type WorkResult struct {
	Gain    int64
	Bonus   bool
	NewCash int64
}

// RiskResult is the outcome of a crime or slut action.
type RiskResult struct {
	Success bool
	Gain    int64
	Loss    int64
	NewCash int64
}

// RobResult is the outcome of a rob attempt.
type RobResult struct {
	Success    bool
	Stolen     int64
	Fine       int64
	ActorCash  int64
	TargetCash int64
}

// DailyResult is the outcome of a daily claim.
type DailyResult struct {
	Amount  int64
	NewCash int64
}

// TransferResult reports a completed cash transfer. Received is the credited
// amount after tax.
type TransferResult struct {
	RecipientID int64
	Amount      int64
	Tax         int64
	Received    int64
	NewCash     int64
}

// PurchaseResult reports a completed item purchase.
type PurchaseResult struct {
	Item       *Item
	Quantity   int64
	TotalPrice int64
	NewCash    int64
}

// UseResult reports a completed item use. Reported carries opaque effects
// the core does not apply.
type UseResult struct {
	ItemName  string
	Quantity  int64
	Applied   []Effect
	Reported  []Effect
	LeveledUp bool
	NewLevel  int64
}

// LevelUpResult describes a level transition and the reward applied for the
// resulting level, if one is configured.
type LevelUpResult struct {
	OldLevel int64
	NewLevel int64
	Reward   *LevelReward
}

// SalaryClaimResult reports an income-role salary claim for one user.
type SalaryClaimResult struct {
	Claimed bool
	Amount  int64
}

// BulkSalaryResult reports a bulk income-role payout.
type BulkSalaryResult struct {
	Members int
	Paid    int
	Total   int64
}

// BlackjackResult reports a resolved blackjack game.
type BlackjackResult struct {
	Outcome BlackjackOutcome
	Bet     int64
	Delta   int64
	NewCash int64
	Player  []Card
	Dealer  []Card
}

// RouletteResult reports a settled roulette spin.
type RouletteResult struct {
	Pocket  Pocket
	Bet     RouletteBet
	Win     bool
	Delta   int64
	NewCash int64
}

// WarnResult reports an appended warning and whether the auto action fired.
type WarnResult struct {
	Warning    *Warning
	Count      int
	AutoActed  bool
	ActedError string
}
