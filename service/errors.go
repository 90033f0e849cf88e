package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by services. The bot layer matches on these to
// pick user-facing replies; raw storage errors never cross this boundary.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrNotFound          = errors.New("not found")
	ErrActiveGame        = errors.New("game already in progress")
	ErrNoActiveGame      = errors.New("no game in progress")
	ErrOutOfStock        = errors.New("out of stock")
	ErrItemExpired       = errors.New("item no longer available")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrRequirementUnmet  = errors.New("requirements not met")
	ErrNotUsable         = errors.New("item is not usable")
	ErrAlreadyClaimed    = errors.New("already claimed")
)

// CooldownError reports that an action is still on cooldown
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Action, e.Remaining.Round(time.Second))
}

// IsCooldown extracts a CooldownError from an error chain
func IsCooldown(err error) (*CooldownError, bool) {
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
