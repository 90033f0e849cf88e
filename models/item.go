package models

import (
	"fmt"
	"strings"
	"time"
)

// Item is a guild shop catalog entry. Name is unique per guild
// (case-insensitive). Nil pointer fields mean "unlimited" or "unset".
type Item struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Emoji       string    `db:"emoji"`
	Price       int64     `db:"price"`
	Category    string    `db:"category"`
	Usable      bool      `db:"usable"`
	Effects     EffectMap `db:"effects"`

	// Merchandising constraints
	Stock         *int64     `db:"stock"`           // nil = unlimited
	MaxPerUser    *int64     `db:"max_per_user"`    // nil = unlimited
	MaxPerTx      *int64     `db:"max_per_tx"`      // nil = unlimited
	MaxBalance    *int64     `db:"max_balance"`     // nil = no wealth cap on buyers
	ExpiresAt     *time.Time `db:"expires_at"`      // nil = never expires
	RequiredRoles []int64    `db:"required_roles"`
	ExcludedRoles []int64    `db:"excluded_roles"`
	GrantedRoles  []int64    `db:"granted_roles"`
	RevokedRoles  []int64    `db:"revoked_roles"`

	ImageURL        string `db:"image_url"`
	PurchaseMessage string `db:"purchase_message"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Key returns the catalog lookup key for an item name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Expired reports whether the item can no longer be purchased.
func (i *Item) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// EffectMap is the raw stored form of item effects: effect kind to value.
// Values are int64 for the applied kinds and strings otherwise.
type EffectMap map[string]any

// Effect is a tagged item use effect. Exactly one of the concrete types
// (CashEffect, XPEffect, OpaqueEffect) backs each value.
type Effect interface {
	Kind() string
}

// CashEffect credits cash on use.
type CashEffect struct {
	Amount int64
}

func (CashEffect) Kind() string { return "cash" }

// XPEffect credits XP on use and may trigger a level-up.
type XPEffect struct {
	Amount int64
}

func (XPEffect) Kind() string { return "xp" }

// OpaqueEffect is carried through and reported but not applied by the core.
type OpaqueEffect struct {
	Key   string
	Value string
}

func (e OpaqueEffect) Kind() string { return e.Key }

// Decode converts the stored map into tagged effects. Numeric values for
// unknown kinds are preserved as opaque strings.
func (m EffectMap) Decode() ([]Effect, error) {
	effects := make([]Effect, 0, len(m))
	for key, raw := range m {
		switch key {
		case "cash", "xp":
			n, err := toInt64(raw)
			if err != nil {
				return nil, fmt.Errorf("effect %q: %w", key, err)
			}
			if key == "cash" {
				effects = append(effects, CashEffect{Amount: n})
			} else {
				effects = append(effects, XPEffect{Amount: n})
			}
		default:
			effects = append(effects, OpaqueEffect{Key: key, Value: fmt.Sprintf("%v", raw)})
		}
	}
	return effects, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		// JSON numbers decode as float64
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected numeric value, got %T", v)
	}
}
