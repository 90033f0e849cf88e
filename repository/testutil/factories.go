package testutil

import (
	"treasurer/models"
)

// TestGuildID is the guild used by repository tests unless stated otherwise
const TestGuildID int64 = 900100

// CreateTestItem creates a shop item with sane defaults
func CreateTestItem(guildID int64, name string, price int64) *models.Item {
	return &models.Item{
		GuildID:     guildID,
		Name:        name,
		Description: "a test item",
		Price:       price,
		Category:    "test",
	}
}

// CreateTestIncomeRole creates an income role configuration
func CreateTestIncomeRole(guildID, roleID, dailyIncome int64) *models.IncomeRole {
	return &models.IncomeRole{
		GuildID:     guildID,
		RoleID:      roleID,
		DailyIncome: dailyIncome,
	}
}

// CreateTestWarning creates a warning ledger entry
func CreateTestWarning(guildID, userID, moderatorID int64, reason string) *models.Warning {
	return &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
	}
}
