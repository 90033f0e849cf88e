package service

import (
	"context"

	"treasurer/events"
	"treasurer/models"

	log "github.com/sirupsen/logrus"
)

type auditService struct {
	history BalanceHistoryRepository
}

// NewAuditService creates a new audit service
func NewAuditService(history BalanceHistoryRepository) AuditService {
	return &auditService{history: history}
}

// HandleBalanceChange records one audit trail row per balance change event.
// A failed write is logged and dropped; the trail never blocks the change
// that produced it.
func (s *auditService) HandleBalanceChange(ctx context.Context, event events.Event) {
	change, ok := event.(events.BalanceChangeEvent)
	if !ok {
		return
	}
	err := s.history.Record(ctx, &models.BalanceHistory{
		UserID:     change.UserID,
		GuildID:    change.GuildID,
		Reason:     change.Reason,
		CashChange: change.CashChange,
		BankChange: change.BankChange,
		NewCash:    change.NewCash,
		NewBank:    change.NewBank,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"userID":  change.UserID,
			"guildID": change.GuildID,
			"reason":  change.Reason,
		}).Errorf("Failed to record balance history: %v", err)
	}
}

func (s *auditService) History(ctx context.Context, userID, guildID int64, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.history.ListRecent(ctx, userID, guildID, limit)
}
