package utils

import (
	"context"
	"fmt"

	"tokenengine/domain/entities"
	"tokenengine/domain/events"
	"tokenengine/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordTokenChange records a token transaction and emits the matching event.
// This is the single entry point for all balance changes in the system.
func RecordTokenChange(ctx context.Context, transactionRepo interfaces.TokenTransactionRepository, eventPublisher interfaces.EventPublisher, transaction *entities.TokenTransaction) error {
	if err := transaction.Validate(); err != nil {
		return fmt.Errorf("invalid token transaction: %w", err)
	}

	if err := transactionRepo.Record(ctx, transaction); err != nil {
		return fmt.Errorf("failed to record token transaction: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          transaction.UserID,
		DailyBefore:     transaction.DailyBefore,
		DailyAfter:      transaction.DailyAfter,
		ChangeAmount:    transaction.Amount,
		TransactionType: transaction.Type,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"dailyBefore":     event.DailyBefore,
		"dailyAfter":      event.DailyAfter,
		"changeAmount":    event.ChangeAmount,
		"transactionType": event.TransactionType,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
