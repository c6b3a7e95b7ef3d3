package application

import (
	"context"

	"tokenengine/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations.
// All repositories it returns share one database transaction; events
// published through EventBus stay buffered until Commit.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events
	Rollback() error

	// Repository getters
	UserAccountRepository() interfaces.UserAccountRepository
	PrizeGrantRepository() interfaces.PrizeGrantRepository
	MilestoneRepository() interfaces.MilestoneRepository
	ActivityRepository() interfaces.ActivityRepository
	TokenTransactionRepository() interfaces.TokenTransactionRepository
	DistributionRepository() interfaces.DistributionRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
