package repository

import (
	"context"
	"fmt"

	"tokenengine/application"
	"tokenengine/database"
	"tokenengine/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.UserAccountRepository
	grantRepo              interfaces.PrizeGrantRepository
	milestoneRepo          interfaces.MilestoneRepository
	activityRepo           interfaces.ActivityRepository
	transactionRepo        interfaces.TokenTransactionRepository
	distributionRepo       interfaces.DistributionRepository
}

type unitOfWorkFactory struct {
	db               *database.DB
	publisherFactory func() interfaces.TransactionalEventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. publisherFactory
// supplies a fresh transactional publisher per unit of work so pending
// events never leak between transactions.
func NewUnitOfWorkFactory(db *database.DB, publisherFactory func() interfaces.TransactionalEventPublisher) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:               db,
		publisherFactory: publisherFactory,
	}
}

// Create creates a new UnitOfWork instance
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: f.publisherFactory(),
	}
}

// Begin starts a new transaction and binds all repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newUserAccountRepository(tx)
	u.grantRepo = newPrizeGrantRepository(tx)
	u.milestoneRepo = newMilestoneRepository(tx)
	u.activityRepo = newActivityRepository(tx)
	u.transactionRepo = newTokenTransactionRepository(tx)
	u.distributionRepo = newDistributionRepository(tx)

	return nil
}

// Commit commits the transaction and flushes buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards buffered events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// UserAccountRepository returns the account repository for this unit of work
func (u *unitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	return u.accountRepo
}

// PrizeGrantRepository returns the grant repository for this unit of work
func (u *unitOfWork) PrizeGrantRepository() interfaces.PrizeGrantRepository {
	return u.grantRepo
}

// MilestoneRepository returns the milestone repository for this unit of work
func (u *unitOfWork) MilestoneRepository() interfaces.MilestoneRepository {
	return u.milestoneRepo
}

// ActivityRepository returns the activity repository for this unit of work
func (u *unitOfWork) ActivityRepository() interfaces.ActivityRepository {
	return u.activityRepo
}

// TokenTransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TokenTransactionRepository() interfaces.TokenTransactionRepository {
	return u.transactionRepo
}

// DistributionRepository returns the distribution repository for this unit of work
func (u *unitOfWork) DistributionRepository() interfaces.DistributionRepository {
	return u.distributionRepo
}

// EventBus returns the transaction-scoped event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
