package repository

import (
	"tokenengine/application"
	"tokenengine/database"
	"tokenengine/domain/interfaces"
)

// NewTestUnitOfWorkFactory creates a unit of work factory for tests.
// Tests provide their own transactional publisher.
func NewTestUnitOfWorkFactory(db *database.DB, publisher interfaces.TransactionalEventPublisher) application.UnitOfWorkFactory {
	return NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return publisher
	})
}
