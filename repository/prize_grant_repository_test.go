package repository

import (
	"context"
	"testing"

	"tokenengine/domain/entities"
	"tokenengine/infrastructure"
	"tokenengine/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrizeGrantRepository_OneActivePerUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewUserAccountRepository(testDB.DB)
	grantRepo := NewPrizeGrantRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, accountRepo.Create(ctx, testutil.CreateTestAccount("user-1")))

	first := testutil.CreateTestGrant("user-1", 500)
	require.NoError(t, grantRepo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	// The partial unique index rejects a second active grant
	second := testutil.CreateTestGrant("user-1", 250)
	err := grantRepo.Create(ctx, second)
	assert.Error(t, err)

	// Expiring the first frees the slot
	first.Status = entities.GrantStatusExpired
	require.NoError(t, grantRepo.Update(ctx, first))
	require.NoError(t, grantRepo.Create(ctx, second))
}

func TestPrizeGrantRepository_GetActiveByUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewUserAccountRepository(testDB.DB)
	grantRepo := NewPrizeGrantRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, accountRepo.Create(ctx, testutil.CreateTestAccount("user-1")))

	grant, err := grantRepo.GetActiveByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, grant)

	created := testutil.CreateTestGrant("user-1", 500)
	require.NoError(t, grantRepo.Create(ctx, created))

	grant, err = grantRepo.GetActiveByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, created.ID, grant.ID)
	assert.Equal(t, int64(500), grant.Remaining)
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewTestUnitOfWorkFactory(testDB.DB,
		infrastructure.NewTransactionalPublisher(infrastructure.NewNoopEventPublisher()))
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserAccountRepository().Create(ctx, testutil.CreateTestAccount("user-1")))
	require.NoError(t, uow.Rollback())

	account, err := NewUserAccountRepository(testDB.DB).GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestUnitOfWork_CommitPersistsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	factory := NewTestUnitOfWorkFactory(testDB.DB,
		infrastructure.NewTransactionalPublisher(infrastructure.NewNoopEventPublisher()))
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserAccountRepository().Create(ctx, testutil.CreateTestAccount("user-1")))
	require.NoError(t, uow.Commit())

	account, err := NewUserAccountRepository(testDB.DB).GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "user-1", account.ID)
}
