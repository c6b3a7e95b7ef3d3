package api

import (
	"context"
	"time"

	"tokenengine/application"
	"tokenengine/clock"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/services"
	"tokenengine/domain/testhelpers"
)

// stubUnitOfWork exposes mock repositories without a real transaction
type stubUnitOfWork struct {
	mocks *stubRepos
}

type stubRepos struct {
	AccountRepo      *testhelpers.MockUserAccountRepository
	GrantRepo        *testhelpers.MockPrizeGrantRepository
	MilestoneRepo    *testhelpers.MockMilestoneRepository
	ActivityRepo     *testhelpers.MockActivityRepository
	TransactionRepo  *testhelpers.MockTokenTransactionRepository
	DistributionRepo *testhelpers.MockDistributionRepository
	EventPublisher   *testhelpers.MockEventPublisher
}

func newStubRepos() *stubRepos {
	return &stubRepos{
		AccountRepo:      &testhelpers.MockUserAccountRepository{},
		GrantRepo:        &testhelpers.MockPrizeGrantRepository{},
		MilestoneRepo:    &testhelpers.MockMilestoneRepository{},
		ActivityRepo:     &testhelpers.MockActivityRepository{},
		TransactionRepo:  &testhelpers.MockTokenTransactionRepository{},
		DistributionRepo: &testhelpers.MockDistributionRepository{},
		EventPublisher:   &testhelpers.MockEventPublisher{},
	}
}

func (u *stubUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error                   { return nil }
func (u *stubUnitOfWork) Rollback() error                 { return nil }

func (u *stubUnitOfWork) UserAccountRepository() interfaces.UserAccountRepository {
	return u.mocks.AccountRepo
}
func (u *stubUnitOfWork) PrizeGrantRepository() interfaces.PrizeGrantRepository {
	return u.mocks.GrantRepo
}
func (u *stubUnitOfWork) MilestoneRepository() interfaces.MilestoneRepository {
	return u.mocks.MilestoneRepo
}
func (u *stubUnitOfWork) ActivityRepository() interfaces.ActivityRepository {
	return u.mocks.ActivityRepo
}
func (u *stubUnitOfWork) TokenTransactionRepository() interfaces.TokenTransactionRepository {
	return u.mocks.TransactionRepo
}
func (u *stubUnitOfWork) DistributionRepository() interfaces.DistributionRepository {
	return u.mocks.DistributionRepo
}
func (u *stubUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.mocks.EventPublisher
}

// stubFactory hands out the same stub unit of work for every request
type stubFactory struct {
	uow *stubUnitOfWork
}

func (f *stubFactory) Create() application.UnitOfWork { return f.uow }

// newTestServer builds a server over mock repositories and a fixed clock
func newTestServer(mocks *stubRepos, now time.Time) *Server {
	return NewServer(
		&stubFactory{uow: &stubUnitOfWork{mocks: mocks}},
		nil,
		clock.NewFake(now),
		services.PlanDefaults{DailyLimit: 100, MonthlyTotal: 1000},
	)
}
