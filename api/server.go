package api

import (
	"tokenengine/application"
	"tokenengine/clock"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/services"

	"github.com/gin-gonic/gin"
)

// Server wires the HTTP surface to the domain services. Every request runs
// inside its own unit of work; services are constructed per request over the
// transaction-scoped repositories.
type Server struct {
	uowFactory   application.UnitOfWorkFactory
	profileStore interfaces.ProfileStore
	clock        clock.Clock
	defaults     services.PlanDefaults
}

// NewServer creates a new API server. profileStore may be nil; leaderboard
// entries then carry empty display names.
func NewServer(
	uowFactory application.UnitOfWorkFactory,
	profileStore interfaces.ProfileStore,
	clk clock.Clock,
	defaults services.PlanDefaults,
) *Server {
	return &Server{
		uowFactory:   uowFactory,
		profileStore: profileStore,
		clock:        clk,
		defaults:     defaults,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/users/:id/balance", s.getBalance)
		api.GET("/users/:id/transactions", s.getTransactions)
		api.POST("/users/:id/debit", s.postDebit)
		api.POST("/users/:id/credit", s.postCredit)
		api.POST("/users/:id/prize", s.postPrize)
		api.GET("/users/:id/prizes", s.getPrizes)
		api.GET("/users/:id/milestones", s.getMilestones)
		api.POST("/users/:id/milestones/:type/claim", s.postMilestoneClaim)
		api.POST("/users/:id/referrals", s.postReferral)
		api.POST("/referrals", s.postReferralActivation)
		api.POST("/users/:id/activity", s.postActivity)
		api.DELETE("/activity/:id", s.deleteActivity)
		api.GET("/leaderboard", s.getLeaderboard)
		api.POST("/prizes/distribute", s.postDistribute)
		api.GET("/prizes/distributions", s.getDistributions)
	}

	return r
}

func (s *Server) ledgerService(uow application.UnitOfWork) interfaces.LedgerService {
	return services.NewLedgerService(
		uow.UserAccountRepository(),
		uow.PrizeGrantRepository(),
		uow.TokenTransactionRepository(),
		uow.EventBus(),
		s.clock,
		s.defaults,
	)
}

func (s *Server) grantService(uow application.UnitOfWork) interfaces.GrantService {
	return services.NewGrantService(
		uow.PrizeGrantRepository(),
		uow.TokenTransactionRepository(),
		uow.EventBus(),
		s.clock,
	)
}

func (s *Server) milestoneService(uow application.UnitOfWork) interfaces.MilestoneService {
	return services.NewMilestoneService(
		uow.MilestoneRepository(),
		s.grantService(uow),
		uow.EventBus(),
		s.clock,
	)
}

func (s *Server) leaderboardService(uow application.UnitOfWork) interfaces.LeaderboardService {
	return services.NewLeaderboardService(
		uow.UserAccountRepository(),
		uow.ActivityRepository(),
		s.grantService(uow),
		s.profileStore,
	)
}

func (s *Server) distributionService(uow application.UnitOfWork) interfaces.DistributionService {
	return services.NewDistributionService(
		s.grantService(uow),
		uow.DistributionRepository(),
		uow.EventBus(),
		s.clock,
	)
}

func (s *Server) activityService(uow application.UnitOfWork) interfaces.ActivityService {
	return services.NewActivityService(
		uow.UserAccountRepository(),
		uow.ActivityRepository(),
		uow.EventBus(),
		s.clock,
		nil,
	)
}
