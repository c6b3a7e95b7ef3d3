package api

import (
	"net/http"
	"strconv"
	"time"

	"tokenengine/application"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"
	"tokenengine/domain/utils"

	"github.com/gin-gonic/gin"
)

type balanceResponse struct {
	UserID           string     `json:"userId"`
	Daily            int64      `json:"daily"`
	DailyLimit       int64      `json:"dailyLimit"`
	MonthlyTotal     int64      `json:"monthlyTotal"`
	MonthlyUsed      int64      `json:"monthlyUsed"`
	MonthlyRemaining int64      `json:"monthlyRemaining"`
	PrizeTokens      int64      `json:"prizeTokens"`
	PrizeType        string     `json:"prizeTokenType,omitempty"`
	PrizeExpiresAt   *time.Time `json:"prizeTokenExpiresAt,omitempty"`
	EffectiveTokens  int64      `json:"effectiveTokens"`
}

func toBalanceResponse(p *interfaces.BalanceProjection) balanceResponse {
	return balanceResponse{
		UserID:           p.UserID,
		Daily:            p.Daily,
		DailyLimit:       p.DailyLimit,
		MonthlyTotal:     p.MonthlyTotal,
		MonthlyUsed:      p.MonthlyUsed,
		MonthlyRemaining: p.MonthlyRemaining,
		PrizeTokens:      p.PrizeTokens,
		PrizeType:        p.PrizeType,
		PrizeExpiresAt:   p.PrizeExpiresAt,
		EffectiveTokens:  p.Effective,
	}
}

// intQuery reads an integer query parameter, falling back to the default
// when the parameter is absent or malformed so a bad limit never turns into
// LIMIT 0.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// begin opens a unit of work for the request, responding with a 500 on
// failure. Callers must defer uow.Rollback() when ok.
func (s *Server) begin(c *gin.Context) (application.UnitOfWork, bool) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(c.Request.Context()); err != nil {
		respondError(c, err)
		return nil, false
	}
	return uow, true
}

func (s *Server) getBalance(c *gin.Context) {
	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	projection, err := s.ledgerService(uow).EffectiveBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBalanceResponse(projection))
}

func (s *Server) getTransactions(c *gin.Context) {
	limit := intQuery(c, "limit", 50)

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	ledger := s.ledgerService(uow)
	var transactions []*entities.TokenTransaction
	var err error
	if c.Query("from") != "" || c.Query("to") != "" {
		from, parseErr := time.Parse(time.RFC3339, c.Query("from"))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		to, parseErr := time.Parse(time.RFC3339, c.Query("to"))
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		transactions, err = ledger.HistoryRange(c.Request.Context(), c.Param("id"), from, to)
	} else {
		transactions, err = ledger.History(c.Request.Context(), c.Param("id"), limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

type debitRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason"`
}

func (s *Server) postDebit(c *gin.Context) {
	var req debitRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	projection, err := s.ledgerService(uow).Debit(c.Request.Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBalanceResponse(projection))
}

type creditRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Source string `json:"source"`
}

func (s *Server) postCredit(c *gin.Context) {
	var req creditRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	projection, err := s.ledgerService(uow).Credit(c.Request.Context(), c.Param("id"), req.Amount, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBalanceResponse(projection))
}

type prizeRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	PrizeType string `json:"prizeType" binding:"required"`
}

func (s *Server) postPrize(c *gin.Context) {
	var req prizeRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	grant, err := s.grantService(uow).Grant(c.Request.Context(), c.Param("id"), req.Amount, req.PrizeType)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"grantId":   grant.ID,
		"amount":    grant.Amount,
		"prizeType": grant.PrizeType,
		"expiresAt": grant.ExpiresAt,
	})
}

func (s *Server) getPrizes(c *gin.Context) {
	limit := intQuery(c, "limit", 20)

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	grants, err := s.grantService(uow).History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}

	rows := make([]gin.H, 0, len(grants))
	for _, grant := range grants {
		rows = append(rows, gin.H{
			"grantId":       grant.ID,
			"amount":        grant.Amount,
			"amountDisplay": utils.FormatTokenAmount(grant.Amount),
			"remaining":     grant.Remaining,
			"prizeType":     grant.PrizeType,
			"status":        grant.Status,
			"grantedAt":     grant.GrantedAt,
			"expiresAt":     grant.ExpiresAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"grants": rows})
}

func (s *Server) getMilestones(c *gin.Context) {
	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	summary, err := s.milestoneService(uow).Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type claimRequest struct {
	ExpectedCycles int `json:"expectedCycles"`
}

func (s *Server) postMilestoneClaim(c *gin.Context) {
	milestoneType, err := strconv.Atoi(c.Param("type"))
	if err != nil || !entities.MilestoneType(milestoneType).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown milestone type"})
		return
	}
	var req claimRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	result, err := s.milestoneService(uow).Claim(c.Request.Context(), c.Param("id"),
		entities.MilestoneType(milestoneType), req.ExpectedCycles)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reward":          result.Reward,
		"cyclesCompleted": result.CyclesCompleted,
		"grantId":         result.Grant.ID,
	})
}

func (s *Server) postReferral(c *gin.Context) {
	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	states, err := s.milestoneService(uow).RecordActiveReferral(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}

	progress := make([]gin.H, 0, len(states))
	for _, state := range states {
		progress = append(progress, gin.H{
			"type":     int(state.Type),
			"current":  state.CurrentCount,
			"eligible": state.IsEligible(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"milestones": progress})
}

type referralActivationRequest struct {
	ReferralCode string `json:"referralCode" binding:"required"`
}

// postReferralActivation is the code-based form of the referral ingress: the
// community system supplies the shared referral code and the engine resolves
// which account owns it.
func (s *Server) postReferralActivation(c *gin.Context) {
	var req referralActivationRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	referrer, err := s.ledgerService(uow).AccountByReferralCode(c.Request.Context(), req.ReferralCode)
	if err != nil {
		respondError(c, err)
		return
	}
	states, err := s.milestoneService(uow).RecordActiveReferral(c.Request.Context(), referrer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}

	progress := make([]gin.H, 0, len(states))
	for _, state := range states {
		progress = append(progress, gin.H{
			"type":     int(state.Type),
			"current":  state.CurrentCount,
			"eligible": state.IsEligible(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"userId": referrer.ID, "milestones": progress})
}

type activityRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (s *Server) postActivity(c *gin.Context) {
	var req activityRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	kind := entities.ActivityKind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown activity kind"})
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	event, err := s.activityService(uow).RecordActivity(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activityId": event.ID, "points": event.Points})
}

func (s *Server) deleteActivity(c *gin.Context) {
	activityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	if err := s.activityService(uow).ReverseActivity(c.Request.Context(), activityID); err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseWindow(c *gin.Context, now time.Time) (entities.Window, error) {
	switch c.DefaultQuery("window", "alltime") {
	case "weekly":
		return entities.WeeklyWindow(now), nil
	case "monthly":
		return entities.MonthlyWindow(now), nil
	case "custom":
		start, err := time.Parse(time.RFC3339, c.Query("start"))
		if err != nil {
			return entities.Window{}, entities.ErrInvalidWindow
		}
		end, err := time.Parse(time.RFC3339, c.Query("end"))
		if err != nil {
			return entities.Window{}, entities.ErrInvalidWindow
		}
		return entities.CustomWindow(start, end)
	default:
		return entities.AllTimeWindow(), nil
	}
}

func (s *Server) getLeaderboard(c *gin.Context) {
	window, err := parseWindow(c, s.clock.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	limit := intQuery(c, "limit", 0)

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	entries, err := s.leaderboardService(uow).Rank(c.Request.Context(), window, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}

	rows := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		row := gin.H{
			"rank":              entry.Rank,
			"userId":            entry.UserID,
			"name":              entry.DisplayName,
			"points":            entry.Points,
			"communityActivity": entry.Activity,
		}
		if entry.PrizeGrant != nil {
			row["prizeTokenStatus"] = gin.H{
				"amount":    entry.PrizeGrant.Amount,
				"remaining": entry.PrizeGrant.Remaining,
				"prizeType": entry.PrizeGrant.PrizeType,
				"expiresAt": entry.PrizeGrant.ExpiresAt,
			}
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"entries": rows})
}

type distributeRequest struct {
	ContestName string                        `json:"contestName" binding:"required"`
	Period      string                        `json:"period"`
	PeriodStart time.Time                     `json:"periodStart"`
	PeriodEnd   time.Time                     `json:"periodEnd"`
	Winners     []entities.DistributionWinner `json:"winners" binding:"required"`
}

func (s *Server) postDistribute(c *gin.Context) {
	var req distributeRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	result, err := s.distributionService(uow).Distribute(c.Request.Context(), req.Winners, interfaces.DistributionMeta{
		ContestName: req.ContestName,
		Period:      req.Period,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recordId":    result.Record.ID,
		"distributed": result.Distributed,
		"skipped":     result.Skipped,
	})
}

func (s *Server) getDistributions(c *gin.Context) {
	limit := intQuery(c, "limit", 20)

	uow, ok := s.begin(c)
	if !ok {
		return
	}
	defer uow.Rollback()

	records, err := s.distributionService(uow).History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distributions": records})
}
