package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/event"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/fight"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/leaderboard"
)

type Config struct {
	Router       gin.IRouter
	EventBus     *event.Bus
	Fight        *fight.Service
	Leaderboard  *leaderboard.Service
	Redis        Redis
	PubsubPrefix string
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	fs *fight.Service
	ls *leaderboard.Service

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		fs:     c.Fight,
		ls:     c.Leaderboard,
		redis:  c.Redis,
		prefix: c.PubsubPrefix,
	}

	r := c.Router
	r.POST("/sessions", a.createSession)
	r.POST("/sessions/:bossId/join", a.joinSession)
	r.DELETE("/sessions/:bossId", a.endSession)
	r.GET("/sessions/:sessionId/leaderboard", a.getLeaderboard)
	r.GET("/sessions/:sessionId/damage", a.getDamageBoard)
	r.GET("/sessions/:sessionId/players/:playerId/ranking", a.getPlayerRanking)
	r.POST("/players/:playerId/ready", a.markReady)
	r.POST("/players/:playerId/answer", a.submitAnswer)
	r.POST("/players/:playerId/revive", a.reviveAttempt)
	r.GET("/players/:playerId", a.getPlayerState)
	r.GET("/bosses/:bossId/engagement", a.getEngagement)
	r.GET("/bosses/:bossId/cooldown", a.getCooldown)

	// Relay the whole domain stream out to redis pub/sub.
	c.EventBus.SubscribeAll(a.relayEvent)

	return a
}

type createSessionRequest struct {
	BossID string `json:"boss_id" binding:"required"`
	HostID string `json:"host_id" binding:"required"`
}

func (a *API) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	sess, err := a.fs.CreateSession(c.Request.Context(), req.BossID, req.HostID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sess)
}

type joinSessionRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

func (a *API) joinSession(c *gin.Context) {
	var req joinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	ps, err := a.fs.JoinSession(c.Request.Context(), c.Param("bossId"), req.PlayerID, req.Nickname)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ps)
}

type endSessionRequest struct {
	HostID string `json:"host_id" binding:"required"`
}

func (a *API) endSession(c *gin.Context) {
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	if err := a.fs.EndSession(c.Request.Context(), c.Param("bossId"), req.HostID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (a *API) markReady(c *gin.Context) {
	if err := a.fs.MarkReady(c.Request.Context(), c.Param("playerId")); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type submitAnswerRequest struct {
	AnswerIndex *int `json:"answer_index" binding:"required"`
}

func (a *API) submitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	res, err := a.fs.SubmitAnswer(c.Request.Context(), c.Param("playerId"), *req.AnswerIndex)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

type reviveRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

func (a *API) reviveAttempt(c *gin.Context) {
	var req reviveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	res, err := a.fs.ReviveAttempt(c.Request.Context(), c.Param("playerId"), req.TargetID, req.Code)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (a *API) getPlayerState(c *gin.Context) {
	ps, err := a.fs.GetPlayerState(c.Request.Context(), c.Param("playerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ps)
}

func (a *API) getLeaderboard(c *gin.Context) {
	l, err := a.fs.GetLeaderboard(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

// getDamageBoard reads the redis-backed damage totals, which survive the
// in-memory session while the fight runs.
func (a *API) getDamageBoard(c *gin.Context) {
	board, err := a.ls.GetDamageBoard(c.Request.Context(), leaderboard.GetDamageBoardRequest{
		SessionID: c.Param("sessionId"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

func (a *API) getPlayerRanking(c *gin.Context) {
	r, err := a.fs.GetPlayerRanking(c.Request.Context(), c.Param("sessionId"), c.Param("playerId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

func (a *API) getEngagement(c *gin.Context) {
	snap, err := a.fs.GetEngagementSnapshot(c.Request.Context(), c.Param("bossId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (a *API) getCooldown(c *gin.Context) {
	c.JSON(http.StatusOK, a.fs.CooldownStatus(c.Request.Context(), c.Param("bossId")))
}

func abortWithError(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), gin.H{"error": e})
}
