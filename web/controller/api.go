package controller

import (
	"io"

	"vvotes/logger"
	"vvotes/util/common"
	"vvotes/web/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// APIController exposes the inbound event surface: vote notifications,
// read projections and the runtime status.
type APIController struct {
	BaseController

	voteService   *service.VoteService
	serverService service.ServerService

	admin *AdminController
}

func NewAPIController(g *gin.RouterGroup, voteService *service.VoteService, drawService *service.DrawService, settingService *service.SettingService) *APIController {
	a := &APIController{voteService: voteService}
	a.initRouter(g, drawService, settingService)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup, drawService *service.DrawService, settingService *service.SettingService) {
	api := g.Group("/api")
	api.Use(a.checkToken)

	api.POST("/votes", a.postVote)
	api.GET("/stats/:uuid", a.getStats)
	api.GET("/global/daily", a.getGlobalDaily)
	api.GET("/server/status", a.getStatus)

	a.admin = NewAdminController(api.Group("/admin"), a.voteService, drawService, settingService)
}

type votePayload struct {
	Uuid    string `json:"uuid"`
	Name    string `json:"name"`
	Service string `json:"service"`
}

// postVote accepts a vote-relay notification. Settlement failures are
// logged server-side; the relay only sees whether the payload was
// well-formed.
func (a *APIController) postVote(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}
	var payload votePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		badRequest(c, "malformed payload")
		return
	}
	if _, err := uuid.Parse(payload.Uuid); err != nil {
		badRequest(c, "invalid uuid")
		return
	}
	if payload.Name == "" || payload.Service == "" {
		badRequest(c, "name and service are required")
		return
	}

	a.voteService.HandleVote(payload.Uuid, payload.Name, payload.Service)
	c.Status(202)
}

func (a *APIController) getStats(c *gin.Context) {
	id := c.Param("uuid")
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "invalid uuid")
		return
	}
	name := c.Query("name")
	if name == "" {
		name = id
	}

	player, err := a.voteService.GetStats(id, name)
	if err != nil {
		jsonMsg(c, "get stats", err)
		return
	}
	globalDaily, err := a.voteService.GetGlobalDailyVotes()
	if err != nil {
		logger.Warning("reading global counter failed:", err)
	}

	jsonObj(c, gin.H{
		"uuid":            player.Uuid,
		"name":            player.Name,
		"total":           common.FormatAmount(player.TotalVotes),
		"daily":           common.FormatAmount(player.DailyVotes),
		"monthly":         common.FormatAmount(player.MonthlyVotes),
		"streakMonthly":   player.StreakMonthly,
		"globalDaily":     common.FormatAmount(globalDaily),
		"nextGlobalGoal":  a.voteService.NextGlobalGoal(globalDaily),
		"nextMonthlyGoal": a.voteService.NextMonthlyGoal(player.MonthlyVotes),
	}, nil)
}

func (a *APIController) getGlobalDaily(c *gin.Context) {
	globalDaily, err := a.voteService.GetGlobalDailyVotes()
	if err != nil {
		jsonMsg(c, "get global daily", err)
		return
	}
	jsonObj(c, gin.H{"globalDaily": globalDaily}, nil)
}

func (a *APIController) getStatus(c *gin.Context) {
	jsonObj(c, a.serverService.GetStatus(), nil)
}
