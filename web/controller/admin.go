package controller

import (
	"vvotes/web/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminController carries the maintenance operations: manual credits,
// draws, counter resets and settings reload. Unlike ordinary votes,
// failures here surface to the caller as result statuses.
type AdminController struct {
	BaseController

	voteService    *service.VoteService
	drawService    *service.DrawService
	settingService *service.SettingService
}

func NewAdminController(g *gin.RouterGroup, voteService *service.VoteService, drawService *service.DrawService, settingService *service.SettingService) *AdminController {
	a := &AdminController{
		voteService:    voteService,
		drawService:    drawService,
		settingService: settingService,
	}
	a.initRouter(g)
	return a
}

func (a *AdminController) initRouter(g *gin.RouterGroup) {
	g.POST("/credit", a.credit)
	g.POST("/draw", a.draw)
	g.POST("/reset/daily", a.resetDaily)
	g.POST("/reset/monthly/:uuid", a.resetMonthly)
	g.POST("/reload", a.reload)
}

type creditPayload struct {
	Uuid   string  `json:"uuid"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (a *AdminController) credit(c *gin.Context) {
	var payload creditPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "malformed payload")
		return
	}
	if _, err := uuid.Parse(payload.Uuid); err != nil {
		badRequest(c, "invalid uuid")
		return
	}
	if payload.Amount <= 0 {
		badRequest(c, "amount must be positive")
		return
	}
	name := payload.Name
	if name == "" {
		name = payload.Uuid
	}

	err := a.voteService.AddManualVotes(payload.Uuid, name, payload.Amount)
	jsonMsg(c, "manual credit", err)
}

type drawPayload struct {
	Month string `json:"month"`
	Actor string `json:"actor"`
}

func (a *AdminController) draw(c *gin.Context) {
	var payload drawPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			badRequest(c, "malformed payload")
			return
		}
	}
	if payload.Actor == "" {
		payload.Actor = "admin"
	}

	result := a.drawService.DrawMonthly(payload.Month, payload.Actor)
	jsonObj(c, result, nil)
}

func (a *AdminController) resetDaily(c *gin.Context) {
	err := a.voteService.ForceResetGlobalDaily()
	jsonMsg(c, "reset global daily", err)
}

func (a *AdminController) resetMonthly(c *gin.Context) {
	id := c.Param("uuid")
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "invalid uuid")
		return
	}
	err := a.voteService.ForceResetPlayerMonthly(id)
	jsonMsg(c, "reset player monthly", err)
}

func (a *AdminController) reload(c *gin.Context) {
	err := a.settingService.Reload()
	jsonMsg(c, "reload settings", err)
}
