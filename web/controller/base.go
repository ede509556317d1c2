package controller

import (
	"crypto/subtle"
	"net/http"

	"vvotes/config"
	"vvotes/web/entity"

	"github.com/gin-gonic/gin"
)

type BaseController struct{}

// checkToken guards the API with the shared secret from the
// environment. An empty configured token disables the check (loopback
// deployments).
func (a *BaseController) checkToken(c *gin.Context) {
	token := config.GetAPIToken()
	if token == "" {
		return
	}
	provided := c.GetHeader("X-API-Token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Success: false, Msg: "invalid token"})
	}
}
