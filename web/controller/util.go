package controller

import (
	"net/http"

	"vvotes/web/entity"

	"github.com/gin-gonic/gin"
)

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
	} else {
		m.Success = false
		m.Msg = msg + " failed: " + err.Error()
	}
	c.JSON(http.StatusOK, m)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, entity.Msg{Success: false, Msg: msg})
}
