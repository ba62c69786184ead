package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/models"
)

type KDSController struct {
	Hub      *kds.Hub
	Log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewKDSController(hub *kds.Hub, allowedOrigin string, log *logrus.Logger) *KDSController {
	return &KDSController{
		Hub: hub,
		Log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Handle -> websocket endpoint for kitchen and staff displays
func (kc *KDSController) Handle(c *gin.Context) {
	role := c.GetString("role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if role != models.RoleAdmin && role != models.RoleStaff && role != models.RoleWaiter {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		kc.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	kc.Hub.Serve(ws, role)
}
