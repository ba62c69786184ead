package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type SessionController struct {
	Sessions *services.SessionRegistry
	History  *services.OrderHistoryQuery
	Log      *logrus.Logger
}

func NewSessionController(sessions *services.SessionRegistry, history *services.OrderHistoryQuery, log *logrus.Logger) *SessionController {
	return &SessionController{Sessions: sessions, History: history, Log: log}
}

type sessionView struct {
	Token     string    `json:"token"`
	SessionID uint      `json:"session_id"`
	TableID   uint      `json:"table_id"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Joined    bool      `json:"joined"`
}

func viewOf(s *models.TableSession, joined bool) sessionView {
	return sessionView{
		Token:     s.Token,
		SessionID: s.ID,
		TableID:   s.TableID,
		State:     s.State,
		StartedAt: s.StartedAt,
		ExpiresAt: s.ExpiresAt(),
		Joined:    joined,
	}
}

// OpenSession -> open a session for the table, or join the live one
func (sc *SessionController) OpenSession(c *gin.Context) {
	var req struct {
		TableID    uint `json:"table_id" binding:"required"`
		UserID     uint `json:"user_id" binding:"required"`
		TTLMinutes int  `json:"ttl_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, joined, err := sc.Sessions.OpenOrJoin(c.Request.Context(), req.TableID, req.UserID, req.TTLMinutes)
	if err != nil {
		respondServiceError(c, sc.Log, err)
		return
	}

	if joined {
		utils.RespondJSON(c, http.StatusOK, "Joined active session", viewOf(session, true))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session opened", viewOf(session, false))
}

func (sc *SessionController) GetSession(c *gin.Context) {
	session, err := sc.Sessions.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, sc.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

func (sc *SessionController) CloseSession(c *gin.Context) {
	session, err := sc.Sessions.CloseByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, sc.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session closed", gin.H{"session": session})
}

func (sc *SessionController) GetHistory(c *gin.Context) {
	history, err := sc.History.GetHistory(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, sc.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session history", history)
}
