package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// AdminController exposes the session maintenance jobs to staff.
type AdminController struct {
	Sessions   *services.SessionRegistry
	Sweeper    *services.ExpirationSweeper
	Duplicates *services.DuplicateResolver
	Log        *logrus.Logger
}

func NewAdminController(sessions *services.SessionRegistry, sweeper *services.ExpirationSweeper, duplicates *services.DuplicateResolver, log *logrus.Logger) *AdminController {
	return &AdminController{Sessions: sessions, Sweeper: sweeper, Duplicates: duplicates, Log: log}
}

func (ac *AdminController) SessionState(c *gin.Context) {
	report, err := ac.Duplicates.State(c.Request.Context())
	if err != nil {
		respondServiceError(c, ac.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session state", report)
}

func (ac *AdminController) FixDuplicates(c *gin.Context) {
	reports, err := ac.Duplicates.FixDuplicates(c.Request.Context())
	if err != nil {
		respondServiceError(c, ac.Log, err)
		return
	}
	ac.Log.WithFields(logrus.Fields{
		"user_id":      c.GetUint("user_id"),
		"tables_fixed": len(reports),
	}).Info("duplicate repair requested")
	utils.RespondJSON(c, http.StatusOK, "Duplicate sessions repaired", gin.H{
		"tables_fixed": len(reports),
		"reports":      reports,
	})
}

func (ac *AdminController) FinalizeExpired(c *gin.Context) {
	finalized, err := ac.Sweeper.FinalizeExpired(c.Request.Context())
	if err != nil {
		respondServiceError(c, ac.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expired sessions finalized", gin.H{
		"finalized": len(finalized),
		"sessions":  finalized,
	})
}

// TableSessions -> ACTIVE sessions of one table
func (ac *AdminController) TableSessions(c *gin.Context) {
	tableID, err := parseID(c, "table_id")
	if err != nil {
		return
	}
	sessions, err := ac.Sessions.ListActive(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, ac.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}
