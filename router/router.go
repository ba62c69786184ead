package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/controllers"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

type Options struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	JWT      *utils.JWTManager
	Hub      *kds.Hub
	Services *services.Suite

	RateLimitRPS      float64
	RateLimitBurst    int
	CORSAllowedOrigin string
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.LoggerMiddleware(opts.Log),
		middlewares.SecurityHeaders(),
		middlewares.CORSMiddlewares(opts.CORSAllowedOrigin),
	)
	if opts.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	}

	svc := opts.Services
	sessionCtrl := controllers.NewSessionController(svc.Sessions, svc.History, opts.Log)
	orderCtrl := controllers.NewOrderController(svc.Orders, opts.Log)
	catalogCtrl := controllers.NewCatalogController(svc.Catalog, opts.Log)
	userCtrl := controllers.NewUserController(opts.DB, opts.JWT, opts.Log)
	adminCtrl := controllers.NewAdminController(svc.Sessions, svc.Sweeper, svc.Duplicates, opts.Log)
	kdsCtrl := controllers.NewKDSController(opts.Hub, opts.CORSAllowedOrigin, opts.Log)

	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "pong", nil)
	})
	r.POST("/login", userCtrl.Login)

	sessions := r.Group("/sessions")
	{
		sessions.POST("", sessionCtrl.OpenSession)
		sessions.GET("/:token", sessionCtrl.GetSession)
		sessions.POST("/:token/close", sessionCtrl.CloseSession)
		sessions.GET("/:token/history", sessionCtrl.GetHistory)
	}

	r.POST("/orders", orderCtrl.CreateOrder)
	r.GET("/catalog/locations/:location_id/products/:product_id", catalogCtrl.GetEffectiveProduct)

	admin := r.Group("/admin",
		middlewares.AuthMiddleware(opts.JWT),
		middlewares.RequireRole(models.RoleAdmin, models.RoleStaff),
	)
	{
		admin.GET("/sessions/state", adminCtrl.SessionState)
		admin.POST("/sessions/fix-duplicates", adminCtrl.FixDuplicates)
		admin.POST("/sessions/finalize-expired", adminCtrl.FinalizeExpired)
		admin.GET("/tables/:table_id/sessions", adminCtrl.TableSessions)
	}

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(opts.JWT), kdsCtrl.Handle)

	return r
}
