package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/router"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the session maintenance jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env PORT)")
	serveCmd.Flags().Bool("migrate", true, "run the schema migration before serving")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, log := rt.cfg, rt.log

	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}
	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(rt.db); err != nil {
			return err
		}
	}
	if cfg.SessionUniqueActiveIndex {
		if err := database.EnsureActiveSessionIndex(rt.db, log); err != nil {
			return err
		}
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := kds.NewHub(log)
	suite := services.NewSuite(services.Deps{
		DB:       rt.db,
		Logger:   log,
		Notifier: hub,
	}, rt.sessionConfig(), services.NoAdjustments{})

	jobs := services.NewSessionJobs(suite.Sweeper, suite.Duplicates, cfg.SweepInterval, cfg.DuplicateFixInterval, log)
	jobs.Start()
	defer jobs.Stop()

	engine := router.SetupRouter(router.Options{
		DB:                rt.db,
		Log:               log,
		JWT:               utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Hub:               hub,
		Services:          suite,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
