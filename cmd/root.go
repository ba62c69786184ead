package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/restaurant-ordering/config"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "restaurant-ordering",
	Short: "Table session and order submission backend",
	Long: `restaurant-ordering serves token based table sessions and order
submission priced per location, and runs the session maintenance jobs
(expiration sweep, duplicate repair) on demand or on a schedule.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: sqlite, mysql or postgres (env DB_DRIVER)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database DSN (env DB_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (env LOG_LEVEL)")

	_ = viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindPFlag("db_driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("db_dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// runtime is what every command needs before doing work.
type runtime struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap() (*runtime, error) {
	if err := config.LoadDotEnv(viper.GetString("env_file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DatabaseOptions(), log)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (rt *runtime) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (rt *runtime) sessionConfig() services.SessionRegistryConfig {
	return services.SessionRegistryConfig{
		DefaultTTLMinutes: rt.cfg.SessionDefaultTTLMinutes,
		MaxTTLMinutes:     rt.cfg.SessionMaxTTLMinutes,
	}
}
