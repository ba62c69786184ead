package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeremiapane/restaurant-ordering/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Run the schema migration. With SESSION_UNIQUE_ACTIVE_INDEX=true the
partial unique index on active table sessions is created as well; it
requires postgres or sqlite and a database without duplicate sessions.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().Bool("unique-active-index", false, "also create the active session unique index")
	_ = viper.BindPFlag("session_unique_active_index", migrateCmd.Flags().Lookup("unique-active-index"))
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := database.Migrate(rt.db); err != nil {
		return err
	}
	rt.log.Info("schema migrated")

	if rt.cfg.SessionUniqueActiveIndex {
		return database.EnsureActiveSessionIndex(rt.db, rt.log)
	}
	return nil
}
