package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/database/dbtest"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"gorm.io/gorm/logger"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestMaintenanceCommands(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "cmd.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("LOG_LEVEL", "error")

	run(t, "migrate")

	db, err := database.Open(database.Options{Driver: "sqlite", DSN: dsn, LogLevel: logger.Silent}, nil)
	require.NoError(t, err)
	seed := dbtest.Seed(t, db)
	loc := seed.Location("Main")
	table := seed.Table(loc.ID, "T001")
	user := seed.User("staff@example.com", "pw", models.RoleStaff)
	now := time.Now().UTC()
	seed.Session(table.ID, user.ID, models.SessionStateActive, now.Add(-5*time.Hour), 120)
	seed.Session(table.ID, user.ID, models.SessionStateActive, now.Add(-time.Minute), 120)
	seed.Session(table.ID, user.ID, models.SessionStateActive, now.Add(-2*time.Minute), 120)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	out := run(t, "sweep")
	assert.Contains(t, out, "finalized 1 expired session(s)")

	var state services.SessionStateReport
	require.NoError(t, json.Unmarshal([]byte(run(t, "fix-duplicates", "--dry-run")), &state))
	assert.Equal(t, int64(2), state.Active)
	require.Len(t, state.Duplicates, 1)

	var reports []services.DuplicateFixReport
	require.NoError(t, json.Unmarshal([]byte(run(t, "fix-duplicates", "--dry-run=false")), &reports))
	require.Len(t, reports, 1)
	assert.Len(t, reports[0].SessionsFinalized, 1)
}
