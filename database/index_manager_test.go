package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/database/dbtest"
	"github.com/yeremiapane/restaurant-ordering/models"
)

func TestEnsureActiveSessionIndex(t *testing.T) {
	db := dbtest.New(t)
	seed := dbtest.Seed(t, db)
	loc := seed.Location("Downtown")
	table := seed.Table(loc.ID, "T001")
	user := seed.User("waiter@example.com", "secret", models.RoleWaiter)
	now := time.Now().UTC()

	seed.Session(table.ID, user.ID, models.SessionStateActive, now, 120)
	seed.Session(table.ID, user.ID, models.SessionStateFinalized, now.Add(-time.Hour), 120)

	require.NoError(t, database.EnsureActiveSessionIndex(db, nil))
	assert.True(t, db.Migrator().HasIndex(&models.TableSession{}, database.ActiveSessionIndex))

	// idempotent
	require.NoError(t, database.EnsureActiveSessionIndex(db, nil))

	dup := models.TableSession{
		TableID: table.ID, CreatorUserID: user.ID, Token: "second-active",
		State: models.SessionStateActive, StartedAt: now, TTLMinutes: 120,
	}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")

	// finalized rows are outside the index
	seed.Session(table.ID, user.ID, models.SessionStateFinalized, now, 120)

	require.NoError(t, database.DropActiveSessionIndex(db))
	assert.False(t, db.Migrator().HasIndex(&models.TableSession{}, database.ActiveSessionIndex))
}

func TestEnsureActiveSessionIndexRefusesDuplicates(t *testing.T) {
	db := dbtest.New(t)
	seed := dbtest.Seed(t, db)
	loc := seed.Location("Downtown")
	table := seed.Table(loc.ID, "T001")
	user := seed.User("waiter@example.com", "secret", models.RoleWaiter)
	now := time.Now().UTC()

	seed.Session(table.ID, user.ID, models.SessionStateActive, now, 120)
	seed.Session(table.ID, user.ID, models.SessionStateActive, now.Add(-time.Minute), 120)

	err := database.EnsureActiveSessionIndex(db, nil)
	assert.ErrorIs(t, err, database.ErrDuplicatesPresent)
	assert.False(t, db.Migrator().HasIndex(&models.TableSession{}, database.ActiveSessionIndex))
}
