package database

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// ActiveSessionIndex enforces one ACTIVE session per table in storage.
const ActiveSessionIndex = "ux_table_sessions_active"

var (
	ErrPartialIndexUnsupported = errors.New("partial unique indexes need postgres or sqlite")
	ErrDuplicatesPresent       = errors.New("tables with several active sessions exist, run fix-duplicates first")
)

// EnsureActiveSessionIndex creates the partial unique index on
// table_sessions(table_id) WHERE state = 'ACTIVE'. It refuses to run while
// duplicates are still present.
func EnsureActiveSessionIndex(db *gorm.DB, log *logrus.Logger) error {
	switch db.Dialector.Name() {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: dialect %s", ErrPartialIndexUnsupported, db.Dialector.Name())
	}

	var duplicated int64
	if err := db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT table_id FROM table_sessions
			WHERE state = ?
			GROUP BY table_id
			HAVING COUNT(*) > 1
		) dup`, models.SessionStateActive).Scan(&duplicated).Error; err != nil {
		return fmt.Errorf("check duplicate sessions: %w", err)
	}
	if duplicated > 0 {
		return fmt.Errorf("%w (%d tables)", ErrDuplicatesPresent, duplicated)
	}

	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON table_sessions (table_id) WHERE state = '%s'",
		ActiveSessionIndex, models.SessionStateActive)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", ActiveSessionIndex, err)
	}

	if !db.Migrator().HasIndex(&models.TableSession{}, ActiveSessionIndex) {
		return fmt.Errorf("index %s missing after create", ActiveSessionIndex)
	}
	if log != nil {
		log.WithField("index", ActiveSessionIndex).Info("active session index verified")
	}
	return nil
}

func DropActiveSessionIndex(db *gorm.DB) error {
	if !db.Migrator().HasIndex(&models.TableSession{}, ActiveSessionIndex) {
		return nil
	}
	return db.Migrator().DropIndex(&models.TableSession{}, ActiveSessionIndex)
}
