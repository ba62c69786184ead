package services

import (
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

const (
	// PgErrUniqueViolation is the Postgres SQLSTATE for unique_violation.
	PgErrUniqueViolation = "23505"
	// MySQLErrDupEntry is ER_DUP_ENTRY.
	MySQLErrDupEntry = 1062
)

// isUniqueViolation recognises duplicate key errors from every supported
// dialect.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == PgErrUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == MySQLErrDupEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// finalizeSession moves one session from ACTIVE to FINALIZED. It reports
// false when another writer already finalized the row.
func finalizeSession(db *gorm.DB, sessionID uint, now time.Time, reason string) (bool, error) {
	res := db.Model(&models.TableSession{}).
		Where("id = ? AND state = ?", sessionID, models.SessionStateActive).
		Updates(map[string]interface{}{
			"state":         models.SessionStateFinalized,
			"ended_at":      now,
			"closed_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func markFinalized(s *models.TableSession, now time.Time, reason string) {
	s.State = models.SessionStateFinalized
	ended := now
	s.EndedAt = &ended
	r := reason
	s.ClosedReason = &r
}
