package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// ExpirationSweeper finalizes ACTIVE sessions whose TTL has elapsed.
type ExpirationSweeper struct {
	db     *gorm.DB
	now    Clock
	notify Notifier
	log    *logrus.Logger
}

func NewExpirationSweeper(deps Deps) *ExpirationSweeper {
	deps = deps.withDefaults()
	return &ExpirationSweeper{
		db:     deps.DB,
		now:    deps.Clock,
		notify: deps.Notifier,
		log:    deps.Logger,
	}
}

// FinalizeExpired returns the sessions this call moved to FINALIZED. Rows
// already finalized by a concurrent writer are skipped, so repeated calls
// converge to an empty result.
func (s *ExpirationSweeper) FinalizeExpired(ctx context.Context) ([]models.TableSession, error) {
	var active []models.TableSession
	if err := s.db.WithContext(ctx).
		Where("state = ?", models.SessionStateActive).
		Order("id ASC").
		Find(&active).Error; err != nil {
		return nil, fmt.Errorf("load active sessions: %w", err)
	}

	now := s.now()
	finalized := make([]models.TableSession, 0)
	for _, session := range active {
		if !session.ExpiredAt(now) {
			continue
		}
		ok, err := finalizeSession(s.db.WithContext(ctx), session.ID, now, models.CloseReasonExpired)
		if err != nil {
			s.publish(finalized)
			return finalized, fmt.Errorf("finalize expired session %d: %w", session.ID, err)
		}
		if !ok {
			continue
		}
		markFinalized(&session, now, models.CloseReasonExpired)
		finalized = append(finalized, session)

		s.log.WithFields(logrus.Fields{
			"session_id": session.ID,
			"table_id":   session.TableID,
			"started_at": session.StartedAt,
			"ttl":        session.TTLMinutes,
		}).Info("table session expired")
	}

	s.publish(finalized)
	s.log.WithField("finalized", len(finalized)).Debug("expiration sweep done")
	return finalized, nil
}

func (s *ExpirationSweeper) publish(finalized []models.TableSession) {
	if len(finalized) > 0 {
		s.notify.Publish(EventSessionsExpired, finalized)
	}
}
