package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Clock    Clock
	Notifier Notifier
}

func (d Deps) withDefaults() Deps {
	d.Clock = clockOrSystem(d.Clock)
	d.Notifier = notifierOrNop(d.Notifier)
	if d.Logger == nil {
		d.Logger = utils.NewDiscardLogger()
	}
	return d
}

type SessionRegistryConfig struct {
	DefaultTTLMinutes int
	MaxTTLMinutes     int
}

// SessionRegistry owns the table session lifecycle: open, join, validate
// and close.
type SessionRegistry struct {
	db     *gorm.DB
	users  UserDirectory
	cfg    SessionRegistryConfig
	now    Clock
	notify Notifier
	log    *logrus.Logger
}

func NewSessionRegistry(deps Deps, users UserDirectory, cfg SessionRegistryConfig) *SessionRegistry {
	deps = deps.withDefaults()
	if cfg.DefaultTTLMinutes <= 0 {
		cfg.DefaultTTLMinutes = models.DefaultSessionTTLMinutes
	}
	if cfg.MaxTTLMinutes <= 0 {
		cfg.MaxTTLMinutes = 24 * 60
	}
	return &SessionRegistry{
		db:     deps.DB,
		users:  users,
		cfg:    cfg,
		now:    deps.Clock,
		notify: deps.Notifier,
		log:    deps.Logger,
	}
}

// CreateSession opens a new ACTIVE session for the table. It fails with
// ErrTableHasActiveSession while another live session holds the table.
func (r *SessionRegistry) CreateSession(ctx context.Context, tableID, creatorUserID uint, ttlMinutes int) (*models.TableSession, error) {
	session, _, err := r.open(ctx, tableID, creatorUserID, ttlMinutes, false)
	return session, err
}

// OpenOrJoin returns the table's live session when there is one, otherwise
// it opens a new one. joined reports which case happened.
func (r *SessionRegistry) OpenOrJoin(ctx context.Context, tableID, userID uint, ttlMinutes int) (*models.TableSession, bool, error) {
	return r.open(ctx, tableID, userID, ttlMinutes, true)
}

func (r *SessionRegistry) open(ctx context.Context, tableID, userID uint, ttlMinutes int, join bool) (*models.TableSession, bool, error) {
	ttl, err := r.normalizeTTL(ttlMinutes)
	if err != nil {
		return nil, false, err
	}
	token, err := utils.NewSessionToken()
	if err != nil {
		return nil, false, err
	}

	var (
		session models.TableSession
		joined  bool
		stale   []models.TableSession
	)
	now := r.now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The table row lock serialises concurrent openers of the same table.
		var table models.Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("table", tableID)
			}
			return fmt.Errorf("lock table %d: %w", tableID, err)
		}
		if err := r.users.Exists(ctx, tx, userID); err != nil {
			return err
		}

		var active []models.TableSession
		if err := tx.Where("table_id = ? AND state = ?", tableID, models.SessionStateActive).
			Order("started_at DESC, id ASC").
			Find(&active).Error; err != nil {
			return fmt.Errorf("load active sessions for table %d: %w", tableID, err)
		}

		for _, existing := range active {
			if existing.ExpiredAt(now) {
				ok, err := finalizeSession(tx, existing.ID, now, models.CloseReasonExpired)
				if err != nil {
					return fmt.Errorf("finalize stale session %d: %w", existing.ID, err)
				}
				if ok {
					markFinalized(&existing, now, models.CloseReasonExpired)
					stale = append(stale, existing)
				}
				continue
			}
			if join {
				session = existing
				joined = true
				return nil
			}
			return &StateError{SessionID: existing.ID, State: existing.State, Err: ErrTableHasActiveSession}
		}

		session = models.TableSession{
			TableID:       tableID,
			CreatorUserID: userID,
			Token:         token,
			State:         models.SessionStateActive,
			StartedAt:     now,
			TTLMinutes:    ttl,
		}
		if err := tx.Omit(clause.Associations).Create(&session).Error; err != nil {
			if isUniqueViolation(err) {
				return &StateError{Err: ErrTableHasActiveSession}
			}
			return fmt.Errorf("insert session for table %d: %w", tableID, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if len(stale) > 0 {
		r.notify.Publish(EventSessionsExpired, stale)
	}
	if !joined {
		r.log.WithFields(logrus.Fields{
			"session_id": session.ID,
			"table_id":   tableID,
			"user_id":    userID,
			"ttl":        ttl,
		}).Info("table session opened")
		r.notify.Publish(EventSessionOpened, session)
	}
	return &session, joined, nil
}

func (r *SessionRegistry) normalizeTTL(ttlMinutes int) (int, error) {
	switch {
	case ttlMinutes == 0:
		return r.cfg.DefaultTTLMinutes, nil
	case ttlMinutes < 0:
		return 0, invalid("ttl_minutes", "must be positive")
	case ttlMinutes > r.cfg.MaxTTLMinutes:
		return 0, invalid("ttl_minutes", fmt.Sprintf("must not exceed %d", r.cfg.MaxTTLMinutes))
	}
	return ttlMinutes, nil
}

func (r *SessionRegistry) GetByToken(ctx context.Context, token string) (*models.TableSession, error) {
	return r.getByToken(ctx, r.db, token, false)
}

func (r *SessionRegistry) getByToken(ctx context.Context, db *gorm.DB, token string, lock bool) (*models.TableSession, error) {
	if token == "" {
		return nil, notFound("session", "(empty token)")
	}
	q := db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var session models.TableSession
	if err := q.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session", "token")
		}
		return nil, fmt.Errorf("load session by token: %w", err)
	}
	return &session, nil
}

// ValidateActive returns the session when it may still receive orders.
// A session past its TTL is rejected even before the sweep finalizes it.
func (r *SessionRegistry) ValidateActive(ctx context.Context, token string) (*models.TableSession, error) {
	return r.validateActive(ctx, r.db, token, false)
}

func (r *SessionRegistry) validateActive(ctx context.Context, db *gorm.DB, token string, lock bool) (*models.TableSession, error) {
	session, err := r.getByToken(ctx, db, token, lock)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, &StateError{SessionID: session.ID, State: session.State, Err: ErrSessionNotActive}
	}
	if session.ExpiredAt(r.now()) {
		return nil, &StateError{
			SessionID: session.ID,
			State:     session.State,
			Err:       fmt.Errorf("%w: ttl elapsed at %s", ErrSessionNotActive, session.ExpiresAt().Format("2006-01-02T15:04:05Z07:00")),
		}
	}
	return session, nil
}

// CloseByToken finalizes an ACTIVE session. Closing twice is an error.
func (r *SessionRegistry) CloseByToken(ctx context.Context, token string) (*models.TableSession, error) {
	session, err := r.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, &StateError{SessionID: session.ID, State: session.State, Err: ErrSessionAlreadyFinalized}
	}

	now := r.now()
	ok, err := finalizeSession(r.db.WithContext(ctx), session.ID, now, models.CloseReasonClosed)
	if err != nil {
		return nil, fmt.Errorf("close session %d: %w", session.ID, err)
	}
	if !ok {
		// Lost the race against the sweeper or another close.
		return nil, &StateError{SessionID: session.ID, State: models.SessionStateFinalized, Err: ErrSessionAlreadyFinalized}
	}
	markFinalized(session, now, models.CloseReasonClosed)

	r.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"table_id":   session.TableID,
	}).Info("table session closed")
	r.notify.Publish(EventSessionClosed, session)
	return session, nil
}

// ListActive returns the ACTIVE sessions of one table, newest first.
func (r *SessionRegistry) ListActive(ctx context.Context, tableID uint) ([]models.TableSession, error) {
	var sessions []models.TableSession
	if err := r.db.WithContext(ctx).
		Where("table_id = ? AND state = ?", tableID, models.SessionStateActive).
		Order("started_at DESC, id ASC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list active sessions for table %d: %w", tableID, err)
	}
	return sessions, nil
}
