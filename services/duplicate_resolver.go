package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

type DuplicateEntry struct {
	TableID     uint  `json:"table_id"`
	ActiveCount int64 `json:"active_count"`
	Duplicated  bool  `json:"duplicated"`
}

type DuplicateFixReport struct {
	TableID           uint   `json:"table_id"`
	SessionsFound     int    `json:"sessions_found"`
	SessionKept       uint   `json:"session_kept"`
	SessionsFinalized []uint `json:"sessions_finalized"`
}

// SessionStateReport summarises session health for operators.
type SessionStateReport struct {
	Active           int64            `json:"active"`
	Finalized        int64            `json:"finalized"`
	ExpiredButActive int64            `json:"expired_but_active"`
	Duplicates       []DuplicateEntry `json:"duplicates"`
}

// DuplicateResolver repairs tables holding more than one ACTIVE session.
type DuplicateResolver struct {
	db     *gorm.DB
	now    Clock
	notify Notifier
	log    *logrus.Logger
}

func NewDuplicateResolver(deps Deps) *DuplicateResolver {
	deps = deps.withDefaults()
	return &DuplicateResolver{
		db:     deps.DB,
		now:    deps.Clock,
		notify: deps.Notifier,
		log:    deps.Logger,
	}
}

// DetectDuplicates lists every table with at least one ACTIVE session.
func (d *DuplicateResolver) DetectDuplicates(ctx context.Context) ([]DuplicateEntry, error) {
	var rows []struct {
		TableID uint
		Total   int64
	}
	if err := d.db.WithContext(ctx).
		Model(&models.TableSession{}).
		Select("table_id, COUNT(*) AS total").
		Where("state = ?", models.SessionStateActive).
		Group("table_id").
		Order("table_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count active sessions per table: %w", err)
	}

	entries := make([]DuplicateEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, DuplicateEntry{
			TableID:     row.TableID,
			ActiveCount: row.Total,
			Duplicated:  row.Total > 1,
		})
	}
	return entries, nil
}

// FixDuplicates keeps the newest ACTIVE session of each flagged table and
// finalizes the rest. Each table is repaired in its own transaction; a
// failure leaves the tables already repaired committed.
func (d *DuplicateResolver) FixDuplicates(ctx context.Context) ([]DuplicateFixReport, error) {
	entries, err := d.DetectDuplicates(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]DuplicateFixReport, 0)
	for _, entry := range entries {
		if !entry.Duplicated {
			continue
		}
		report, err := d.fixTable(ctx, entry.TableID)
		if err != nil {
			d.publish(reports)
			return reports, err
		}
		if len(report.SessionsFinalized) == 0 {
			continue
		}
		reports = append(reports, *report)

		d.log.WithFields(logrus.Fields{
			"table_id":  report.TableID,
			"found":     report.SessionsFound,
			"kept":      report.SessionKept,
			"finalized": report.SessionsFinalized,
		}).Warn("duplicate active sessions repaired")
	}

	d.publish(reports)
	return reports, nil
}

func (d *DuplicateResolver) fixTable(ctx context.Context, tableID uint) (*DuplicateFixReport, error) {
	report := &DuplicateFixReport{TableID: tableID, SessionsFinalized: []uint{}}
	now := d.now()

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active []models.TableSession
		if err := tx.Where("table_id = ? AND state = ?", tableID, models.SessionStateActive).
			Find(&active).Error; err != nil {
			return fmt.Errorf("load active sessions for table %d: %w", tableID, err)
		}
		report.SessionsFound = len(active)
		if len(active) < 2 {
			return nil
		}

		sortNewestFirst(active)
		report.SessionKept = active[0].ID

		for _, session := range active[1:] {
			ok, err := finalizeSession(tx, session.ID, now, models.CloseReasonDuplicate)
			if err != nil {
				return fmt.Errorf("finalize duplicate session %d: %w", session.ID, err)
			}
			if ok {
				report.SessionsFinalized = append(report.SessionsFinalized, session.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// sortNewestFirst orders by started_at descending, ties broken by the lowest
// id.
func sortNewestFirst(sessions []models.TableSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.After(b.StartedAt)
		}
		return a.ID < b.ID
	})
}

// State reports totals and the per-table duplicate check.
func (d *DuplicateResolver) State(ctx context.Context) (*SessionStateReport, error) {
	report := &SessionStateReport{}
	db := d.db.WithContext(ctx)

	if err := db.Model(&models.TableSession{}).
		Where("state = ?", models.SessionStateFinalized).
		Count(&report.Finalized).Error; err != nil {
		return nil, fmt.Errorf("count finalized sessions: %w", err)
	}

	var active []models.TableSession
	if err := db.Where("state = ?", models.SessionStateActive).Find(&active).Error; err != nil {
		return nil, fmt.Errorf("load active sessions: %w", err)
	}
	now := d.now()
	report.Active = int64(len(active))
	for _, s := range active {
		if s.ExpiredAt(now) {
			report.ExpiredButActive++
		}
	}

	entries, err := d.DetectDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	report.Duplicates = make([]DuplicateEntry, 0)
	for _, e := range entries {
		if e.Duplicated {
			report.Duplicates = append(report.Duplicates, e)
		}
	}
	return report, nil
}

func (d *DuplicateResolver) publish(reports []DuplicateFixReport) {
	if len(reports) > 0 {
		d.notify.Publish(EventDuplicatesFixed, reports)
	}
}
