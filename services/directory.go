package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// TablePlacement is the resolved table → zone → location chain.
type TablePlacement struct {
	TableID    uint
	ZoneID     uint
	LocationID uint
}

// MesaDirectory resolves where a table lives.
type MesaDirectory interface {
	Placement(ctx context.Context, db *gorm.DB, tableID uint) (*TablePlacement, error)
}

// UserDirectory resolves the staff member opening a session.
type UserDirectory interface {
	Exists(ctx context.Context, db *gorm.DB, userID uint) error
}

// GormDirectory implements both directories on the shared store. Callers pass
// the handle so lookups can join an open transaction.
type GormDirectory struct{}

func NewGormDirectory() *GormDirectory { return &GormDirectory{} }

func (GormDirectory) Placement(ctx context.Context, db *gorm.DB, tableID uint) (*TablePlacement, error) {
	var row struct {
		TableID    uint
		ZoneID     uint
		LocationID uint
	}
	err := db.WithContext(ctx).
		Table("tables").
		Select("tables.id AS table_id, zones.id AS zone_id, zones.location_id AS location_id").
		Joins("JOIN zones ON zones.id = tables.zone_id").
		Where("tables.id = ?", tableID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("table placement", tableID)
		}
		return nil, fmt.Errorf("resolve table %d placement: %w", tableID, err)
	}
	return &TablePlacement{TableID: row.TableID, ZoneID: row.ZoneID, LocationID: row.LocationID}, nil
}

func (GormDirectory) Exists(ctx context.Context, db *gorm.DB, userID uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup user %d: %w", userID, err)
	}
	if count == 0 {
		return notFound("user", userID)
	}
	return nil
}
