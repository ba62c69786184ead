// Package dbtest provides migrated in-memory SQLite databases and catalog
// fixtures for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a private, migrated in-memory database.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      dsn,
		LogLevel: logger.Silent,
	}, nil)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Seeder creates fixtures and fails the test on the first error.
type Seeder struct {
	t  testing.TB
	db *gorm.DB
}

func Seed(t testing.TB, db *gorm.DB) *Seeder {
	return &Seeder{t: t, db: db}
}

func (s *Seeder) create(v interface{}) {
	s.t.Helper()
	if err := s.db.Create(v).Error; err != nil {
		s.t.Fatalf("seed %T: %v", v, err)
	}
}

func (s *Seeder) Location(name string) models.Location {
	s.t.Helper()
	loc := models.Location{Name: name}
	s.create(&loc)
	return loc
}

// Table creates a zone in the location and a table inside it.
func (s *Seeder) Table(locationID uint, number string) models.Table {
	s.t.Helper()
	zone := models.Zone{LocationID: locationID, Name: "Zone " + number}
	s.create(&zone)
	table := models.Table{ZoneID: zone.ID, TableNumber: number, Status: "available"}
	s.create(&table)
	return table
}

// User stores password as a bcrypt hash.
func (s *Seeder) User(email, password, role string) models.User {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		s.t.Fatalf("hash password: %v", err)
	}
	user := models.User{Name: email, Email: email, Password: string(hash), Role: role}
	s.create(&user)
	return user
}

func (s *Seeder) Product(name, price string, available bool) models.Product {
	s.t.Helper()
	p := models.Product{Name: name, PriceBase: decimal.RequireFromString(price), Available: available}
	s.create(&p)
	return p
}

// ProductAt activates a product at a location with optional overrides.
func (s *Seeder) ProductAt(productID, locationID uint, active bool, price *string) models.ProductLocation {
	s.t.Helper()
	pl := models.ProductLocation{ProductID: productID, LocationID: locationID, Active: active}
	if price != nil {
		pl.PriceOverride = decimal.NewNullDecimal(decimal.RequireFromString(*price))
	}
	s.create(&pl)
	return pl
}

func (s *Seeder) OptionType(name string, min int, max *int) models.OptionType {
	s.t.Helper()
	ot := models.OptionType{Name: name, MinSelections: min, MaxSelections: max}
	s.create(&ot)
	return ot
}

func (s *Seeder) OptionTypeAt(optionTypeID, locationID uint, active bool) models.OptionTypeLocation {
	s.t.Helper()
	otl := models.OptionTypeLocation{OptionTypeID: optionTypeID, LocationID: locationID, Active: active}
	s.create(&otl)
	return otl
}

func (s *Seeder) LinkOptionType(productID, optionTypeID uint) {
	s.t.Helper()
	s.create(&models.ProductOptionType{ProductID: productID, OptionTypeID: optionTypeID})
}

func (s *Seeder) Option(optionTypeID uint, name, adjustment string, available bool) models.ProductOption {
	s.t.Helper()
	o := models.ProductOption{
		OptionTypeID:    optionTypeID,
		Name:            name,
		PriceAdjustment: decimal.RequireFromString(adjustment),
		Available:       available,
	}
	s.create(&o)
	return o
}

func (s *Seeder) OptionAt(optionID, locationID uint, active bool, adjustment *string) models.OptionLocation {
	s.t.Helper()
	ol := models.OptionLocation{ProductOptionID: optionID, LocationID: locationID, Active: active}
	if adjustment != nil {
		ol.PriceAdjustmentOverride = decimal.NewNullDecimal(decimal.RequireFromString(*adjustment))
	}
	s.create(&ol)
	return ol
}

// Session inserts a session row directly, bypassing the registry, to build
// legacy or expired states.
func (s *Seeder) Session(tableID, userID uint, state string, startedAt time.Time, ttl int) models.TableSession {
	s.t.Helper()
	session := models.TableSession{
		TableID:       tableID,
		CreatorUserID: userID,
		Token:         uuid.NewString(),
		State:         state,
		StartedAt:     startedAt,
		TTLMinutes:    ttl,
	}
	if state == models.SessionStateFinalized {
		ended := startedAt
		session.EndedAt = &ended
	}
	s.create(&session)
	return session
}

func Ptr[T any](v T) *T { return &v }
