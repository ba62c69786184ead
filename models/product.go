package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog entry. Location-specific values live in
// ProductLocation.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	PriceBase   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_base"`
	Available   bool            `gorm:"not null" json:"available"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// OptionType groups options a guest chooses between (size, sauce, ...).
// A nil MaxSelections means unbounded.
type OptionType struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	MinSelections int       `gorm:"not null;default:0" json:"min_selections"`
	MaxSelections *int      `json:"max_selections"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// ProductOptionType links a product to the option types that apply to it.
type ProductOptionType struct {
	ProductID    uint `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	OptionTypeID uint `gorm:"primaryKey;autoIncrement:false" json:"option_type_id"`
}

type ProductOption struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OptionTypeID    uint            `gorm:"not null;index" json:"option_type_id"`
	OptionType      OptionType      `gorm:"foreignKey:OptionTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_adjustment"`
	Available       bool            `gorm:"not null" json:"available"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}
