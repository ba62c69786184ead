package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Activation is the state of a catalog entity at one location. Only
// ActivationActive makes the entity orderable there.
type Activation int

const (
	ActivationAbsent Activation = iota
	ActivationInactive
	ActivationActive
)

func (a Activation) String() string {
	switch a {
	case ActivationInactive:
		return "inactive"
	case ActivationActive:
		return "active"
	default:
		return "absent"
	}
}

// ActivationOf maps a looked-up override row onto an Activation.
func ActivationOf(found, active bool) Activation {
	switch {
	case !found:
		return ActivationAbsent
	case active:
		return ActivationActive
	default:
		return ActivationInactive
	}
}

// Location override rows. A nil override field falls back to the canonical
// value of the base entity.

type ProductLocation struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	ProductID           uint                `gorm:"not null;uniqueIndex:ux_product_locations" json:"product_id"`
	Product             Product             `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	LocationID          uint                `gorm:"not null;uniqueIndex:ux_product_locations" json:"location_id"`
	Active              bool                `gorm:"not null" json:"active"`
	PriceOverride       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price_override"`
	AvailableOverride   *bool               `json:"available_override"`
	NameOverride        *string             `gorm:"type:varchar(255)" json:"name_override"`
	DescriptionOverride *string             `gorm:"type:text" json:"description_override"`
	CreatedAt           time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"not null" json:"updated_at"`
}

type OptionTypeLocation struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	OptionTypeID        uint       `gorm:"not null;uniqueIndex:ux_option_type_locations" json:"option_type_id"`
	OptionType          OptionType `gorm:"foreignKey:OptionTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	LocationID          uint       `gorm:"not null;uniqueIndex:ux_option_type_locations" json:"location_id"`
	Active              bool       `gorm:"not null" json:"active"`
	NameOverride        *string    `gorm:"type:varchar(100)" json:"name_override"`
	DescriptionOverride *string    `gorm:"type:text" json:"description_override"`
	CreatedAt           time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"not null" json:"updated_at"`
}

type OptionLocation struct {
	ID                      uint                `gorm:"primaryKey" json:"id"`
	ProductOptionID         uint                `gorm:"not null;uniqueIndex:ux_option_locations" json:"product_option_id"`
	ProductOption           ProductOption       `gorm:"foreignKey:ProductOptionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	LocationID              uint                `gorm:"not null;uniqueIndex:ux_option_locations" json:"location_id"`
	Active                  bool                `gorm:"not null" json:"active"`
	PriceAdjustmentOverride decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price_adjustment_override"`
	AvailableOverride       *bool               `json:"available_override"`
	NameOverride            *string             `gorm:"type:varchar(255)" json:"name_override"`
	CreatedAt               time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time           `gorm:"not null" json:"updated_at"`
}
