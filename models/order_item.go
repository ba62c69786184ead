package models

import "github.com/shopspring/decimal"

type OrderLineItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order                Order             `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID            uint              `gorm:"not null" json:"product_id"`
	ProductName          string            `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity             int               `gorm:"not null" json:"quantity"`
	UnitPrice            decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal            decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"line_total"`
	PersonalizationNotes string            `gorm:"type:text" json:"personalization_notes"`
	Options              []OrderLineOption `gorm:"foreignKey:LineItemID" json:"options"`
}

type OrderLineOption struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	LineItemID      uint            `gorm:"not null;index" json:"line_item_id"`
	LineItem        OrderLineItem   `gorm:"foreignKey:LineItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductOptionID uint            `gorm:"not null" json:"product_option_id"`
	OptionName      string          `gorm:"type:varchar(255);not null" json:"option_name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_adjustment"`
}
