package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "pending"

// Order is a price snapshot taken while its session was ACTIVE. It is never
// re-priced against the live catalog.
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SessionID    uint            `gorm:"not null;index" json:"session_id"`
	Session      TableSession    `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID      uint            `gorm:"not null;index" json:"table_id"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Taxes        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"taxes"`
	Discounts    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discounts"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	ClientNotes  string          `gorm:"type:text" json:"client_notes"`
	KitchenNotes string          `gorm:"type:text" json:"kitchen_notes"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	Lines        []OrderLineItem `gorm:"foreignKey:OrderID" json:"lines"`
}
