package models

import "time"

type Location struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type Zone struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LocationID uint      `gorm:"not null;index" json:"location_id"`
	Location   Location  `gorm:"foreignKey:LocationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ZoneID      uint      `gorm:"not null;index" json:"zone_id"`
	Zone        Zone      `gorm:"foreignKey:ZoneID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Status      string    `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
