package models

import "time"

const (
	SessionStateActive    = "ACTIVE"
	SessionStateFinalized = "FINALIZED"
)

// Reasons recorded when a session leaves the ACTIVE state.
const (
	CloseReasonClosed    = "closed"
	CloseReasonExpired   = "expired"
	CloseReasonDuplicate = "duplicate"
)

const DefaultSessionTTLMinutes = 120

// TableSession binds one physical table to ordering activity for a bounded
// time. Rows are never deleted; they form the audit trail of the table.
type TableSession struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableID       uint       `gorm:"not null;index:idx_table_sessions_table_state" json:"table_id"`
	Table         Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatorUserID uint       `gorm:"not null" json:"creator_user_id"`
	Token         string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`
	State         string     `gorm:"type:varchar(16);not null;default:'ACTIVE';index:idx_table_sessions_table_state" json:"state"`
	StartedAt     time.Time  `gorm:"not null" json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	TTLMinutes    int        `gorm:"not null;default:120" json:"ttl_minutes"`
	ClosedReason  *string    `gorm:"type:varchar(16)" json:"closed_reason,omitempty"`
}

func (s TableSession) IsActive() bool {
	return s.State == SessionStateActive
}

// ExpiresAt is the instant after which the session is eligible for the sweep.
func (s TableSession) ExpiresAt() time.Time {
	return s.StartedAt.Add(time.Duration(s.TTLMinutes) * time.Minute)
}

func (s TableSession) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt())
}
