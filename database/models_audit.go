package database

import (
	"time"
)

// AuditEntry is one immutable line of the change history. Entries are only
// ever inserted; there is no update or delete path anywhere in the codebase.
type AuditEntry struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	EntityKind string    `gorm:"size:20;not null;index:idx_audit_entity" json:"entity_kind"`
	EntityID   uint      `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Action     string    `gorm:"size:20;not null" json:"action"`
	Details    string    `gorm:"type:text" json:"details"`
	PrevState  *string   `gorm:"size:50" json:"prev_state"`
	NewState   *string   `gorm:"size:50" json:"new_state"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
