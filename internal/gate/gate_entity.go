package gate

import (
	"time"

	"github.com/google/uuid"
)

// EntryLog is the gate-side audit trail: one row per recorded re-entry.
type EntryLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OutpassID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_gate_entries_outpass"`
	PassCode  uuid.UUID `gorm:"type:uuid;not null"`
	GateName  string    `gorm:"type:varchar(60);not null"`
	ScannedAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (EntryLog) TableName() string {
	return "gate_entries"
}
