package outpass

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Outpass struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	StudentName string `gorm:"type:varchar(120);not null"`
	Hostel      string `gorm:"type:varchar(80);not null;index:idx_outpasses_hostel_status"`
	Institution string `gorm:"type:varchar(120)"`
	Course      string `gorm:"type:varchar(120)"`
	RoomNumber  string `gorm:"type:varchar(20)"`

	PermissionType string `gorm:"type:varchar(20);not null;default:'OUTPASS'"`
	Purpose        string `gorm:"type:text"`
	Destination    string `gorm:"type:varchar(200)"`

	DateFrom     time.Time `gorm:"type:date;not null;index:idx_outpasses_dates"`
	DateTo       time.Time `gorm:"type:date;not null;index:idx_outpasses_dates"`
	TimeOut      string    `gorm:"type:varchar(8);not null"` // HH:MM:SS
	TimeIn       string    `gorm:"type:varchar(8);not null"`
	DurationText string    `gorm:"type:varchar(40)"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_outpasses_hostel_status"`

	// Set when the request is accepted.
	ExpectedReturnAt *time.Time
	PassCode         *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_outpasses_pass_code"`
	ApprovedBy       *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt       *time.Time

	// Set when the student re-enters through a gate.
	EntryTime *time.Time

	RejectionReason *string `gorm:"type:text"`
	RenewalReason   *string `gorm:"type:text"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_outpasses_deleted_at"`
}
